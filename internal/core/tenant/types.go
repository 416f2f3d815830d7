// Package tenant provides multi-tenant database management for Database-per-Tenant architecture.
// Each tenant has its own PostgreSQL database holding the admin list tables.
package tenant

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Status represents tenant lifecycle state.
type Status string

const (
	// StatusActive - tenant can accept requests
	StatusActive Status = "active"

	// StatusSuspended - tenant is temporarily disabled
	StatusSuspended Status = "suspended"
)

// Tenant represents a tenant record from meta-database.
type Tenant struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`         // URL-safe identifier
	DisplayName string    `db:"display_name"` // Human-readable name
	DBName      string    `db:"db_name"`
	DBHost      string    `db:"db_host"`
	DBPort      int       `db:"db_port"`
	Status      Status    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// ConnectionString overrides host/port/db settings when set.
	ConnectionString *string `db:"connection_string"`
}

// IsActive returns true if tenant can accept requests.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// DSN builds the connection string for this tenant's database.
// The URL form is understood by both pgx and lib/pq.
func (t *Tenant) DSN(user, password string) string {
	if t.ConnectionString != nil && *t.ConnectionString != "" {
		return *t.ConnectionString
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(t.DBHost, strconv.Itoa(t.DBPort)),
		Path:     "/" + t.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// CreateTenantInput contains data for registering a new tenant.
type CreateTenantInput struct {
	Slug             string
	DisplayName      string
	DBHost           string // Optional, defaults to localhost
	DBPort           int    // Optional, defaults to 5432
	ConnectionString string // Optional explicit DSN
}

// Validate checks if input is valid and applies defaults.
func (i *CreateTenantInput) Validate() error {
	if i.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	i.Slug = strings.ToLower(i.Slug)
	if len(i.Slug) > 63 {
		return fmt.Errorf("slug must be 63 characters or less")
	}
	if i.DisplayName == "" {
		return fmt.Errorf("display_name is required")
	}
	if i.DBHost == "" {
		i.DBHost = "localhost"
	}
	if i.DBPort == 0 {
		i.DBPort = 5432
	}
	return nil
}

// GenerateDBName creates database name from slug.
// Format: mt_<slug> (mt = multi-tenant)
func (i *CreateTenantInput) GenerateDBName() string {
	return "mt_" + strings.ReplaceAll(i.Slug, "-", "_")
}

// ToTenant builds the registry row for the input.
func (i *CreateTenantInput) ToTenant() *Tenant {
	t := &Tenant{
		Slug:        i.Slug,
		DisplayName: i.DisplayName,
		DBName:      i.GenerateDBName(),
		DBHost:      i.DBHost,
		DBPort:      i.DBPort,
		Status:      StatusActive,
	}
	if i.ConnectionString != "" {
		dsn := i.ConnectionString
		t.ConnectionString = &dsn
	}
	return t
}
