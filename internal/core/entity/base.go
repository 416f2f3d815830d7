// Package entity holds the record shapes shared by the admin list entities.
package entity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"adminstore/internal/core/apperror"
)

// NameMaxLength is the maximum number of characters allowed in Name.
const NameMaxLength = 100

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Record is the constraint satisfied by every admin list entity.
type Record interface {
	Validatable
	GetID() int64
	GetName() string
}

// AdminEntity contains the columns common to every admin list table.
type AdminEntity struct {
	// ID is the identity key assigned by the database
	ID int64 `db:"id" json:"id"`

	// Active is nullable in storage; nil is treated as true
	Active *bool `db:"active" json:"active"`

	// IsDeleted marks a soft-deleted row
	IsDeleted bool `db:"is_deleted" json:"isDeleted"`

	// Created is stamped by the repository in UTC
	Created time.Time `db:"created" json:"created"`

	CreatedBy *string `db:"created_by" json:"createdBy,omitempty"`

	Name string `db:"name" json:"name"`
}

// GetID returns the identity key.
func (e *AdminEntity) GetID() int64 {
	return e.ID
}

// GetName returns the display name.
func (e *AdminEntity) GetName() string {
	return e.Name
}

// IsActive reports the effective active flag.
func (e *AdminEntity) IsActive() bool {
	return lo.FromPtrOr(e.Active, true)
}

// Validate implements Validatable.
func (e *AdminEntity) Validate(ctx context.Context) error {
	return ValidateName(e.Name)
}

// PrepareForCreate stamps the server-side fields of a new row.
// Caller-supplied Created and IsDeleted values are discarded.
func (e *AdminEntity) PrepareForCreate(now time.Time) {
	e.ID = 0
	e.Created = now.UTC().Truncate(time.Microsecond)
	e.IsDeleted = false
	e.Active = lo.ToPtr(e.IsActive())
}

// Now returns the creation timestamp with the precision PostgreSQL stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func nameValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateName checks the Name constraint shared by all admin entities.
// Whitespace-only names count as missing.
func ValidateName(name string) error {
	err := nameValidator().Var(strings.TrimSpace(name), "required")
	if err == nil {
		err = nameValidator().Var(name, "max=100")
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Tag() {
		case "required":
			return apperror.NewValidation("name is required").
				WithDetail("field", "name")
		case "max":
			return apperror.NewValidation("name cannot exceed 100 characters").
				WithDetail("field", "name").
				WithDetail("max", NameMaxLength)
		}
	}
	return apperror.NewValidation("name is invalid").WithDetail("field", "name").WithCause(err)
}
