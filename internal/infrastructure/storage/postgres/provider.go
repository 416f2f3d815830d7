package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"adminstore/internal/core/tenant"
)

// ErrNoDefaultConnection is returned at first use when no default connection string was configured.
var ErrNoDefaultConnection = errors.New("default connection string is not configured")

// ConnectionProvider yields store handles for the tenant bound to ctx,
// or for the default database when no tenant is bound.
//
// Handles are pooled; callers release what they acquire from them
// (rows, transactions) but never close the handle itself.
type ConnectionProvider interface {
	// DB returns the pgx handle.
	DB(ctx context.Context) (DB, error)

	// SQLX returns the database/sql handle for the same database.
	SQLX(ctx context.Context) (*sqlx.DB, error)
}

// --- DSN provider ---

// DSNProvider opens handles for one explicit connection string on first use.
type DSNProvider struct {
	cfg PoolConfig

	mu    sync.Mutex
	pool  *pgxpool.Pool
	sqlDB *sqlx.DB
}

// NewDSNProvider creates a provider for dsn with default pool settings.
// An empty dsn is accepted; the error surfaces on first use.
func NewDSNProvider(dsn string) *DSNProvider {
	return NewDSNProviderWithConfig(DefaultPoolConfig(dsn))
}

// NewDSNProviderWithConfig creates a provider with explicit pool settings.
func NewDSNProviderWithConfig(cfg PoolConfig) *DSNProvider {
	return &DSNProvider{cfg: cfg}
}

// DB returns the pgx pool, opening it on first call.
func (p *DSNProvider) DB(ctx context.Context) (DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}
	if p.cfg.DSN == "" {
		return nil, ErrNoDefaultConnection
	}

	pool, err := NewPool(ctx, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("open default pool: %w", err)
	}
	p.pool = pool
	return pool, nil
}

// SQLX returns the database/sql handle, opening it on first call.
func (p *DSNProvider) SQLX(ctx context.Context) (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sqlDB != nil {
		return p.sqlDB, nil
	}
	if p.cfg.DSN == "" {
		return nil, ErrNoDefaultConnection
	}

	db, err := NewSQLX(p.cfg)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping default database: %w", err)
	}
	p.sqlDB = db
	return db, nil
}

// Ping checks the default database, opening the pool if needed.
func (p *DSNProvider) Ping(ctx context.Context) error {
	db, err := p.DB(ctx)
	if err != nil {
		return err
	}
	pool, ok := db.(*pgxpool.Pool)
	if !ok {
		return nil
	}
	return pool.Ping(ctx)
}

// Close releases any opened handles.
func (p *DSNProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	if p.sqlDB != nil {
		_ = p.sqlDB.Close()
		p.sqlDB = nil
	}
}

// --- Tenant provider ---

// TenantProvider resolves the tenant bound to ctx through the tenant manager.
// Requests without a tenant use the fallback provider.
type TenantProvider struct {
	manager  *tenant.Manager
	fallback ConnectionProvider
}

// NewTenantProvider creates a tenant-aware provider.
func NewTenantProvider(manager *tenant.Manager, fallback ConnectionProvider) *TenantProvider {
	return &TenantProvider{manager: manager, fallback: fallback}
}

func (p *TenantProvider) managedPool(ctx context.Context) (*tenant.ManagedPool, error) {
	t := tenant.GetTenant(ctx)
	if t == nil || p.manager == nil {
		return nil, nil
	}
	mp, err := p.manager.GetPool(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant %s: %w", t.ID, err)
	}
	return mp, nil
}

// DB implements ConnectionProvider.
func (p *TenantProvider) DB(ctx context.Context) (DB, error) {
	mp, err := p.managedPool(ctx)
	if err != nil {
		return nil, err
	}
	if mp != nil {
		return mp.Pool(), nil
	}
	if p.fallback == nil {
		return nil, ErrNoDefaultConnection
	}
	return p.fallback.DB(ctx)
}

// SQLX implements ConnectionProvider.
func (p *TenantProvider) SQLX(ctx context.Context) (*sqlx.DB, error) {
	mp, err := p.managedPool(ctx)
	if err != nil {
		return nil, err
	}
	if mp != nil {
		return mp.SQLX(), nil
	}
	if p.fallback == nil {
		return nil, ErrNoDefaultConnection
	}
	return p.fallback.SQLX(ctx)
}

// --- Static provider ---

// StaticProvider hands out handles that were opened elsewhere.
type StaticProvider struct {
	db    DB
	sqlDB *sqlx.DB
}

// NewStaticProvider wraps existing handles. Either may be nil when the
// backend in use does not need it.
func NewStaticProvider(db DB, sqlDB *sqlx.DB) *StaticProvider {
	return &StaticProvider{db: db, sqlDB: sqlDB}
}

// DB implements ConnectionProvider.
func (p *StaticProvider) DB(context.Context) (DB, error) {
	if p.db == nil {
		return nil, ErrNoDefaultConnection
	}
	return p.db, nil
}

// SQLX implements ConnectionProvider.
func (p *StaticProvider) SQLX(context.Context) (*sqlx.DB, error) {
	if p.sqlDB == nil {
		return nil, ErrNoDefaultConnection
	}
	return p.sqlDB, nil
}

var (
	_ ConnectionProvider = (*DSNProvider)(nil)
	_ ConnectionProvider = (*TenantProvider)(nil)
	_ ConnectionProvider = (*StaticProvider)(nil)
)
