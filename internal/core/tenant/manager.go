package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"adminstore/pkg/logger"
)

// ManagerConfig sizes and paces the per-tenant pools.
type ManagerConfig struct {
	DBUser     string
	DBPassword string

	MaxConnsPerTenant int32
	MinConnsPerTenant int32
	ConnectTimeout    time.Duration

	MaxTotalPools     int           // 0 = unlimited
	PoolIdleTimeout   time.Duration // 0 = never close idle pools
	HealthCheckPeriod time.Duration // 0 = no pings
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxConnsPerTenant: 10,
		MinConnsPerTenant: 2,
		ConnectTimeout:    10 * time.Second,
		MaxTotalPools:     100,
		PoolIdleTimeout:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

// ManagedPool is one open tenant database: a pgx pool for the pgx-based
// repositories and a lib/pq handle for the sqlx ones, both on the same DSN.
type ManagedPool struct {
	pool    *pgxpool.Pool
	sqlDB   *sqlx.DB
	tenant  *Tenant
	lastUse atomic.Int64 // unix seconds
	inUse   atomic.Int32
	failing atomic.Bool
}

func (mp *ManagedPool) Pool() *pgxpool.Pool { return mp.pool }

func (mp *ManagedPool) SQLX() *sqlx.DB { return mp.sqlDB }

func (mp *ManagedPool) Tenant() *Tenant { return mp.tenant }

// AcquireRef pins the pool against eviction until ReleaseRef.
func (mp *ManagedPool) AcquireRef() { mp.inUse.Add(1) }

func (mp *ManagedPool) ReleaseRef() { mp.inUse.Add(-1) }

func (mp *ManagedPool) touch() {
	mp.lastUse.Store(time.Now().Unix())
}

func (mp *ManagedPool) close() {
	mp.pool.Close()
	if mp.sqlDB != nil {
		_ = mp.sqlDB.Close()
	}
}

// Manager opens tenant databases on demand and closes them when idle or
// failing. Safe for concurrent use.
type Manager struct {
	config   ManagerConfig
	registry Registry

	pools sync.Map // tenant id -> *ManagedPool
	open  atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

func NewManager(cfg ManagerConfig, registry Registry, log *logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:   cfg,
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.WithComponent("tenant-manager"),
	}

	if period := m.sweepPeriod(); period > 0 {
		m.wg.Add(1)
		go m.sweepLoop(period)
	}
	return m
}

// GetPool returns the open database for tenantID, opening it on first use.
func (m *Manager) GetPool(ctx context.Context, tenantID string) (*ManagedPool, error) {
	if val, ok := m.pools.Load(tenantID); ok {
		mp := val.(*ManagedPool)
		mp.touch()
		return mp, nil
	}
	return m.openPool(ctx, tenantID)
}

func (m *Manager) openPool(ctx context.Context, tenantID string) (*ManagedPool, error) {
	if limit := m.config.MaxTotalPools; limit > 0 && int(m.open.Load()) >= limit {
		return nil, fmt.Errorf("%w (%d)", ErrMaxPoolLimit, limit)
	}

	t, err := m.registry.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("tenant lookup failed: %w", err)
	}
	if !t.IsActive() {
		return nil, fmt.Errorf("%w: status=%s", ErrTenantNotActive, t.Status)
	}

	dsn := t.DSN(m.config.DBUser, m.config.DBPassword)
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn for tenant %s: %w", t.Slug, err)
	}
	poolCfg.MaxConns = m.config.MaxConnsPerTenant
	poolCfg.MinConns = m.config.MinConnsPerTenant
	poolCfg.HealthCheckPeriod = m.config.HealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = m.config.ConnectTimeout

	dialCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open tenant %s: %w", t.Slug, err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping tenant %s: %w", t.Slug, err)
	}

	// sqlx.Open is lazy; the first query dials.
	sqlDB, err := sqlx.Open("postgres", dsn)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open sql handle for tenant %s: %w", t.Slug, err)
	}
	sqlDB.SetMaxOpenConns(int(m.config.MaxConnsPerTenant))
	sqlDB.SetMaxIdleConns(int(m.config.MinConnsPerTenant))

	mp := &ManagedPool{pool: pool, sqlDB: sqlDB, tenant: t}
	mp.touch()

	if actual, loaded := m.pools.LoadOrStore(tenantID, mp); loaded {
		mp.close()
		return actual.(*ManagedPool), nil
	}

	m.open.Add(1)
	m.log.Infow("opened tenant database", "slug", t.Slug, "db_name", t.DBName, "open", m.open.Load())
	return mp, nil
}

// sweepPeriod is how often idle and failing pools are looked at.
func (m *Manager) sweepPeriod() time.Duration {
	idle := m.config.PoolIdleTimeout / 2
	health := m.config.HealthCheckPeriod
	switch {
	case idle <= 0:
		return health
	case health <= 0:
		return idle
	default:
		return min(idle, health)
	}
}

func (m *Manager) sweepLoop(period time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep pings open pools when health checks are on and closes the ones that
// are unused and either failing or idle past PoolIdleTimeout.
func (m *Manager) sweep() {
	ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
	defer cancel()

	var idleBefore int64
	if m.config.PoolIdleTimeout > 0 {
		idleBefore = time.Now().Add(-m.config.PoolIdleTimeout).Unix()
	}

	m.pools.Range(func(key, value any) bool {
		tenantID := key.(string)
		mp := value.(*ManagedPool)

		if m.config.HealthCheckPeriod > 0 {
			if err := mp.pool.Ping(ctx); err != nil {
				if !mp.failing.Swap(true) {
					m.log.Warnw("tenant database unhealthy", "slug", mp.tenant.Slug, "error", err)
				}
			} else {
				mp.failing.Store(false)
			}
		}

		if mp.inUse.Load() > 0 {
			return true
		}
		switch {
		case mp.failing.Load():
			m.closePool(tenantID, mp, "unhealthy")
		case mp.lastUse.Load() < idleBefore:
			m.closePool(tenantID, mp, "idle")
		}
		return true
	})
}

func (m *Manager) closePool(tenantID string, mp *ManagedPool, reason string) {
	m.pools.Delete(tenantID)
	mp.close()
	m.open.Add(-1)
	m.log.Infow("closed tenant database", "slug", mp.tenant.Slug, "reason", reason, "open", m.open.Load())
}

// Close stops the sweeper and closes every open pool.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()

	var closed int
	m.pools.Range(func(key, value any) bool {
		value.(*ManagedPool).close()
		m.pools.Delete(key)
		closed++
		return true
	})
	m.open.Store(0)
	m.log.Infow("tenant manager closed", "pools_closed", closed)
}

// PoolStats summarises the open tenant databases for the health endpoint.
type PoolStats struct {
	Pools         int
	TotalConns    int
	AcquiredConns int
}

func (m *Manager) Stats() PoolStats {
	stats := PoolStats{Pools: int(m.open.Load())}
	m.pools.Range(func(_, value any) bool {
		st := value.(*ManagedPool).pool.Stat()
		stats.TotalConns += int(st.TotalConns())
		stats.AcquiredConns += int(st.AcquiredConns())
		return true
	})
	return stats
}

// ForEachActive runs fn against every active tenant database, one at a time.
// Failures are logged and collected; the walk never stops early.
func (m *Manager) ForEachActive(ctx context.Context, fn func(ctx context.Context, mp *ManagedPool) error) error {
	tenants, err := m.registry.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active tenants: %w", err)
	}

	var errs []error
	for _, t := range tenants {
		mp, err := m.GetPool(ctx, t.ID)
		if err != nil {
			m.log.Warnw("tenant unavailable", "tenant_id", t.ID, "slug", t.Slug, "error", err)
			errs = append(errs, fmt.Errorf("tenant %s: %w", t.Slug, err))
			continue
		}

		mp.AcquireRef()
		err = fn(WithTenant(ctx, mp.Tenant()), mp)
		mp.ReleaseRef()

		if err != nil {
			m.log.Warnw("tenant task failed", "tenant_id", t.ID, "slug", t.Slug, "error", err)
			errs = append(errs, fmt.Errorf("tenant %s: %w", t.Slug, err))
		}
	}
	return errors.Join(errs...)
}

// PrewarmPools opens every active tenant database ahead of the first request.
func (m *Manager) PrewarmPools(ctx context.Context) error {
	err := m.ForEachActive(ctx, func(context.Context, *ManagedPool) error { return nil })
	m.log.Infow("prewarmed tenant databases", "open", m.open.Load())
	return err
}
