// Package main provides the adminstore maintenance CLI.
//
// Usage:
//
//	admin tables build [--tenants]
//	admin rules seed [--tenants]
//	admin tenants list
//	admin tenants create --slug acme --name "ACME Corp" [--dsn URL] [--create-db]
//	admin tenants suspend <tenant-id>
//	admin tenants activate <tenant-id>
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"adminstore/internal/config"
	"adminstore/internal/core/tenant"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// app holds what the subcommands share. Connections open on first use.
type app struct {
	cfg *config.Configuration
	log *logger.Logger

	defaultDB *postgres.DSNProvider
	metaPool  *pgxpool.Pool
	manager   *tenant.Manager
	registry  *tenant.PostgresRegistry
}

func main() {
	_ = godotenv.Load(".env")

	a := &app{}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "adminstore maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(tablesCommand(a))
	root.AddCommand(rulesCommand(a))
	root.AddCommand(tenantsCommand(a))

	if err := root.Execute(); err != nil {
		a.close()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	a.defaultDB = postgres.NewDSNProviderWithConfig(cfg.Database.PoolConfig())
	return nil
}

// tenants opens the meta database and the tenant manager.
func (a *app) tenants(ctx context.Context) (*tenant.Manager, *tenant.PostgresRegistry, error) {
	if a.manager != nil {
		return a.manager, a.registry, nil
	}
	if !a.cfg.Tenants.Enabled() {
		return nil, nil, fmt.Errorf("tenants are not configured (set %s_TENANTS_META_URL)", config.EnvPrefix)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(a.cfg.Tenants.MetaURL))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to meta database: %w", err)
	}
	a.metaPool = pool
	a.registry = tenant.NewPostgresRegistry(pool)
	a.manager = tenant.NewManager(a.cfg.Tenants.ManagerConfig(), a.registry, a.log)
	return a.manager, a.registry, nil
}

func (a *app) close() {
	if a.manager != nil {
		a.manager.Close()
		a.manager = nil
	}
	if a.metaPool != nil {
		a.metaPool.Close()
		a.metaPool = nil
	}
	if a.defaultDB != nil {
		a.defaultDB.Close()
		a.defaultDB = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
