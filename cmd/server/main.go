// Package main is the entry point for the adminstore API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"adminstore/internal/config"
	"adminstore/internal/core/tenant"
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/domain/catalogs/progressivetype"
	v1 "adminstore/internal/infrastructure/http/v1"
	"adminstore/internal/infrastructure/storage"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Configuration, log *logger.Logger) error {
	ctx := context.Background()
	mode := cfg.StorageMode()
	log.Infow("starting adminstore server", "storage_mode", mode, "tenants", cfg.Tenants.Enabled())

	// --- Default database ---
	// Opened lazily; an empty URL only fails requests that reach it.
	defaultDB := postgres.NewDSNProviderWithConfig(cfg.Database.PoolConfig())
	defer defaultDB.Close()

	// --- Tenant Registry and Manager ---
	var tenantManager *tenant.Manager
	if cfg.Tenants.Enabled() {
		metaPool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Tenants.MetaURL))
		if err != nil {
			return fmt.Errorf("connect to meta database: %w", err)
		}
		defer metaPool.Close()
		log.Info("meta database connection established")

		managerCfg := cfg.Tenants.ManagerConfig()
		tenantManager = tenant.NewManager(managerCfg, tenant.NewPostgresRegistry(metaPool), log)
		defer tenantManager.Close()

		log.Infow("tenant manager initialized",
			"max_pools", managerCfg.MaxTotalPools,
			"max_conns_per_tenant", managerCfg.MaxConnsPerTenant,
			"idle_timeout", managerCfg.PoolIdleTimeout,
		)

		if cfg.Tenants.Prewarm {
			if err := tenantManager.PrewarmPools(ctx); err != nil {
				log.Warnw("failed to prewarm some pools", "error", err)
			}
		}
	}

	provider := postgres.NewTenantProvider(tenantManager, defaultDB)

	// --- Repositories and services ---
	denominationRepo, err := storage.NewDenominationRepository(mode, provider, log)
	if err != nil {
		return err
	}
	progressiveRepo, err := storage.NewProgressiveTypeRepository(mode, provider, log)
	if err != nil {
		return err
	}

	routerCfg := v1.RouterConfig{
		TenantManager:          tenantManager,
		Logger:                 log,
		DenominationService:    denomination.NewService(denominationRepo, log),
		ProgressiveTypeService: progressivetype.NewService(progressiveRepo, log),
	}
	if cfg.Database.URL != "" {
		routerCfg.DB = defaultDB
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      v1.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
