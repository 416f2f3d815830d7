// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"adminstore/internal/core/tenant"
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/http/v1/handlers"
	"adminstore/internal/infrastructure/http/v1/middleware"
	"adminstore/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// TenantManager resolves X-Tenant-ID; nil disables tenant routing
	TenantManager *tenant.Manager

	// DB is the default database, pinged by /health/ready
	DB handlers.Pinger

	// Logger for request logging
	Logger *logger.Logger

	DenominationService    *denomination.Service
	ProgressiveTypeService *progressivetype.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TenantContext(cfg.TenantManager))
	registerAdminRoutes(v1, cfg)

	return router
}

// registerAdminRoutes registers the admin list endpoints.
func registerAdminRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	if cfg.DenominationService != nil {
		handler := handlers.NewDenominationHandler(baseHandler, cfg.DenominationService)
		RegisterAdminRoutes(rg.Group("/denominations"), handler)
	}

	if cfg.ProgressiveTypeService != nil {
		handler := handlers.NewProgressiveTypeHandler(baseHandler, cfg.ProgressiveTypeService)
		RegisterAdminRoutes(rg.Group("/progressive-types"), handler)
	}
}
