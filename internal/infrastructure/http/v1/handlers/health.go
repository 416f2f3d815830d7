package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"adminstore/internal/core/tenant"
)

// Pinger checks a database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db            Pinger
	tenantManager *tenant.Manager
}

// NewHealthHandler creates a health handler. db may be nil when no default
// connection is configured; tenantManager may be nil in single-database setups.
func NewHealthHandler(db Pinger, tenantManager *tenant.Manager) *HealthHandler {
	return &HealthHandler{db: db, tenantManager: tenantManager}
}

// Live reports that the process is up.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready pings the default database connection.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{}
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": checks,
			})
			return
		}
		checks["database"] = "healthy"
	}

	body := gin.H{
		"status": "ok",
		"checks": checks,
	}
	if h.tenantManager != nil {
		stats := h.tenantManager.Stats()
		body["tenants"] = gin.H{
			"active_pools":   stats.Pools,
			"total_conns":    stats.TotalConns,
			"acquired_conns": stats.AcquiredConns,
		}
	}
	c.JSON(http.StatusOK, body)
}
