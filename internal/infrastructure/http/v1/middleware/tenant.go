package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"adminstore/internal/core/apperror"
	appctx "adminstore/internal/core/context"
	"adminstore/internal/core/tenant"
	"adminstore/pkg/logger"
)

const (
	// TenantHeader is the HTTP header for tenant identification.
	TenantHeader = "X-Tenant-ID"
)

// TenantContext binds the tenant named by X-Tenant-ID to the request context.
// Requests without the header run against the default database. The tenant's
// pool is acquired here so unknown or suspended tenants fail before any handler
// runs, and it stays referenced until the request completes.
func TenantContext(manager *tenant.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawTenantID := c.GetHeader(TenantHeader)
		if rawTenantID == "" {
			c.Next()
			return
		}

		if manager == nil {
			_ = c.Error(apperror.NewInvalidInput("tenants are not enabled").
				WithDetail("header", TenantHeader))
			c.Abort()
			return
		}

		tenantUUID, err := uuid.Parse(rawTenantID)
		if err != nil {
			_ = c.Error(
				apperror.NewInvalidInput("invalid tenant id").
					WithDetail("header", TenantHeader).
					WithDetail("value", rawTenantID),
			)
			c.Abort()
			return
		}
		tenantID := tenantUUID.String()

		ctx := c.Request.Context()
		managedPool, err := manager.GetPool(ctx, tenantID)
		if err != nil {
			logger.Warn(ctx, "tenant pool error", "tenant_id", tenantID, "error", err)

			switch {
			case errors.Is(err, tenant.ErrTenantNotFound):
				_ = c.Error(apperror.NewNotFound("tenant", tenantID))
			case errors.Is(err, tenant.ErrTenantNotActive):
				_ = c.Error(apperror.NewForbidden("tenant is not active").WithDetail("tenant_id", tenantID))
			case errors.Is(err, tenant.ErrMaxPoolLimit):
				_ = c.Error(apperror.NewUnavailable("service temporarily unavailable").
					WithCause(err).
					WithDetail("tenant_id", tenantID))
			default:
				_ = c.Error(apperror.NewInternal(err).WithDetail("tenant_id", tenantID))
			}
			c.Abort()
			return
		}

		// Track active request for graceful shutdown
		managedPool.AcquireRef()
		defer managedPool.ReleaseRef()

		ctx = tenant.WithTenant(ctx, managedPool.Tenant())
		ctx = appctx.WithTenantID(ctx, tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("tenant_id", tenantID)

		c.Next()
	}
}
