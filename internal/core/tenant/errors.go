package tenant

import "errors"

// Sentinels returned by Manager.GetPool and the registry. The HTTP tenant
// middleware maps them to 404, 403 and 503.
var (
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrTenantNotActive = errors.New("tenant is not active")
	ErrMaxPoolLimit    = errors.New("tenant pool limit reached")
)
