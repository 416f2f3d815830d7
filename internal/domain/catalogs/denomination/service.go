package denomination

import (
	"adminstore/internal/domain"
	"adminstore/pkg/logger"
)

// Service provides business logic for denominations.
type Service struct {
	*domain.AdminService[*Denomination]
}

// NewService creates a new Denomination service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		AdminService: domain.NewAdminService(domain.AdminServiceConfig[*Denomination]{
			Repo:       repo,
			EntityName: "denomination",
			Logger:     log,
		}),
	}
}
