package progressivetype

import (
	"context"

	"adminstore/internal/core/apperror"
	"adminstore/internal/domain"
	"adminstore/pkg/logger"
)

// Service provides business logic for progressive types.
// Uses composition with domain.AdminService for common CRUD operations.
type Service struct {
	*domain.AdminService[*ProgressiveType]
	repo Repository
}

// NewService creates a new ProgressiveType service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		AdminService: domain.NewAdminService(domain.AdminServiceConfig[*ProgressiveType]{
			Repo:       repo,
			EntityName: "progressive_type",
			Logger:     log,
		}),
		repo: repo,
	}
}

// MoveUp moves the row one position earlier. moved is false when the row is
// already first or the swap was rolled back. A missing row yields NotFound.
func (s *Service) MoveUp(ctx context.Context, id int64) (bool, error) {
	return s.move(ctx, id, s.repo.MoveUp)
}

// MoveDown moves the row one position later.
func (s *Service) MoveDown(ctx context.Context, id int64) (bool, error) {
	return s.move(ctx, id, s.repo.MoveDown)
}

func (s *Service) move(ctx context.Context, id int64, fn func(context.Context, int64) (bool, error)) (bool, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	moved, err := fn(ctx, id)
	if err != nil {
		return false, apperror.NewDatabase(err).WithDetail("entity", s.EntityName())
	}
	return moved, nil
}
