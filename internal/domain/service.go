package domain

import (
	"context"

	"adminstore/internal/core/apperror"
	"adminstore/internal/core/entity"
	"adminstore/pkg/logger"
)

// AdminService exposes a Repository to transport code.
// It turns the repository's boolean "no matching row" results into NotFound errors
// and wraps storage failures as AppError.
type AdminService[T entity.Record] struct {
	repo       Repository[T]
	entityName string
	log        *logger.Logger
}

// AdminServiceConfig configures the admin service.
type AdminServiceConfig[T entity.Record] struct {
	Repo       Repository[T]
	EntityName string
	Logger     *logger.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService[T entity.Record](cfg AdminServiceConfig[T]) *AdminService[T] {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	return &AdminService[T]{
		repo:       cfg.Repo,
		entityName: cfg.EntityName,
		log:        log.WithComponent(cfg.EntityName + "-service"),
	}
}

// EntityName returns the name used in errors and logs.
func (s *AdminService[T]) EntityName() string {
	return s.entityName
}

func (s *AdminService[T]) normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewDatabase(err).WithDetail("entity", s.entityName)
}

// Create validates and inserts a new entity.
func (s *AdminService[T]) Create(ctx context.Context, item T) (T, error) {
	if err := item.Validate(ctx); err != nil {
		return item, err
	}
	created, err := s.repo.Add(ctx, item)
	if err != nil {
		return item, s.normalizeErr(err)
	}

	s.log.WithContext(ctx).Infow("created", "id", created.GetID(), "name", created.GetName())
	return created, nil
}

// GetByID returns the entity or a NotFound error.
func (s *AdminService[T]) GetByID(ctx context.Context, id int64) (T, error) {
	item, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return item, s.normalizeErr(err)
	}
	if !found {
		return item, apperror.NewNotFound(s.entityName, id)
	}
	return item, nil
}

// Update applies Active and Name. A missing or deleted row yields NotFound.
func (s *AdminService[T]) Update(ctx context.Context, item T) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Update(ctx, item)
	if err != nil {
		return s.normalizeErr(err)
	}
	if !ok {
		return apperror.NewNotFound(s.entityName, item.GetID())
	}

	s.log.WithContext(ctx).Infow("updated", "id", item.GetID(), "name", item.GetName())
	return nil
}

// Delete soft-deletes the entity. A missing or already deleted row yields NotFound.
func (s *AdminService[T]) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.normalizeErr(err)
	}
	if !ok {
		return apperror.NewNotFound(s.entityName, id)
	}

	s.log.WithContext(ctx).Infow("deleted", "id", id)
	return nil
}

// GetAll returns every non-deleted entity in natural order.
func (s *AdminService[T]) GetAll(ctx context.Context) ([]T, error) {
	items, err := s.repo.GetAll(ctx)
	return items, s.normalizeErr(err)
}

// List returns one filtered page.
func (s *AdminService[T]) List(ctx context.Context, opts FilterOptions) (ArticleSet[T], error) {
	set, err := s.repo.GetFiltered(ctx, opts)
	return set, s.normalizeErr(err)
}
