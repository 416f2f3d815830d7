package template_repo

import (
	"context"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// DenominationRepo implements denomination.Repository.
type DenominationRepo struct {
	*baseRepo[*denomination.Denomination]
}

// NewDenominationRepo creates a new denomination repository.
func NewDenominationRepo(provider postgres.ConnectionProvider, log *logger.Logger) *DenominationRepo {
	return &DenominationRepo{
		baseRepo: newBaseRepo(
			provider,
			denomination.TableName,
			postgres.ExtractDBColumns[denomination.Denomination](),
			"id DESC",
			func() *denomination.Denomination { return &denomination.Denomination{} },
			log,
		),
	}
}

// Add validates and inserts a denomination, returning it with its id.
func (r *DenominationRepo) Add(ctx context.Context, item *denomination.Denomination) (*denomination.Denomination, error) {
	if err := item.Validate(ctx); err != nil {
		return item, err
	}
	item.PrepareForCreate(entity.Now())

	db, err := r.db(ctx)
	if err != nil {
		return item, err
	}

	newID, err := r.insert(ctx, db, item)
	if err != nil {
		return item, err
	}
	item.ID = newID
	return item, nil
}

// Update applies active and name.
func (r *DenominationRepo) Update(ctx context.Context, item *denomination.Denomination) (bool, error) {
	if err := item.Validate(ctx); err != nil {
		return false, err
	}
	return r.update(ctx, item.ID, item.Active, item.Name)
}

var _ denomination.Repository = (*DenominationRepo)(nil)
