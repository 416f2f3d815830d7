package driver_repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

const denominationColumns = "id, active, is_deleted, created, created_by, name"

func scanDenomination(row pgx.Row) (*denomination.Denomination, error) {
	d := &denomination.Denomination{}
	err := row.Scan(&d.ID, &d.Active, &d.IsDeleted, &d.Created, &d.CreatedBy, &d.Name)
	if err != nil {
		return nil, err
	}
	return d, nil
}

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
			denominationColumns,
			"id DESC",
			scanDenomination,
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

	sql := fmt.Sprintf(
		"INSERT INTO %s (active, is_deleted, created, created_by, name) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		r.table,
	)
	newID, err := r.insertReturningID(ctx, db, sql, item.Active, item.IsDeleted, item.Created, item.CreatedBy, item.Name)
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
