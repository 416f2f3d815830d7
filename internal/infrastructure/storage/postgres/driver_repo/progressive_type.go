package driver_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

const progressiveTypeColumns = "id, active, is_deleted, created, created_by, name, display_order"

func scanProgressiveType(row pgx.Row) (*progressivetype.ProgressiveType, error) {
	p := &progressivetype.ProgressiveType{}
	err := row.Scan(&p.ID, &p.Active, &p.IsDeleted, &p.Created, &p.CreatedBy, &p.Name, &p.DisplayOrder)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ProgressiveTypeRepo implements progressivetype.Repository.
type ProgressiveTypeRepo struct {
	*baseRepo[*progressivetype.ProgressiveType]
}

// NewProgressiveTypeRepo creates a new progressive type repository.
func NewProgressiveTypeRepo(provider postgres.ConnectionProvider, log *logger.Logger) *ProgressiveTypeRepo {
	return &ProgressiveTypeRepo{
		baseRepo: newBaseRepo(
			provider,
			progressivetype.TableName,
			progressiveTypeColumns,
			"display_order ASC, id ASC",
			scanProgressiveType,
			func() *progressivetype.ProgressiveType { return &progressivetype.ProgressiveType{} },
			log,
		),
	}
}

func (r *ProgressiveTypeRepo) lock(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", r.table); err != nil {
		return fmt.Errorf("lock %s: %w", r.table, err)
	}
	return nil
}

// Add validates the record, assigns the next display order and inserts it
// in one transaction under the table's advisory lock.
func (r *ProgressiveTypeRepo) Add(ctx context.Context, item *progressivetype.ProgressiveType) (*progressivetype.ProgressiveType, error) {
	if err := item.Validate(ctx); err != nil {
		return item, err
	}
	item.PrepareForCreate(entity.Now())

	db, err := r.db(ctx)
	if err != nil {
		return item, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return item, fmt.Errorf("begin transaction: %w", err)
	}

	if err := r.lock(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return item, err
	}

	nextSQL := fmt.Sprintf("SELECT COALESCE(MAX(display_order), 0) + 1 FROM %s WHERE is_deleted = FALSE", r.table)
	if err := tx.QueryRow(ctx, nextSQL).Scan(&item.DisplayOrder); err != nil {
		_ = tx.Rollback(ctx)
		return item, fmt.Errorf("next display order: %w", err)
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (active, is_deleted, created, created_by, name, display_order) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		r.table,
	)
	newID, err := r.insertReturningID(ctx, tx, insertSQL,
		item.Active, item.IsDeleted, item.Created, item.CreatedBy, item.Name, item.DisplayOrder)
	if err != nil {
		_ = tx.Rollback(ctx)
		return item, err
	}

	if err := tx.Commit(ctx); err != nil {
		return item, fmt.Errorf("commit transaction: %w", err)
	}
	item.ID = newID
	return item, nil
}

// Update applies active and name. DisplayOrder is never written here.
func (r *ProgressiveTypeRepo) Update(ctx context.Context, item *progressivetype.ProgressiveType) (bool, error) {
	if err := item.Validate(ctx); err != nil {
		return false, err
	}
	return r.update(ctx, item.ID, item.Active, item.Name)
}

// MoveUp swaps the row with the live row directly before it.
func (r *ProgressiveTypeRepo) MoveUp(ctx context.Context, id int64) (bool, error) {
	return r.move(ctx, id, "<", "DESC", "up")
}

// MoveDown swaps the row with the live row directly after it.
func (r *ProgressiveTypeRepo) MoveDown(ctx context.Context, id int64) (bool, error) {
	return r.move(ctx, id, ">", "ASC", "down")
}

func (r *ProgressiveTypeRepo) move(ctx context.Context, id int64, cmp, dir, name string) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	if err := r.lock(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return false, err
	}

	var curID int64
	var curOrder int
	targetSQL := fmt.Sprintf("SELECT id, display_order FROM %s WHERE id = $1 AND is_deleted = FALSE FOR UPDATE", r.table)
	if err := tx.QueryRow(ctx, targetSQL, id).Scan(&curID, &curOrder); err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", r.table, err)
	}

	var nbID int64
	var nbOrder int
	neighborSQL := fmt.Sprintf(
		"SELECT id, display_order FROM %s WHERE display_order %s $1 AND is_deleted = FALSE ORDER BY display_order %s LIMIT 1 FOR UPDATE",
		r.table, cmp, dir,
	)
	if err := tx.QueryRow(ctx, neighborSQL, curOrder).Scan(&nbID, &nbOrder); err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("read %s neighbor: %w", r.table, err)
	}

	setSQL := fmt.Sprintf("UPDATE %s SET display_order = $1 WHERE id = $2", r.table)
	if _, err := tx.Exec(ctx, setSQL, nbOrder, curID); err != nil {
		_ = tx.Rollback(ctx)
		r.log.WithContext(ctx).Warnw("reorder rolled back", "id", id, "direction", name, "error", err)
		return false, nil
	}
	if _, err := tx.Exec(ctx, setSQL, curOrder, nbID); err != nil {
		_ = tx.Rollback(ctx)
		r.log.WithContext(ctx).Warnw("reorder rolled back", "id", id, "direction", name, "error", err)
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.WithContext(ctx).Warnw("reorder commit failed", "id", id, "direction", name, "error", err)
		return false, nil
	}
	return true, nil
}

var _ progressivetype.Repository = (*ProgressiveTypeRepo)(nil)
