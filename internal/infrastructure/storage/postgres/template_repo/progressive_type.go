package template_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// orderRow is the part of a row a reorder needs.
type orderRow struct {
	ID           int64 `db:"id"`
	DisplayOrder int   `db:"display_order"`
}

// ProgressiveTypeRepo implements progressivetype.Repository.
type ProgressiveTypeRepo struct {
	*baseRepo[*progressivetype.ProgressiveType]

	nextOrderSQL string
	targetSQL    string
	prevSQL      string
	nextSQL      string
	setOrderSQL  string
}

// NewProgressiveTypeRepo creates a new progressive type repository.
func NewProgressiveTypeRepo(provider postgres.ConnectionProvider, log *logger.Logger) *ProgressiveTypeRepo {
	table := progressivetype.TableName
	return &ProgressiveTypeRepo{
		baseRepo: newBaseRepo(
			provider,
			table,
			postgres.ExtractDBColumns[progressivetype.ProgressiveType](),
			"display_order ASC, id ASC",
			func() *progressivetype.ProgressiveType { return &progressivetype.ProgressiveType{} },
			log,
		),
		nextOrderSQL: fmt.Sprintf(nextOrderStmt, table),
		targetSQL:    fmt.Sprintf(targetStmt, table),
		prevSQL:      fmt.Sprintf(prevStmt, table),
		nextSQL:      fmt.Sprintf(nextStmt, table),
		setOrderSQL:  fmt.Sprintf(setOrderStmt, table),
	}
}

func (r *ProgressiveTypeRepo) lock(ctx context.Context, q namedQuerier) error {
	if _, err := exec(ctx, q, lockStmt, map[string]any{"table": r.stmts.table}); err != nil {
		return fmt.Errorf("lock %s: %w", r.stmts.table, err)
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

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return item, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.lock(ctx, tx); err != nil {
		return item, err
	}
	if err := get(ctx, tx, &item.DisplayOrder, r.nextOrderSQL, map[string]any{}); err != nil {
		return item, fmt.Errorf("next display order: %w", err)
	}

	newID, err := r.insert(ctx, tx, item)
	if err != nil {
		return item, err
	}

	if err := tx.Commit(); err != nil {
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
	return r.move(ctx, id, r.prevSQL, "up")
}

// MoveDown swaps the row with the live row directly after it.
func (r *ProgressiveTypeRepo) MoveDown(ctx context.Context, id int64) (bool, error) {
	return r.move(ctx, id, r.nextSQL, "down")
}

func (r *ProgressiveTypeRepo) move(ctx context.Context, id int64, neighborSQL, dir string) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.lock(ctx, tx); err != nil {
		return false, err
	}

	var target orderRow
	if err := get(ctx, tx, &target, r.targetSQL, map[string]any{"id": id}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", r.stmts.table, err)
	}

	var neighbor orderRow
	if err := get(ctx, tx, &neighbor, neighborSQL, map[string]any{"display_order": target.DisplayOrder}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("read %s neighbor: %w", r.stmts.table, err)
	}

	if err := r.swap(ctx, tx, target, neighbor); err != nil {
		r.log.WithContext(ctx).Warnw("reorder rolled back", "id", id, "direction", dir, "error", err)
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		r.log.WithContext(ctx).Warnw("reorder commit failed", "id", id, "direction", dir, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *ProgressiveTypeRepo) swap(ctx context.Context, q namedQuerier, a, b orderRow) error {
	if _, err := exec(ctx, q, r.setOrderSQL, map[string]any{"id": a.ID, "display_order": b.DisplayOrder}); err != nil {
		return err
	}
	_, err := exec(ctx, q, r.setOrderSQL, map[string]any{"id": b.ID, "display_order": a.DisplayOrder})
	return err
}

var _ progressivetype.Repository = (*ProgressiveTypeRepo)(nil)
