package mapped_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// direction of a reorder.
type direction int

const (
	up direction = iota
	down
)

func (d direction) String() string {
	if d == up {
		return "up"
	}
	return "down"
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
			postgres.ExtractDBColumns[progressivetype.ProgressiveType](),
			[]string{"display_order ASC", "id ASC"},
			func() *progressivetype.ProgressiveType { return &progressivetype.ProgressiveType{} },
			log,
		),
	}
}

// lockQuery serializes writers of display_order for the table until the
// transaction ends.
func (r *ProgressiveTypeRepo) lockQuery() squirrel.SelectBuilder {
	return r.Builder().
		Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", r.tableName))
}

// nextOrderQuery selects one past the highest live display_order.
func (r *ProgressiveTypeRepo) nextOrderQuery() squirrel.SelectBuilder {
	return r.Builder().
		Select("COALESCE(MAX(display_order), 0) + 1").
		From(r.tableName).
		Where(squirrel.Eq{"is_deleted": false})
}

// targetQuery locks the live row being moved.
func (r *ProgressiveTypeRepo) targetQuery(id int64) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		Suffix("FOR UPDATE")
}

// neighborQuery locks the adjacent live row in the given direction.
func (r *ProgressiveTypeRepo) neighborQuery(order int, dir direction) squirrel.SelectBuilder {
	q := r.baseSelect()
	if dir == up {
		q = q.Where(squirrel.Lt{"display_order": order}).OrderBy("display_order DESC")
	} else {
		q = q.Where(squirrel.Gt{"display_order": order}).OrderBy("display_order ASC")
	}
	return q.Limit(1).Suffix("FOR UPDATE")
}

func (r *ProgressiveTypeRepo) setOrderQuery(id int64, order int) squirrel.UpdateBuilder {
	return r.Builder().
		Update(r.tableName).
		Set("display_order", order).
		Where(squirrel.Eq{"id": id})
}

func (r *ProgressiveTypeRepo) lock(ctx context.Context, q postgres.Querier) error {
	sql, args, err := r.lockQuery().ToSql()
	if err != nil {
		return fmt.Errorf("build lock: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("lock %s: %w", r.tableName, err)
	}
	return nil
}

// Add validates the record, assigns the next display order and inserts it.
// The advisory lock makes the max-read and insert atomic against other writers.
func (r *ProgressiveTypeRepo) Add(ctx context.Context, item *progressivetype.ProgressiveType) (*progressivetype.ProgressiveType, error) {
	if err := item.Validate(ctx); err != nil {
		return item, err
	}
	item.PrepareForCreate(entity.Now())

	tm, err := r.txManager(ctx)
	if err != nil {
		return item, err
	}

	err = tm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := tm.GetQuerier(ctx)
		if err := r.lock(ctx, querier); err != nil {
			return err
		}

		sql, args, err := r.nextOrderQuery().ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if err := querier.QueryRow(ctx, sql, args...).Scan(&item.DisplayOrder); err != nil {
			return fmt.Errorf("next display order: %w", err)
		}

		newID, err := r.insert(ctx, querier, item)
		if err != nil {
			return err
		}
		item.ID = newID
		return nil
	})
	if err != nil {
		return item, err
	}
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
	return r.move(ctx, id, up)
}

// MoveDown swaps the row with the live row directly after it.
func (r *ProgressiveTypeRepo) MoveDown(ctx context.Context, id int64) (bool, error) {
	return r.move(ctx, id, down)
}

// move runs the adjacent swap in one transaction.
// Failures of the swap itself (the two updates or the commit) are rolled back
// and reported as false without an error.
func (r *ProgressiveTypeRepo) move(ctx context.Context, id int64, dir direction) (bool, error) {
	ctx, span := tracer.Start(ctx, "progressive_types.move",
		trace.WithAttributes(
			attribute.Int64("entity.id", id),
			attribute.String("move.direction", dir.String()),
		))
	defer span.End()

	tm, err := r.txManager(ctx)
	if err != nil {
		return false, err
	}

	var moved, swapping bool
	err = tm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := tm.GetQuerier(ctx)
		if err := r.lock(ctx, querier); err != nil {
			return err
		}

		target, found, err := r.fetchOne(ctx, querier, r.targetQuery(id))
		if err != nil || !found {
			return err
		}

		neighbor, found, err := r.fetchOne(ctx, querier, r.neighborQuery(target.DisplayOrder, dir))
		if err != nil || !found {
			return err
		}

		swapping = true
		if err := r.setOrder(ctx, querier, target.ID, neighbor.DisplayOrder); err != nil {
			return err
		}
		if err := r.setOrder(ctx, querier, neighbor.ID, target.DisplayOrder); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		if swapping {
			r.log.WithContext(ctx).Warnw("reorder rolled back",
				"id", id,
				"direction", dir.String(),
				"error", err,
			)
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}

	span.SetAttributes(attribute.Bool("move.moved", moved))
	return moved, nil
}

func (r *ProgressiveTypeRepo) fetchOne(ctx context.Context, q postgres.Querier, sb squirrel.SelectBuilder) (*progressivetype.ProgressiveType, bool, error) {
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}

	item := r.newFn()
	if err := pgxscan.Get(ctx, q, item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", r.tableName, err)
	}
	return item, true, nil
}

func (r *ProgressiveTypeRepo) setOrder(ctx context.Context, q postgres.Querier, id int64, order int) error {
	sql, args, err := r.setOrderQuery(id, order).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set display order: %w", err)
	}
	return nil
}

var _ progressivetype.Repository = (*ProgressiveTypeRepo)(nil)
