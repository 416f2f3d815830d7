// Package driver_repo implements the admin list repositories directly on the
// pgx driver: positional parameters, manual row scanning and explicit
// transaction control.
package driver_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"adminstore/internal/core/apperror"
	"adminstore/internal/core/entity"
	"adminstore/internal/domain"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// scanFunc reads one row in select-column order.
type scanFunc[T any] func(row pgx.Row) (T, error)

type baseRepo[T entity.Record] struct {
	provider     postgres.ConnectionProvider
	table        string
	columns      string
	naturalOrder string
	scan         scanFunc[T]
	newFn        func() T
	log          *logger.Logger
}

func newBaseRepo[T entity.Record](
	provider postgres.ConnectionProvider,
	table, columns, naturalOrder string,
	scan scanFunc[T],
	newFn func() T,
	log *logger.Logger,
) *baseRepo[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &baseRepo[T]{
		provider:     provider,
		table:        table,
		columns:      columns,
		naturalOrder: naturalOrder,
		scan:         scan,
		newFn:        newFn,
		log:          log.WithComponent("driver_repo." + table),
	}
}

func (r *baseRepo[T]) db(ctx context.Context) (postgres.DB, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire %s connection: %w", r.table, err)
	}
	return db, nil
}

// collect scans every row and closes rows.
func (r *baseRepo[T]) collect(rows pgx.Rows) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// insertReturningID runs an INSERT ... RETURNING id.
func (r *baseRepo[T]) insertReturningID(ctx context.Context, q postgres.Querier, sql string, args ...any) (int64, error) {
	var newID int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&newID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewIntegrity(r.table)
		}
		return 0, fmt.Errorf("insert %s: %w", r.table, err)
	}
	return newID, nil
}

// GetAll returns every live row in natural order.
func (r *baseRepo[T]) GetAll(ctx context.Context) ([]T, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted = FALSE ORDER BY %s", r.columns, r.table, r.naturalOrder)
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return r.collect(rows)
}

// GetByID returns the live row with the given id, or found=false.
func (r *baseRepo[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return r.newFn(), false, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND is_deleted = FALSE", r.columns, r.table)
	item, err := r.scan(db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.newFn(), false, nil
		}
		return r.newFn(), false, fmt.Errorf("get %s by id: %w", r.table, err)
	}
	return item, true, nil
}

func (r *baseRepo[T]) update(ctx context.Context, id int64, active *bool, name string) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}

	sql := fmt.Sprintf("UPDATE %s SET active = $1, name = $2 WHERE id = $3 AND is_deleted = FALSE", r.table)
	tag, err := db.Exec(ctx, sql, active, name, id)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", r.table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete soft-deletes the row. Returns false when no live row matched.
func (r *baseRepo[T]) Delete(ctx context.Context, id int64) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}

	sql := fmt.Sprintf("UPDATE %s SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE", r.table)
	tag, err := db.Exec(ctx, sql, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetPage is GetFiltered with positional arguments.
func (r *baseRepo[T]) GetPage(
	ctx context.Context,
	pageIndex, pageSize int,
	searchField, searchQuery string,
	sortOrder domain.SortOrder,
	parentIdentifier string,
) (domain.ArticleSet[T], error) {
	return r.GetFiltered(ctx, domain.PageOptions(pageIndex, pageSize, searchField, searchQuery, sortOrder, parentIdentifier))
}

func (r *baseRepo[T]) orderBy(order domain.SortOrder) string {
	switch order {
	case domain.SortName:
		return "name ASC, id ASC"
	case domain.SortNameDesc:
		return "name DESC, id DESC"
	default:
		return r.naturalOrder
	}
}

// GetFiltered returns one page of live rows and the size of the filtered set.
// Both reads share one repeatable-read snapshot.
func (r *baseRepo[T]) GetFiltered(ctx context.Context, opts domain.FilterOptions) (domain.ArticleSet[T], error) {
	result := domain.ArticleSet[T]{Items: make([]T, 0)}
	opts = opts.Normalize()

	db, err := r.db(ctx)
	if err != nil {
		return result, err
	}

	where := "is_deleted = FALSE"
	var args []any
	if opts.HasSearch() {
		args = append(args, opts.ContainsPattern())
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return result, fmt.Errorf("begin read %s: %w", r.table, err)
	}

	if err := r.readPage(ctx, tx, where, args, opts, &result); err != nil {
		_ = tx.Rollback(ctx)
		return domain.ArticleSet[T]{Items: make([]T, 0)}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ArticleSet[T]{Items: make([]T, 0)}, fmt.Errorf("commit read %s: %w", r.table, err)
	}
	return result, nil
}

func (r *baseRepo[T]) readPage(
	ctx context.Context,
	tx pgx.Tx,
	where string,
	args []any,
	opts domain.FilterOptions,
	result *domain.ArticleSet[T],
) error {
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.table, where)
	if err := tx.QueryRow(ctx, countSQL, args...).Scan(&result.TotalCount); err != nil {
		return fmt.Errorf("count %s: %w", r.table, err)
	}

	if opts.PageSize == 0 {
		return nil
	}

	pageSQL := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		r.columns, r.table, where, r.orderBy(opts.SortOrder), len(args)+1, len(args)+2)
	args = append(args, opts.PageSize, opts.Offset())

	rows, err := tx.Query(ctx, pageSQL, args...)
	if err != nil {
		return fmt.Errorf("page %s: %w", r.table, err)
	}
	items, err := r.collect(rows)
	if err != nil {
		return err
	}
	result.Items = items
	return nil
}
