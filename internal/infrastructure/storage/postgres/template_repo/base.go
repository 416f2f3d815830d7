package template_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"adminstore/internal/core/apperror"
	"adminstore/internal/core/entity"
	"adminstore/internal/domain"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

// namedQuerier is satisfied by *sqlx.DB and *sqlx.Tx.
type namedQuerier interface {
	sqlx.ExtContext
	BindNamed(query string, arg any) (string, []any, error)
}

type baseRepo[T entity.Record] struct {
	provider postgres.ConnectionProvider
	stmts    statements
	newFn    func() T
	log      *logger.Logger
}

func newBaseRepo[T entity.Record](
	provider postgres.ConnectionProvider,
	table string,
	cols []string,
	naturalOrder string,
	newFn func() T,
	log *logger.Logger,
) *baseRepo[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &baseRepo[T]{
		provider: provider,
		stmts:    newStatements(table, cols, naturalOrder),
		newFn:    newFn,
		log:      log.WithComponent("template_repo." + table),
	}
}

func (r *baseRepo[T]) db(ctx context.Context) (*sqlx.DB, error) {
	db, err := r.provider.SQLX(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire %s connection: %w", r.stmts.table, err)
	}
	return db, nil
}

// get runs a named single-row query into dest.
func get(ctx context.Context, q namedQuerier, dest any, query string, arg any) error {
	bound, args, err := q.BindNamed(query, arg)
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	return sqlx.GetContext(ctx, q, dest, bound, args...)
}

// sel runs a named multi-row query into dest.
func sel(ctx context.Context, q namedQuerier, dest any, query string, arg any) error {
	bound, args, err := q.BindNamed(query, arg)
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, bound, args...)
}

// exec runs a named statement and returns the affected row count.
func exec(ctx context.Context, q namedQuerier, query string, arg any) (int64, error) {
	bound, args, err := q.BindNamed(query, arg)
	if err != nil {
		return 0, fmt.Errorf("bind: %w", err)
	}
	res, err := q.ExecContext(ctx, bound, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert runs the INSERT for a prepared record and returns the generated id.
func (r *baseRepo[T]) insert(ctx context.Context, q namedQuerier, item T) (int64, error) {
	var newID int64
	if err := get(ctx, q, &newID, r.stmts.insert, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NewIntegrity(r.stmts.table)
		}
		return 0, fmt.Errorf("insert %s: %w", r.stmts.table, err)
	}
	return newID, nil
}

// GetAll returns every live row in natural order.
func (r *baseRepo[T]) GetAll(ctx context.Context) ([]T, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if err := sqlx.SelectContext(ctx, db, &items, r.stmts.getAll); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.stmts.table, err)
	}
	return items, nil
}

// GetByID returns the live row with the given id, or found=false.
func (r *baseRepo[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return r.newFn(), false, err
	}

	item := r.newFn()
	if err := get(ctx, db, item, r.stmts.getByID, map[string]any{"id": id}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.newFn(), false, nil
		}
		return r.newFn(), false, fmt.Errorf("get %s by id: %w", r.stmts.table, err)
	}
	return item, true, nil
}

func (r *baseRepo[T]) update(ctx context.Context, id int64, active *bool, name string) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}

	n, err := exec(ctx, db, r.stmts.update, map[string]any{
		"id":     id,
		"active": active,
		"name":   name,
	})
	if err != nil {
		return false, fmt.Errorf("update %s: %w", r.stmts.table, err)
	}
	return n > 0, nil
}

// Delete soft-deletes the row. Returns false when no live row matched.
func (r *baseRepo[T]) Delete(ctx context.Context, id int64) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}

	n, err := exec(ctx, db, r.stmts.delete, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.stmts.table, err)
	}
	return n > 0, nil
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

// GetFiltered returns one page of live rows and the size of the filtered set.
// Both reads share one repeatable-read snapshot.
func (r *baseRepo[T]) GetFiltered(ctx context.Context, opts domain.FilterOptions) (domain.ArticleSet[T], error) {
	result := domain.ArticleSet[T]{Items: make([]T, 0)}
	opts = opts.Normalize()

	db, err := r.db(ctx)
	if err != nil {
		return result, err
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return result, fmt.Errorf("begin read %s: %w", r.stmts.table, err)
	}
	defer func() { _ = tx.Rollback() }()

	countSQL, pageSQL, args := r.stmts.filtered(opts)

	if err := get(ctx, tx, &result.TotalCount, countSQL, args); err != nil {
		return result, fmt.Errorf("count %s: %w", r.stmts.table, err)
	}

	if opts.PageSize > 0 {
		if err := sel(ctx, tx, &result.Items, pageSQL, args); err != nil {
			return domain.ArticleSet[T]{Items: make([]T, 0)}, fmt.Errorf("page %s: %w", r.stmts.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.ArticleSet[T]{Items: make([]T, 0)}, fmt.Errorf("commit read %s: %w", r.stmts.table, err)
	}
	return result, nil
}
