// Package mapped_repo implements the admin list repositories on top of the
// squirrel query builder and scany struct mapping. No statement text is
// written by hand: columns come from the entity "db" tags.
package mapped_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"adminstore/internal/core/apperror"
	"adminstore/internal/core/entity"
	"adminstore/internal/domain"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

var tracer = otel.Tracer("adminstore/mapped_repo")

// baseRepo provides the soft-delete CRUD shared by every admin list table.
// Embed it in entity repositories.
//
// The handle is resolved from the provider on every call, so a tenant bound
// to ctx selects that tenant's database.
type baseRepo[T entity.Record] struct {
	provider     postgres.ConnectionProvider
	tableName    string
	selectCols   []string
	naturalOrder []string
	newFn        func() T
	log          *logger.Logger
}

func newBaseRepo[T entity.Record](
	provider postgres.ConnectionProvider,
	tableName string,
	selectCols []string,
	naturalOrder []string,
	newFn func() T,
	log *logger.Logger,
) *baseRepo[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &baseRepo[T]{
		provider:     provider,
		tableName:    tableName,
		selectCols:   selectCols,
		naturalOrder: naturalOrder,
		newFn:        newFn,
		log:          log.WithComponent("mapped_repo." + tableName),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *baseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseRepo[T]) txManager(ctx context.Context) (*postgres.TxManager, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire %s connection: %w", r.tableName, err)
	}
	return postgres.NewTxManager(db), nil
}

// baseSelect selects the live rows.
func (r *baseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"is_deleted": false})
}

// applySearch narrows q to names containing the search query.
func (r *baseRepo[T]) applySearch(q squirrel.SelectBuilder, opts domain.FilterOptions) squirrel.SelectBuilder {
	if !opts.HasSearch() {
		return q
	}
	return q.Where(squirrel.ILike{"name": opts.ContainsPattern()})
}

// orderBy maps a sort order onto ORDER BY terms. Only fixed terms are emitted.
func (r *baseRepo[T]) orderBy(order domain.SortOrder) []string {
	switch order {
	case domain.SortName:
		return []string{"name ASC", "id ASC"}
	case domain.SortNameDesc:
		return []string{"name DESC", "id DESC"}
	default:
		return r.naturalOrder
	}
}

// insertQuery builds the INSERT for a prepared record. The id column is
// left to the identity default.
func (r *baseRepo[T]) insertQuery(item T) (squirrel.InsertBuilder, error) {
	data := postgres.StructToMap(item)
	if len(data) == 0 {
		return squirrel.InsertBuilder{}, fmt.Errorf("no db tags found in %s record", r.tableName)
	}

	cols := make([]string, 0, len(r.selectCols))
	for _, col := range r.selectCols {
		if col != "id" {
			cols = append(cols, col)
		}
	}

	return r.Builder().
		Insert(r.tableName).
		SetMap(postgres.PickColumns(data, cols...)).
		Suffix("RETURNING id"), nil
}

// insert runs the INSERT on q and returns the generated id.
func (r *baseRepo[T]) insert(ctx context.Context, q postgres.Querier, item T) (int64, error) {
	ins, err := r.insertQuery(item)
	if err != nil {
		return 0, err
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var newID int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&newID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewIntegrity(r.tableName)
		}
		return 0, fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return newID, nil
}

// GetAll returns every live row in natural order.
func (r *baseRepo[T]) GetAll(ctx context.Context) ([]T, error) {
	q := r.baseSelect().OrderBy(r.naturalOrder...)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	tm, err := r.txManager(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if err := pgxscan.Select(ctx, tm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

// GetByID returns the live row with the given id. A missing row is reported
// through found, not as an error.
func (r *baseRepo[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	item := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"id": id}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return item, false, fmt.Errorf("build query: %w", err)
	}

	tm, err := r.txManager(ctx)
	if err != nil {
		return item, false, err
	}

	if err := pgxscan.Get(ctx, tm.GetQuerier(ctx), item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return r.newFn(), false, nil
		}
		return item, false, fmt.Errorf("get %s by id: %w", r.tableName, err)
	}
	return item, true, nil
}

// updateQuery changes only active and name of the live row.
func (r *baseRepo[T]) updateQuery(id int64, active *bool, name string) squirrel.UpdateBuilder {
	return r.Builder().
		Update(r.tableName).
		Set("active", active).
		Set("name", name).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_deleted": false})
}

func (r *baseRepo[T]) update(ctx context.Context, id int64, active *bool, name string) (bool, error) {
	sql, args, err := r.updateQuery(id, active, name).ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tm, err := r.txManager(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", r.tableName, err)
	}
	return tag.RowsAffected() > 0, nil
}

// deleteQuery sets the soft-delete flag on the live row.
func (r *baseRepo[T]) deleteQuery(id int64) squirrel.UpdateBuilder {
	return r.Builder().
		Update(r.tableName).
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_deleted": false})
}

// Delete soft-deletes the row. Deleting a missing or already deleted row returns false.
func (r *baseRepo[T]) Delete(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.deleteQuery(id).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	tm, err := r.txManager(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.tableName, err)
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

// filteredQueries builds the count and page queries for opts.
// The page query is nil when no rows are requested.
func (r *baseRepo[T]) filteredQueries(opts domain.FilterOptions) (squirrel.SelectBuilder, *squirrel.SelectBuilder) {
	opts = opts.Normalize()
	filtered := r.applySearch(r.baseSelect(), opts)

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(filtered, "sub")

	if opts.PageSize == 0 {
		return countQ, nil
	}

	pageQ := filtered.
		OrderBy(r.orderBy(opts.SortOrder)...).
		Limit(uint64(opts.PageSize)).
		Offset(uint64(opts.Offset()))
	return countQ, &pageQ
}

// GetFiltered returns one page of live rows and the size of the filtered set.
// Count and page read the same snapshot.
func (r *baseRepo[T]) GetFiltered(ctx context.Context, opts domain.FilterOptions) (domain.ArticleSet[T], error) {
	result := domain.ArticleSet[T]{Items: make([]T, 0)}

	countQ, pageQ := r.filteredQueries(opts)

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	tm, err := r.txManager(ctx)
	if err != nil {
		return result, err
	}

	err = tm.ReadOnly(ctx, func(ctx context.Context) error {
		querier := tm.GetQuerier(ctx)
		if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
			return fmt.Errorf("count %s: %w", r.tableName, err)
		}

		if pageQ == nil {
			return nil
		}

		sql, args, err := pageQ.ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
			return fmt.Errorf("page %s: %w", r.tableName, err)
		}
		return nil
	})
	if err != nil {
		return domain.ArticleSet[T]{Items: make([]T, 0)}, err
	}
	return result, nil
}
