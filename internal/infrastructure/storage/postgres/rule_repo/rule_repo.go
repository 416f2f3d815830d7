// Package rule_repo stores access rules in PostgreSQL.
package rule_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"adminstore/internal/domain/rules"
	"adminstore/internal/infrastructure/storage/postgres"
)

// RuleRepo implements rules.Store. The database is resolved per call, so a
// tenant bound to ctx selects that tenant's database.
type RuleRepo struct {
	provider postgres.ConnectionProvider
}

// NewRuleRepo creates a rule repository.
func NewRuleRepo(provider postgres.ConnectionProvider) *RuleRepo {
	return &RuleRepo{provider: provider}
}

func (r *RuleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *RuleRepo) querier(ctx context.Context) (postgres.Querier, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire rules connection: %w", err)
	}
	return postgres.NewTxManager(db).GetQuerier(ctx), nil
}

// MissingTables implements rules.Store.
func (r *RuleRepo) MissingTables(ctx context.Context, tables ...string) ([]string, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.builder().
		Select("table_name").
		From("information_schema.tables").
		Where("table_schema = current_schema()").
		Where(squirrel.Eq{"table_name": tables}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var present []string
	if err := pgxscan.Select(ctx, q, &present, sql, args...); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	seen := make(map[string]bool, len(present))
	for _, name := range present {
		seen[name] = true
	}
	var missing []string
	for _, name := range tables {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// RoleID implements rules.Store.
func (r *RuleRepo) RoleID(ctx context.Context, normalizedName string) (string, bool, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return "", false, err
	}

	sql, args, err := r.builder().
		Select("id").
		From(rules.RolesTable).
		Where(squirrel.Eq{"normalized_name": normalizedName}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build query: %w", err)
	}

	var id string
	if err := pgxscan.Get(ctx, q, &id, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get role: %w", err)
	}
	return id, true, nil
}

// ResourceIDs implements rules.Store.
func (r *RuleRepo) ResourceIDs(ctx context.Context) ([]int, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.builder().
		Select("id").
		From(rules.ResourcesTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []int
	if err := pgxscan.Select(ctx, q, &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return ids, nil
}

// Exists implements rules.Store.
func (r *RuleRepo) Exists(ctx context.Context, resourceID int, accountID, accountType string) (bool, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return false, err
	}

	sql, args, err := r.builder().
		Select("COUNT(*)").
		From(rules.TableName).
		Where(squirrel.Eq{
			"resource_id":  resourceID,
			"account_id":   accountID,
			"account_type": accountType,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check rule: %w", err)
	}
	return count > 0, nil
}

// Insert implements rules.Store.
func (r *RuleRepo) Insert(ctx context.Context, rule rules.Rule) error {
	q, err := r.querier(ctx)
	if err != nil {
		return err
	}

	data := postgres.StructToMap(rule)
	delete(data, "id")

	sql, args, err := r.builder().
		Insert(rules.TableName).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

var _ rules.Store = (*RuleRepo)(nil)
