package postgres

import (
	"context"
	"fmt"
	"strings"

	"adminstore/internal/core/tenant"
	"adminstore/pkg/logger"
)

// ColumnSpec is one column of a managed table. Definition must be valid both
// in CREATE TABLE and in ALTER TABLE ADD COLUMN, so added columns carry defaults.
type ColumnSpec struct {
	Name       string
	Definition string
}

// TableSpec describes a table the builder creates or completes.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
	// Indexes are CREATE INDEX IF NOT EXISTS statements run after the table exists.
	Indexes []string
}

// CreateStatement renders CREATE TABLE IF NOT EXISTS for the spec.
func (s TableSpec) CreateStatement() string {
	defs := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		defs = append(defs, c.Name+" "+c.Definition)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", s.Name, strings.Join(defs, ",\n\t"))
}

// AddColumnStatement renders ALTER TABLE ADD COLUMN for one column.
func (s TableSpec) AddColumnStatement(c ColumnSpec) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", s.Name, c.Name, c.Definition)
}

// adminListColumns are shared by every admin list table.
var adminListColumns = []ColumnSpec{
	{"id", "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"},
	{"active", "BOOLEAN NULL DEFAULT TRUE"},
	{"is_deleted", "BOOLEAN NOT NULL DEFAULT FALSE"},
	{"created", "TIMESTAMPTZ NOT NULL DEFAULT now()"},
	{"created_by", "VARCHAR(255) NULL"},
	{"name", "VARCHAR(100) NOT NULL DEFAULT ''"},
}

// AdminListTable returns the TableSpec for an admin list table. Ordered tables get
// display_order and a partial index over live rows.
func AdminListTable(name string, ordered bool) TableSpec {
	spec := TableSpec{
		Name:    name,
		Columns: append([]ColumnSpec(nil), adminListColumns...),
	}
	if ordered {
		spec.Columns = append(spec.Columns, ColumnSpec{"display_order", "INT NOT NULL DEFAULT 0"})
		spec.Indexes = append(spec.Indexes, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS ix_%s_display_order ON %s (display_order) WHERE is_deleted = FALSE",
			name, name,
		))
	}
	return spec
}

// RulesTable holds per-resource permissions for users, groups and roles.
var RulesTable = TableSpec{
	Name: "rules",
	Columns: []ColumnSpec{
		{"id", "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"},
		{"resource_id", "INT NULL"},
		{"account_id", "VARCHAR(100) NULL"},
		{"account_type", "VARCHAR(100) NULL"},
		{"no_access", "BOOLEAN NOT NULL DEFAULT FALSE"},
		{"list", "BOOLEAN NOT NULL DEFAULT TRUE"},
		{"read_article", "BOOLEAN NOT NULL DEFAULT TRUE"},
		{"download", "BOOLEAN NOT NULL DEFAULT TRUE"},
		{"write", "BOOLEAN NOT NULL DEFAULT TRUE"},
		{"upload", "BOOLEAN NOT NULL DEFAULT TRUE"},
		{"extra", "BOOLEAN NOT NULL DEFAULT FALSE"},
		{"admin", "BOOLEAN NOT NULL DEFAULT FALSE"},
		{"comment", "BOOLEAN NOT NULL DEFAULT TRUE"},
		{"menu", "BOOLEAN NOT NULL DEFAULT TRUE"},
	},
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS ix_rules_resource_account ON rules (resource_id, account_type, account_id)",
	},
}

// DefaultTables lists every table the application owns.
func DefaultTables() []TableSpec {
	return []TableSpec{
		AdminListTable("denominations", false),
		AdminListTable("progressive_types", true),
		RulesTable,
	}
}

// EnsureResult reports what EnsureTable changed.
type EnsureResult struct {
	Created      bool
	AddedColumns []string
}

// EnsureTable creates the table when it is missing, otherwise adds the
// columns the TableSpec has and the table lacks. Existing columns are never altered.
func EnsureTable(ctx context.Context, q Querier, spec TableSpec) (EnsureResult, error) {
	var res EnsureResult

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, spec.Name).Scan(&exists)
	if err != nil {
		return res, fmt.Errorf("check table %s: %w", spec.Name, err)
	}

	if !exists {
		if _, err := q.Exec(ctx, spec.CreateStatement()); err != nil {
			return res, fmt.Errorf("create table %s: %w", spec.Name, err)
		}
		res.Created = true
	} else {
		present, err := existingColumns(ctx, q, spec.Name)
		if err != nil {
			return res, err
		}
		for _, c := range spec.Columns {
			if present[c.Name] {
				continue
			}
			if _, err := q.Exec(ctx, spec.AddColumnStatement(c)); err != nil {
				return res, fmt.Errorf("add column %s.%s: %w", spec.Name, c.Name, err)
			}
			res.AddedColumns = append(res.AddedColumns, c.Name)
		}
	}

	for _, stmt := range spec.Indexes {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return res, fmt.Errorf("create index on %s: %w", spec.Name, err)
		}
	}
	return res, nil
}

func existingColumns(ctx context.Context, q Querier, table string) (map[string]bool, error) {
	rows, err := q.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		present[name] = true
	}
	return present, rows.Err()
}

// TableBuilder applies the table specs to the default database and to every
// active tenant database.
type TableBuilder struct {
	tables  []TableSpec
	master  ConnectionProvider
	manager *tenant.Manager
	log     *logger.Logger
}

// NewTableBuilder creates a builder. With no tables given, DefaultTables is used.
// manager may be nil when only the default database is built.
func NewTableBuilder(master ConnectionProvider, manager *tenant.Manager, log *logger.Logger, tables ...TableSpec) *TableBuilder {
	if len(tables) == 0 {
		tables = DefaultTables()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TableBuilder{
		tables:  tables,
		master:  master,
		manager: manager,
		log:     log.WithComponent("table_builder"),
	}
}

// Build ensures every table on q.
func (b *TableBuilder) Build(ctx context.Context, q Querier) error {
	log := b.log.WithContext(ctx)
	for _, spec := range b.tables {
		res, err := EnsureTable(ctx, q, spec)
		if err != nil {
			return err
		}
		switch {
		case res.Created:
			log.Infow("table created", "table", spec.Name)
		case len(res.AddedColumns) > 0:
			log.Infow("columns added", "table", spec.Name, "columns", res.AddedColumns)
		default:
			log.Debugw("table up to date", "table", spec.Name)
		}
	}
	return nil
}

// BuildMaster builds the tables on the default database.
func (b *TableBuilder) BuildMaster(ctx context.Context) error {
	db, err := b.master.DB(ctx)
	if err != nil {
		return fmt.Errorf("master database: %w", err)
	}
	if err := b.Build(ctx, db); err != nil {
		b.log.WithContext(ctx).Errorw("master database build failed", "error", err)
		return err
	}
	b.log.WithContext(ctx).Infow("master database processed")
	return nil
}

// BuildTenants builds the tables on every active tenant database. A failing
// tenant is logged and skipped; the failures are returned joined.
func (b *TableBuilder) BuildTenants(ctx context.Context) error {
	if b.manager == nil {
		return fmt.Errorf("tenant manager is not configured")
	}
	return b.manager.ForEachActive(ctx, func(ctx context.Context, mp *tenant.ManagedPool) error {
		if err := b.Build(ctx, mp.Pool()); err != nil {
			return err
		}
		b.log.WithContext(ctx).Infow("tenant database processed", "slug", mp.Tenant().Slug)
		return nil
	})
}
