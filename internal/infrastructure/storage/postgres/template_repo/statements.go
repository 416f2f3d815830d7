// Package template_repo implements the admin list repositories with
// statement templates and named parameters, executed through sqlx over the
// database/sql driver.
package template_repo

import (
	"fmt"
	"strings"

	"adminstore/internal/domain"
)

// statements holds the named-parameter statements for one admin list table.
// They are rendered once at construction from a fixed column list.
type statements struct {
	table        string
	columns      string
	naturalOrder string

	insert  string
	getAll  string
	getByID string
	update  string
	delete  string
	count   string
	search  string
}

func newStatements(table string, cols []string, naturalOrder string) statements {
	insertCols := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != "id" {
			insertCols = append(insertCols, c)
		}
	}

	s := statements{
		table:        table,
		columns:      strings.Join(cols, ", "),
		naturalOrder: naturalOrder,
	}

	s.insert = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s) RETURNING id",
		table, strings.Join(insertCols, ", "), strings.Join(insertCols, ", :"),
	)
	s.getAll = fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted = FALSE ORDER BY %s", s.columns, table, naturalOrder)
	s.getByID = fmt.Sprintf("SELECT %s FROM %s WHERE id = :id AND is_deleted = FALSE", s.columns, table)
	s.update = fmt.Sprintf("UPDATE %s SET active = :active, name = :name WHERE id = :id AND is_deleted = FALSE", table)
	s.delete = fmt.Sprintf("UPDATE %s SET is_deleted = TRUE WHERE id = :id AND is_deleted = FALSE", table)
	s.search = " AND name ILIKE :pattern"
	s.count = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_deleted = FALSE", table)
	return s
}

// orderBy maps a sort order onto a fixed ORDER BY clause.
func (s statements) orderBy(order domain.SortOrder) string {
	switch order {
	case domain.SortName:
		return "name ASC, id ASC"
	case domain.SortNameDesc:
		return "name DESC, id DESC"
	default:
		return s.naturalOrder
	}
}

// filtered renders the count and page statements for opts with their named arguments.
func (s statements) filtered(opts domain.FilterOptions) (countSQL, pageSQL string, args map[string]any) {
	args = map[string]any{
		"limit":  opts.PageSize,
		"offset": opts.Offset(),
	}

	where := ""
	if opts.HasSearch() {
		where = s.search
		args["pattern"] = opts.ContainsPattern()
	}

	countSQL = s.count + where
	pageSQL = fmt.Sprintf(
		"SELECT %s FROM %s WHERE is_deleted = FALSE%s ORDER BY %s LIMIT :limit OFFSET :offset",
		s.columns, s.table, where, s.orderBy(opts.SortOrder),
	)
	return countSQL, pageSQL, args
}

// Reorder statements for tables with display_order.
const (
	lockStmt      = "SELECT pg_advisory_xact_lock(hashtext(:table))"
	nextOrderStmt = "SELECT COALESCE(MAX(display_order), 0) + 1 FROM %s WHERE is_deleted = FALSE"
	targetStmt    = "SELECT id, display_order FROM %s WHERE id = :id AND is_deleted = FALSE FOR UPDATE"
	prevStmt      = "SELECT id, display_order FROM %s WHERE display_order < :display_order AND is_deleted = FALSE ORDER BY display_order DESC LIMIT 1 FOR UPDATE"
	nextStmt      = "SELECT id, display_order FROM %s WHERE display_order > :display_order AND is_deleted = FALSE ORDER BY display_order ASC LIMIT 1 FOR UPDATE"
	setOrderStmt  = "UPDATE %s SET display_order = :display_order WHERE id = :id"
)
