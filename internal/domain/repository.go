// Package domain provides the repository contract and service layer shared by admin list entities.
package domain

import (
	"context"
	"math"
	"strings"
)

// --- Sorting ---

// SortOrder selects one of the fixed list orderings.
type SortOrder string

const (
	// SortDefault is the entity's natural order.
	SortDefault SortOrder = ""
	// SortName orders by name ascending, then id ascending.
	SortName SortOrder = "Name"
	// SortNameDesc orders by name descending, then id descending.
	SortNameDesc SortOrder = "NameDesc"
	// SortDisplayOrder is accepted for ordered entities and equals the natural order.
	SortDisplayOrder SortOrder = "DisplayOrder"
)

// ParseSortOrder maps user input onto a known order. Unknown values fall back to SortDefault.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortName
	case "namedesc", "name_desc", "-name":
		return SortNameDesc
	case "displayorder", "display_order":
		return SortDisplayOrder
	default:
		return SortDefault
	}
}

// --- Filter & Pagination ---

// FilterOptions drives a paged, filtered listing.
type FilterOptions struct {
	// PageIndex is zero-based
	PageIndex int
	PageSize  int

	// SearchField names the column to search; Name is the only searchable column
	SearchField string
	SearchQuery string

	// SortOrder defaults to the natural order
	SortOrder SortOrder

	// ParentIdentifier is accepted for callers that scope lists by parent.
	// Admin list entities have no parent column, so it does not filter.
	ParentIdentifier string
}

// Normalize clamps negative paging values.
func (o FilterOptions) Normalize() FilterOptions {
	if o.PageIndex < 0 {
		o.PageIndex = 0
	}
	if o.PageSize < 0 {
		o.PageSize = 0
	}
	return o
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt64
// instead of overflowing, so a huge page index yields an empty page.
func (o FilterOptions) Offset() int64 {
	if o.PageIndex <= 0 || o.PageSize <= 0 {
		return 0
	}
	if int64(o.PageIndex) > math.MaxInt64/int64(o.PageSize) {
		return math.MaxInt64
	}
	return int64(o.PageIndex) * int64(o.PageSize)
}

// HasSearch reports whether a name filter applies.
func (o FilterOptions) HasSearch() bool {
	return strings.TrimSpace(o.SearchQuery) != ""
}

// ContainsPattern returns the ILIKE pattern for the search query with wildcards escaped.
func (o FilterOptions) ContainsPattern() string {
	return "%" + EscapeLike(o.SearchQuery) + "%"
}

// PageOptions builds FilterOptions from positional arguments.
func PageOptions(pageIndex, pageSize int, searchField, searchQuery string, sortOrder SortOrder, parentIdentifier string) FilterOptions {
	return FilterOptions{
		PageIndex:        pageIndex,
		PageSize:         pageSize,
		SearchField:      searchField,
		SearchQuery:      searchQuery,
		SortOrder:        sortOrder,
		ParentIdentifier: parentIdentifier,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so the value matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ArticleSet is one page of items plus the size of the filtered collection.
type ArticleSet[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
}

// --- Repository Interfaces ---

// Repository defines the soft-delete CRUD contract every storage backend satisfies.
//
// Missing or soft-deleted rows never produce errors: GetByID reports found=false,
// Update and Delete return false.
type Repository[T any] interface {
	// Add validates, stamps Created/IsDeleted/Active and inserts the record.
	Add(ctx context.Context, item T) (T, error)

	// GetAll returns every non-deleted record in natural order.
	GetAll(ctx context.Context) ([]T, error)

	// GetByID returns the non-deleted record with the given id.
	GetByID(ctx context.Context, id int64) (T, bool, error)

	// Update applies Active and Name only.
	Update(ctx context.Context, item T) (bool, error)

	// Delete sets the soft-delete flag.
	Delete(ctx context.Context, id int64) (bool, error)

	GetPage(ctx context.Context, pageIndex, pageSize int, searchField, searchQuery string, sortOrder SortOrder, parentIdentifier string) (ArticleSet[T], error)

	GetFiltered(ctx context.Context, opts FilterOptions) (ArticleSet[T], error)
}

// OrderedRepository adds adjacent-swap reordering for entities with DisplayOrder.
type OrderedRepository[T any] interface {
	Repository[T]

	// MoveUp swaps the record with its predecessor. Returns false when the record
	// is missing, already first, or the swap was rolled back.
	MoveUp(ctx context.Context, id int64) (bool, error)

	// MoveDown is the mirror of MoveUp.
	MoveDown(ctx context.Context, id int64) (bool, error)
}
