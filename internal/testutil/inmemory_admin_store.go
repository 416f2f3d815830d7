package testutil

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain"
)

// inMemoryAdminStore keeps admin list rows in a map and mirrors the SQL
// backends: soft delete, natural order, ILIKE-style search and paging.
// Stored rows are copies; callers never alias them.
type inMemoryAdminStore[T entity.Record] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64

	base    func(T) *entity.AdminEntity
	clone   func(T) T
	newFn   func() T
	natural func(a, b T) int
}

func newInMemoryAdminStore[T entity.Record](
	base func(T) *entity.AdminEntity,
	clone func(T) T,
	newFn func() T,
	natural func(a, b T) int,
) *inMemoryAdminStore[T] {
	return &inMemoryAdminStore[T]{
		rows:    make(map[int64]T),
		base:    base,
		clone:   clone,
		newFn:   newFn,
		natural: natural,
	}
}

// insertLocked stores a copy of item under a fresh id. Caller holds mu.
func (s *inMemoryAdminStore[T]) insertLocked(item T) {
	s.nextID++
	s.base(item).ID = s.nextID
	s.rows[s.nextID] = s.clone(item)
}

func (s *inMemoryAdminStore[T]) prepare(ctx context.Context, item T) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	s.base(item).PrepareForCreate(entity.Now())
	return nil
}

// liveLocked returns copies of the non-deleted rows. Caller holds mu.
func (s *inMemoryAdminStore[T]) liveLocked() []T {
	items := make([]T, 0, len(s.rows))
	for _, row := range s.rows {
		if !s.base(row).IsDeleted {
			items = append(items, s.clone(row))
		}
	}
	return items
}

func (s *inMemoryAdminStore[T]) GetAll(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.liveLocked()
	slices.SortFunc(items, s.natural)
	return items, nil
}

func (s *inMemoryAdminStore[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok || s.base(row).IsDeleted {
		return s.newFn(), false, nil
	}
	return s.clone(row), true, nil
}

func (s *inMemoryAdminStore[T]) Update(ctx context.Context, item T) (bool, error) {
	if err := item.Validate(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.base(item)
	row, ok := s.rows[in.ID]
	if !ok || s.base(row).IsDeleted {
		return false, nil
	}
	s.base(row).Active = nil
	if in.Active != nil {
		active := *in.Active
		s.base(row).Active = &active
	}
	s.base(row).Name = in.Name
	return true, nil
}

func (s *inMemoryAdminStore[T]) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || s.base(row).IsDeleted {
		return false, nil
	}
	s.base(row).IsDeleted = true
	return true, nil
}

func (s *inMemoryAdminStore[T]) GetPage(
	ctx context.Context,
	pageIndex, pageSize int,
	searchField, searchQuery string,
	sortOrder domain.SortOrder,
	parentIdentifier string,
) (domain.ArticleSet[T], error) {
	return s.GetFiltered(ctx, domain.PageOptions(pageIndex, pageSize, searchField, searchQuery, sortOrder, parentIdentifier))
}

func (s *inMemoryAdminStore[T]) GetFiltered(ctx context.Context, opts domain.FilterOptions) (domain.ArticleSet[T], error) {
	opts = opts.Normalize()

	s.mu.RLock()
	items := s.liveLocked()
	s.mu.RUnlock()

	if opts.HasSearch() {
		needle := strings.ToLower(opts.SearchQuery)
		items = slices.DeleteFunc(items, func(item T) bool {
			return !strings.Contains(strings.ToLower(s.base(item).Name), needle)
		})
	}

	slices.SortFunc(items, s.compare(opts.SortOrder))

	result := domain.ArticleSet[T]{
		Items:      make([]T, 0),
		TotalCount: int64(len(items)),
	}
	if opts.PageSize == 0 {
		return result, nil
	}

	start := int(min(opts.Offset(), int64(len(items))))
	end := min(start+opts.PageSize, len(items))
	result.Items = append(result.Items, items[start:end]...)
	return result, nil
}

func (s *inMemoryAdminStore[T]) compare(order domain.SortOrder) func(a, b T) int {
	switch order {
	case domain.SortName:
		return func(a, b T) int {
			return cmp.Or(strings.Compare(s.base(a).Name, s.base(b).Name), cmp.Compare(s.base(a).ID, s.base(b).ID))
		}
	case domain.SortNameDesc:
		return func(a, b T) int {
			return cmp.Or(strings.Compare(s.base(b).Name, s.base(a).Name), cmp.Compare(s.base(b).ID, s.base(a).ID))
		}
	default:
		return s.natural
	}
}

// Clear removes every row and resets id generation.
func (s *inMemoryAdminStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[int64]T)
	s.nextID = 0
}
