package testutil

import (
	"cmp"
	"context"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/progressivetype"
)

type InMemoryProgressiveTypeStore struct {
	*inMemoryAdminStore[*progressivetype.ProgressiveType]

	// FailSwap makes the next reorders fail after the neighbor is found,
	// the way a failed UPDATE or commit does.
	FailSwap bool
}

func NewInMemoryProgressiveTypeStore() *InMemoryProgressiveTypeStore {
	return &InMemoryProgressiveTypeStore{
		inMemoryAdminStore: newInMemoryAdminStore(
			func(p *progressivetype.ProgressiveType) *entity.AdminEntity { return &p.AdminEntity },
			func(p *progressivetype.ProgressiveType) *progressivetype.ProgressiveType {
				c := *p
				c.AdminEntity = cloneAdminEntity(p.AdminEntity)
				return &c
			},
			func() *progressivetype.ProgressiveType { return &progressivetype.ProgressiveType{} },
			func(a, b *progressivetype.ProgressiveType) int {
				return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
			},
		),
	}
}

func (s *InMemoryProgressiveTypeStore) Add(ctx context.Context, item *progressivetype.ProgressiveType) (*progressivetype.ProgressiveType, error) {
	if err := s.prepare(ctx, item); err != nil {
		return item, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maxOrder := 0
	for _, row := range s.rows {
		if !row.IsDeleted && row.DisplayOrder > maxOrder {
			maxOrder = row.DisplayOrder
		}
	}
	item.DisplayOrder = maxOrder + 1
	s.insertLocked(item)
	return item, nil
}

func (s *InMemoryProgressiveTypeStore) MoveUp(ctx context.Context, id int64) (bool, error) {
	return s.move(id, true)
}

func (s *InMemoryProgressiveTypeStore) MoveDown(ctx context.Context, id int64) (bool, error) {
	return s.move(id, false)
}

func (s *InMemoryProgressiveTypeStore) move(id int64, up bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.rows[id]
	if !ok || target.IsDeleted {
		return false, nil
	}

	var neighbor *progressivetype.ProgressiveType
	for _, row := range s.rows {
		if row.IsDeleted || row.ID == id {
			continue
		}
		if up && row.DisplayOrder < target.DisplayOrder &&
			(neighbor == nil || row.DisplayOrder > neighbor.DisplayOrder) {
			neighbor = row
		}
		if !up && row.DisplayOrder > target.DisplayOrder &&
			(neighbor == nil || row.DisplayOrder < neighbor.DisplayOrder) {
			neighbor = row
		}
	}
	if neighbor == nil || s.FailSwap {
		return false, nil
	}

	target.DisplayOrder, neighbor.DisplayOrder = neighbor.DisplayOrder, target.DisplayOrder
	return true, nil
}

var _ progressivetype.Repository = (*InMemoryProgressiveTypeStore)(nil)
