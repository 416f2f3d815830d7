package testutil

import (
	"cmp"
	"context"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain/catalogs/denomination"
)

type InMemoryDenominationStore struct {
	*inMemoryAdminStore[*denomination.Denomination]
}

func NewInMemoryDenominationStore() *InMemoryDenominationStore {
	return &InMemoryDenominationStore{
		inMemoryAdminStore: newInMemoryAdminStore(
			func(d *denomination.Denomination) *entity.AdminEntity { return &d.AdminEntity },
			cloneDenomination,
			func() *denomination.Denomination { return &denomination.Denomination{} },
			func(a, b *denomination.Denomination) int { return cmp.Compare(b.ID, a.ID) },
		),
	}
}

func cloneDenomination(d *denomination.Denomination) *denomination.Denomination {
	c := *d
	c.AdminEntity = cloneAdminEntity(d.AdminEntity)
	return &c
}

func (s *InMemoryDenominationStore) Add(ctx context.Context, item *denomination.Denomination) (*denomination.Denomination, error) {
	if err := s.prepare(ctx, item); err != nil {
		return item, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(item)
	return item, nil
}

var _ denomination.Repository = (*InMemoryDenominationStore)(nil)

func cloneAdminEntity(e entity.AdminEntity) entity.AdminEntity {
	if e.Active != nil {
		v := *e.Active
		e.Active = &v
	}
	if e.CreatedBy != nil {
		v := *e.CreatedBy
		e.CreatedBy = &v
	}
	return e
}
