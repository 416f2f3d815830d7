package contract

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"adminstore/internal/domain"
	"adminstore/internal/domain/catalogs/progressivetype"
)

// ProgressiveTypeSuite checks progressivetype.Repository behavior, including reordering.
type ProgressiveTypeSuite struct {
	suite.Suite

	// New returns a repository over empty storage.
	New func(t *testing.T) progressivetype.Repository

	repo progressivetype.Repository
	ctx  context.Context
}

func (s *ProgressiveTypeSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.New(s.T())
}

func (s *ProgressiveTypeSuite) add(name string) *progressivetype.ProgressiveType {
	item, err := s.repo.Add(s.ctx, progressivetype.NewProgressiveType(name))
	s.Require().NoError(err)
	return item
}

// orderOf lists live names in natural order.
func (s *ProgressiveTypeSuite) orderOf() []string {
	all, err := s.repo.GetAll(s.ctx)
	s.Require().NoError(err)
	return names(all)
}

func (s *ProgressiveTypeSuite) displayOrders() []int {
	all, err := s.repo.GetAll(s.ctx)
	s.Require().NoError(err)
	out := make([]int, 0, len(all))
	for _, it := range all {
		out = append(out, it.DisplayOrder)
	}
	return out
}

func (s *ProgressiveTypeSuite) TestAddAppendsDisplayOrder() {
	first := s.add("first")
	s.Equal(1, first.DisplayOrder)

	in := progressivetype.NewProgressiveType("second")
	in.DisplayOrder = 50
	second, err := s.repo.Add(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(2, second.DisplayOrder, "caller-supplied order is replaced")

	stored, found, err := s.repo.GetByID(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(2, stored.DisplayOrder)
}

func (s *ProgressiveTypeSuite) TestAddAfterDeletingLast() {
	s.add("a")
	b := s.add("b")

	ok, err := s.repo.Delete(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().True(ok)

	c := s.add("c")
	s.Equal(2, c.DisplayOrder)
}

func (s *ProgressiveTypeSuite) TestUpdateKeepsDisplayOrder() {
	s.add("a")
	b := s.add("b")

	patch := progressivetype.NewProgressiveType("renamed")
	patch.ID = b.ID
	patch.DisplayOrder = 1

	ok, err := s.repo.Update(s.ctx, patch)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal([]string{"a", "renamed"}, s.orderOf())
	s.Equal([]int{1, 2}, s.displayOrders())
}

func (s *ProgressiveTypeSuite) TestMoveUpAndDown() {
	a := s.add("a")
	b := s.add("b")
	c := s.add("c")

	moved, err := s.repo.MoveUp(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(moved)
	s.Equal([]string{"a", "c", "b"}, s.orderOf())
	s.Equal([]int{1, 2, 3}, s.displayOrders())

	moved, err = s.repo.MoveDown(s.ctx, a.ID)
	s.Require().NoError(err)
	s.True(moved)
	s.Equal([]string{"c", "a", "b"}, s.orderOf())

	moved, err = s.repo.MoveUp(s.ctx, c.ID)
	s.Require().NoError(err)
	s.False(moved, "already first")

	moved, err = s.repo.MoveDown(s.ctx, b.ID)
	s.Require().NoError(err)
	s.False(moved, "already last")

	s.Equal([]string{"c", "a", "b"}, s.orderOf())
}

func (s *ProgressiveTypeSuite) TestCoinScenario() {
	dime := s.add("Dime")
	nickel := s.add("Nickel")
	quarter := s.add("Quarter")
	s.Equal([]int{1, 2, 3}, []int{dime.DisplayOrder, nickel.DisplayOrder, quarter.DisplayOrder})

	moved, err := s.repo.MoveDown(s.ctx, dime.ID)
	s.Require().NoError(err)
	s.True(moved)
	s.Equal([]string{"Nickel", "Dime", "Quarter"}, s.orderOf())
	s.Equal([]int{1, 2, 3}, s.displayOrders())

	ok, err := s.repo.Delete(s.ctx, nickel.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal([]string{"Dime", "Quarter"}, s.orderOf())
}

func (s *ProgressiveTypeSuite) TestSwapMiddlePair() {
	a := s.add("A")
	b := s.add("B")
	c := s.add("C")
	d := s.add("D")

	moved, err := s.repo.MoveUp(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(moved)

	orderByID := func(id int64) int {
		item, found, err := s.repo.GetByID(s.ctx, id)
		s.Require().NoError(err)
		s.Require().True(found)
		return item.DisplayOrder
	}
	s.Equal([]int{1, 3, 2, 4}, []int{orderByID(a.ID), orderByID(b.ID), orderByID(c.ID), orderByID(d.ID)})

	moved, err = s.repo.MoveUp(s.ctx, a.ID)
	s.Require().NoError(err)
	s.False(moved)
	s.Equal([]string{"A", "C", "B", "D"}, s.orderOf())
}

func (s *ProgressiveTypeSuite) TestMoveSkipsDeletedRows() {
	s.add("a")
	b := s.add("b")
	c := s.add("c")

	ok, err := s.repo.Delete(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().True(ok)

	moved, err := s.repo.MoveUp(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(moved)
	s.Equal([]string{"c", "a"}, s.orderOf())

	moved, err = s.repo.MoveUp(s.ctx, b.ID)
	s.Require().NoError(err)
	s.False(moved, "deleted target")

	moved, err = s.repo.MoveDown(s.ctx, 424242)
	s.Require().NoError(err)
	s.False(moved, "missing target")
}

func (s *ProgressiveTypeSuite) TestMoveRoundTrip() {
	s.add("a")
	b := s.add("b")
	s.add("c")

	before := s.displayOrders()

	moved, err := s.repo.MoveDown(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().True(moved)
	moved, err = s.repo.MoveUp(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().True(moved)

	s.Equal([]string{"a", "b", "c"}, s.orderOf())
	s.Equal(before, s.displayOrders())
}

func (s *ProgressiveTypeSuite) TestConcurrentAddsGetDistinctOrders() {
	const n = 8

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.Add(s.ctx, progressivetype.NewProgressiveType("item"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	seen := make(map[int]bool)
	for _, o := range s.displayOrders() {
		s.False(seen[o], "duplicate display order %d", o)
		seen[o] = true
	}
	s.Len(seen, n)
}

func (s *ProgressiveTypeSuite) TestFilteredNaturalOrder() {
	s.add("b")
	s.add("a")
	s.add("c")

	set, err := s.repo.GetFiltered(s.ctx, domain.FilterOptions{PageSize: 2, SortOrder: domain.SortDisplayOrder})
	s.Require().NoError(err)
	s.EqualValues(3, set.TotalCount)
	s.Equal([]string{"b", "a"}, names(set.Items))

	set, err = s.repo.GetFiltered(s.ctx, domain.FilterOptions{PageIndex: 1, PageSize: 2, SortOrder: domain.SortName})
	s.Require().NoError(err)
	s.Equal([]string{"c"}, names(set.Items))
}
