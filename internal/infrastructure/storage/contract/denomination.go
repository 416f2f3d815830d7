// Package contract is the behavior suite every repository backend must pass.
// Backends plug in through a factory that returns an empty repository.
package contract

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"adminstore/internal/core/apperror"
	"adminstore/internal/domain"
	"adminstore/internal/domain/catalogs/denomination"
)

// DenominationSuite checks denomination.Repository behavior.
type DenominationSuite struct {
	suite.Suite

	// New returns a repository over empty storage.
	New func(t *testing.T) denomination.Repository

	repo denomination.Repository
	ctx  context.Context
}

func (s *DenominationSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.New(s.T())
}

func (s *DenominationSuite) add(name string) *denomination.Denomination {
	item, err := s.repo.Add(s.ctx, denomination.NewDenomination(name))
	s.Require().NoError(err)
	return item
}

func (s *DenominationSuite) TestAddStampsServerFields() {
	before := time.Now().UTC().Add(-time.Second)

	in := denomination.NewDenomination("Dollar")
	in.Active = nil
	in.IsDeleted = true
	in.Created = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	in.CreatedBy = lo.ToPtr("importer")

	got, err := s.repo.Add(s.ctx, in)
	s.Require().NoError(err)
	s.Positive(got.ID)

	stored, found, err := s.repo.GetByID(s.ctx, got.ID)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("Dollar", stored.Name)
	s.True(stored.IsActive())
	s.False(stored.IsDeleted)
	s.True(stored.Created.After(before), "created %v not after %v", stored.Created, before)
	s.Equal("importer", lo.FromPtr(stored.CreatedBy))
}

func (s *DenominationSuite) TestAddRejectsInvalidName() {
	for _, name := range []string{"", "   ", strings.Repeat("n", 101)} {
		_, err := s.repo.Add(s.ctx, denomination.NewDenomination(name))
		s.Require().Error(err)
		s.True(apperror.IsValidation(err), "name %q: %v", name, err)
	}

	all, err := s.repo.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)

	_, err = s.repo.Add(s.ctx, denomination.NewDenomination(strings.Repeat("é", 100)))
	s.NoError(err)
}

func (s *DenominationSuite) TestGetAllNewestFirst() {
	a := s.add("A")
	b := s.add("B")
	c := s.add("C")

	all, err := s.repo.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{c.ID, b.ID, a.ID}, ids(all))
}

func (s *DenominationSuite) TestGetByIDMissing() {
	item, found, err := s.repo.GetByID(s.ctx, 424242)
	s.Require().NoError(err)
	s.False(found)
	s.Require().NotNil(item)
	s.Zero(item.ID)
}

func (s *DenominationSuite) TestUpdateChangesOnlyActiveAndName() {
	orig := s.add("Old")

	patch := denomination.NewDenomination("New")
	patch.ID = orig.ID
	patch.Active = lo.ToPtr(false)
	patch.IsDeleted = true
	patch.CreatedBy = lo.ToPtr("someone else")

	ok, err := s.repo.Update(s.ctx, patch)
	s.Require().NoError(err)
	s.True(ok)

	stored, found, err := s.repo.GetByID(s.ctx, orig.ID)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("New", stored.Name)
	s.False(stored.IsActive())
	s.False(stored.IsDeleted)
	s.Nil(stored.CreatedBy)

	patch.Active = nil
	ok, err = s.repo.Update(s.ctx, patch)
	s.Require().NoError(err)
	s.True(ok)
	stored, _, err = s.repo.GetByID(s.ctx, orig.ID)
	s.Require().NoError(err)
	s.Nil(stored.Active, "nil active is written as NULL")
	s.True(stored.IsActive())

	patch.ID = 424242
	ok, err = s.repo.Update(s.ctx, patch)
	s.Require().NoError(err)
	s.False(ok)

	patch.Name = " "
	_, err = s.repo.Update(s.ctx, patch)
	s.True(apperror.IsValidation(err))
}

func (s *DenominationSuite) TestSoftDelete() {
	keep := s.add("Keep")
	gone := s.add("Gone")

	ok, err := s.repo.Delete(s.ctx, gone.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.repo.Delete(s.ctx, gone.ID)
	s.Require().NoError(err)
	s.False(ok, "second delete")

	_, found, err := s.repo.GetByID(s.ctx, gone.ID)
	s.Require().NoError(err)
	s.False(found)

	gone.Name = "Back"
	ok, err = s.repo.Update(s.ctx, gone)
	s.Require().NoError(err)
	s.False(ok, "update of deleted row")

	all, err := s.repo.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{keep.ID}, ids(all))

	set, err := s.repo.GetFiltered(s.ctx, domain.FilterOptions{PageSize: 10})
	s.Require().NoError(err)
	s.EqualValues(1, set.TotalCount)
}

func (s *DenominationSuite) TestSearchSortAndPaging() {
	for _, n := range []string{"alpha", "beta", "gamma ray", "delta", "alphabet"} {
		s.add(n)
	}

	set, err := s.repo.GetPage(s.ctx, 0, 10, "Name", "ALPHA", domain.SortName, "")
	s.Require().NoError(err)
	s.EqualValues(2, set.TotalCount)
	s.Equal([]string{"alpha", "alphabet"}, names(set.Items))

	set, err = s.repo.GetPage(s.ctx, 0, 10, "", "alpha", domain.SortNameDesc, "")
	s.Require().NoError(err)
	s.Equal([]string{"alphabet", "alpha"}, names(set.Items))

	set, err = s.repo.GetPage(s.ctx, 1, 2, "", "", domain.SortName, "")
	s.Require().NoError(err)
	s.EqualValues(5, set.TotalCount)
	s.Equal([]string{"beta", "delta"}, names(set.Items))

	set, err = s.repo.GetPage(s.ctx, -4, 2, "", "", domain.SortName, "")
	s.Require().NoError(err)
	s.Equal([]string{"alpha", "alphabet"}, names(set.Items))

	set, err = s.repo.GetPage(s.ctx, 9, 2, "", "", domain.SortName, "")
	s.Require().NoError(err)
	s.EqualValues(5, set.TotalCount)
	s.Empty(set.Items)

	set, err = s.repo.GetPage(s.ctx, 0, 0, "", "a", domain.SortDefault, "")
	s.Require().NoError(err)
	s.EqualValues(5, set.TotalCount)
	s.Empty(set.Items)

	set, err = s.repo.GetPage(s.ctx, 0, 10, "", "   ", domain.SortDefault, "parent-1")
	s.Require().NoError(err)
	s.EqualValues(5, set.TotalCount)
}

func (s *DenominationSuite) TestThirdPageOfTwentyFive() {
	for i := 1; i <= 25; i++ {
		s.add(fmt.Sprintf("coin %02d", i))
	}

	set, err := s.repo.GetPage(s.ctx, 2, 10, "", "", domain.SortName, "")
	s.Require().NoError(err)
	s.EqualValues(25, set.TotalCount)
	s.Equal([]string{"coin 21", "coin 22", "coin 23", "coin 24", "coin 25"}, names(set.Items))

	set, err = s.repo.GetPage(s.ctx, 2, 10, "", "", domain.SortDefault, "")
	s.Require().NoError(err)
	s.EqualValues(25, set.TotalCount)
	s.Len(set.Items, 5)
}

func (s *DenominationSuite) TestHugePageIndexIsEmpty() {
	s.add("Penny")
	s.add("Dime")

	for _, opts := range []domain.FilterOptions{
		{PageIndex: math.MaxInt64 / 250, PageSize: 500},
		{PageIndex: math.MaxInt, PageSize: 1, SortOrder: domain.SortName},
	} {
		set, err := s.repo.GetFiltered(s.ctx, opts)
		s.Require().NoError(err, "page %d size %d", opts.PageIndex, opts.PageSize)
		s.EqualValues(2, set.TotalCount)
		s.NotNil(set.Items)
		s.Empty(set.Items)
	}
}

func (s *DenominationSuite) TestSearchWildcardsAreLiteral() {
	s.add("100% cotton")
	s.add("1000 pieces")
	s.add("snake_case")
	s.add("snakeXcase")

	set, err := s.repo.GetFiltered(s.ctx, domain.FilterOptions{PageSize: 10, SearchQuery: "100%"})
	s.Require().NoError(err)
	s.Equal([]string{"100% cotton"}, names(set.Items))

	set, err = s.repo.GetFiltered(s.ctx, domain.FilterOptions{PageSize: 10, SearchQuery: "_"})
	s.Require().NoError(err)
	s.Equal([]string{"snake_case"}, names(set.Items))
}

func ids[T interface{ GetID() int64 }](items []T) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.GetID())
	}
	return out
}

func names[T interface{ GetName() string }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.GetName())
	}
	return out
}
