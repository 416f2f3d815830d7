package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortOrder(t *testing.T) {
	tests := map[string]SortOrder{
		"":             SortDefault,
		"Name":         SortName,
		" name ":       SortName,
		"NameDesc":     SortNameDesc,
		"name_desc":    SortNameDesc,
		"-name":        SortNameDesc,
		"DisplayOrder": SortDisplayOrder,
		"created":      SortDefault,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSortOrder(in), in)
	}
}

func TestFilterOptions_Normalize(t *testing.T) {
	opts := FilterOptions{PageIndex: -2, PageSize: -5}.Normalize()
	assert.Equal(t, 0, opts.PageIndex)
	assert.Equal(t, 0, opts.PageSize)

	opts = FilterOptions{PageIndex: 3, PageSize: 10}.Normalize()
	assert.Equal(t, int64(30), opts.Offset())
}

func TestFilterOptions_OffsetSaturates(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want int64
	}{
		{"first page", FilterOptions{PageIndex: 0, PageSize: 500}, 0},
		{"count only", FilterOptions{PageIndex: 7, PageSize: 0}, 0},
		{"negative index", FilterOptions{PageIndex: -1, PageSize: 10}, 0},
		{"largest exact", FilterOptions{PageIndex: math.MaxInt64 / 500, PageSize: 500}, (math.MaxInt64 / 500) * 500},
		{"overflow", FilterOptions{PageIndex: math.MaxInt64 / 250, PageSize: 500}, math.MaxInt64},
		{"max index", FilterOptions{PageIndex: math.MaxInt, PageSize: 2}, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Offset())
		})
	}
}

func TestFilterOptions_Search(t *testing.T) {
	assert.False(t, FilterOptions{SearchQuery: "   "}.HasSearch())
	assert.True(t, FilterOptions{SearchQuery: " a "}.HasSearch())

	assert.Equal(t, `%50\%\_off\\%`, FilterOptions{SearchQuery: `50%_off\`}.ContainsPattern())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", EscapeLike("plain"))
	assert.Equal(t, `a\%b\_c\\d`, EscapeLike(`a%b_c\d`))
}

func TestPageOptions(t *testing.T) {
	opts := PageOptions(2, 25, "Name", "eur", SortNameDesc, "parent")
	assert.Equal(t, FilterOptions{
		PageIndex:        2,
		PageSize:         25,
		SearchField:      "Name",
		SearchQuery:      "eur",
		SortOrder:        SortNameDesc,
		ParentIdentifier: "parent",
	}, opts)
}
