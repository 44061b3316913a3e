package catalog

import (
	"math"
	"testing"

	"bookreview/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want Sort
	}{
		{"", SortNewest},
		{"newest", SortNewest},
		{"OLDEST", SortOldest},
		{"by-year-desc", SortYear},
		{" year ", SortYear},
	}
	for _, tt := range tests {
		got, err := ParseSort(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSort("rating")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestQueryNormalize(t *testing.T) {
	q, err := Query{Q: "  tolk ", Page: 2}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "tolk", q.Q)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, 5, q.Offset())

	_, err = Query{Page: 0}.Normalize()
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestQueryOffset_Saturates(t *testing.T) {
	tests := []struct {
		page int
		want int
	}{
		{1, 0},
		{3, 10},
		{maxOffsetPage, (maxOffsetPage - 1) * PageSize},
		{maxOffsetPage + 1, math.MaxInt},
		{2305843009213693953, math.MaxInt},
		{math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		got := Query{Page: tt.page}.Offset()
		assert.Equal(t, tt.want, got, "page %d", tt.page)
		assert.GreaterOrEqual(t, got, 0, "page %d", tt.page)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(5))
	assert.Equal(t, 3, TotalPages(12))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, EscapeLike(`c:\dir`))
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(Query{Q: "50%", Genre: "Fantasy"})
	assert.Contains(t, where, "b.title ILIKE $1")
	assert.Contains(t, where, "b.genre = $2")
	assert.Equal(t, []any{`%50\%%`, "Fantasy"}, args)

	where, args = buildWhere(Query{})
	assert.Equal(t, "WHERE 1=1", where)
	assert.Empty(t, args)
}
