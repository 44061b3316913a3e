// Package catalog serves the read side: paged book listings with derived
// rating figures, book detail with reviews, and the genre list.
package catalog

import (
	"math"
	"strings"

	"bookreview/internal/apperror"
	"bookreview/internal/book"
	"bookreview/internal/review"
)

// PageSize is fixed for every listing.
const PageSize = 5

type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortYear   Sort = "by-year-desc"

	// sortYearAlias is the short form of SortYear.
	sortYearAlias Sort = "year"
)

// ParseSort accepts the three sort keys; empty means newest.
func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	case SortYear, sortYearAlias:
		return SortYear, nil
	}
	return "", apperror.Validationf("unknown sort %q, want newest, oldest or by-year-desc", s)
}

// Query selects a page of books. Q matches title or author as a
// case-insensitive substring; Genre and OwnerID match exactly.
type Query struct {
	Q       string
	Genre   string
	OwnerID string
	Sort    Sort
	Page    int
}

// Normalize validates the page and sort and trims the filters.
func (q Query) Normalize() (Query, error) {
	if q.Page < 1 {
		return q, apperror.Validationf("page must be at least 1")
	}
	s, err := ParseSort(string(q.Sort))
	if err != nil {
		return q, err
	}
	q.Sort = s
	q.Q = strings.TrimSpace(q.Q)
	q.Genre = strings.TrimSpace(q.Genre)
	q.OwnerID = strings.TrimSpace(q.OwnerID)
	return q, nil
}

// maxOffsetPage is the last page whose offset fits in an int.
const maxOffsetPage = math.MaxInt/PageSize + 1

// Offset is the number of matching books before the page. Pages too far out
// to compute saturate at math.MaxInt, which is past any total.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	if q.Page > maxOffsetPage {
		return math.MaxInt
	}
	return (q.Page - 1) * PageSize
}

// BookSummary is one listing row.
type BookSummary struct {
	book.Book
	OwnerName     string  `json:"owner_name"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type BookDetail struct {
	BookSummary
	Reviews []review.Review `json:"reviews"`
}

type Page struct {
	Items      []BookSummary `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// TotalPages is the number of pages needed for total items.
func TotalPages(total int) int {
	return (total + PageSize - 1) / PageSize
}

// EscapeLike escapes the LIKE metacharacters of s with a backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
