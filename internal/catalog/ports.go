package catalog

import (
	"context"

	"bookreview/internal/review"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=catalog

// Repository answers listing queries. List returns at most PageSize items
// for the page and the total match count, both from one snapshot.
type Repository interface {
	List(ctx context.Context, q Query) ([]BookSummary, int, error)
	GetBook(ctx context.Context, id string) (BookSummary, error)
	Genres(ctx context.Context) ([]string, error)
}

type ReviewLister interface {
	ListByBook(ctx context.Context, bookID string) ([]review.Review, error)
}
