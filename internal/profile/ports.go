package profile

import (
	"context"
	"time"

	"bookreview/internal/book"
	"bookreview/internal/review"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=profile

// Repository stores profiles. Profiles are inserted by registration, see
// auth.Repository.
type Repository interface {
	GetByID(ctx context.Context, id string) (Profile, error)
	UpdateDisplayName(ctx context.Context, actorID, id, name string, updatedAt time.Time) (Profile, error)
}

type BookLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]book.Book, error)
}

type ReviewLister interface {
	ListByAuthor(ctx context.Context, authorID string) ([]review.Review, error)
}
