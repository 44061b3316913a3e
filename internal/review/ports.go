package review

import "context"

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=review

// Repository stores reviews. Create reports apperror.ErrConstraintViolation
// when the (book, author) pair already has a review, including when two
// creates race. Update and Delete match only rows authored by actorID.
type Repository interface {
	GetByID(ctx context.Context, id string) (Review, error)
	Exists(ctx context.Context, bookID, authorID string) (bool, error)
	BookExists(ctx context.Context, bookID string) (bool, error)
	Create(ctx context.Context, actorID string, rv *Review) error
	Update(ctx context.Context, actorID string, rv *Review) error
	Delete(ctx context.Context, actorID, id string) error
	ListByBook(ctx context.Context, bookID string) ([]Review, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Review, error)
}
