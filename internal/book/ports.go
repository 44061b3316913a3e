package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book storage. Mutations take the acting
// user so the store can scope the write to rows that user owns; a write that
// matches no row reports apperror.ErrNotFound.
type Repository interface {
	GetByID(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, actorID string, b *Book) error
	Update(ctx context.Context, actorID string, b *Book) error
	Delete(ctx context.Context, actorID, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Book, error)
}
