package auth

import (
	"context"

	"bookreview/internal/profile"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=auth

// Repository stores identities. CreateWithProfile inserts the identity and
// its profile atomically; a duplicate email is apperror.ErrConstraintViolation.
type Repository interface {
	CreateWithProfile(ctx context.Context, ident *Identity, p *profile.Profile) error
	GetByEmail(ctx context.Context, email string) (Identity, error)
	GetByID(ctx context.Context, id string) (Identity, error)
}
