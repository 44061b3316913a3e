package auth

import (
	"context"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/database"
	"bookreview/internal/profile"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// CreateWithProfile runs both inserts in one transaction acting as the new
// identity, so the profile row passes the row-level policy on profiles.
func (r *PostgresRepo) CreateWithProfile(ctx context.Context, ident *Identity, p *profile.Profile) error {
	const insertIdentity = `
	INSERT INTO identities (id, email, password_hash, created_at)
	VALUES ($1, $2, $3, $4)
	`
	const insertProfile = `
	INSERT INTO profiles (id, display_name, email, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, ident.ID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(timeoutCtx, insertIdentity, ident.ID, ident.Email, ident.PasswordHash, ident.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(timeoutCtx, insertProfile, p.ID, p.DisplayName, p.Email, p.CreatedAt, p.UpdatedAt)
		return err
	})
	return apperror.FromStore(err)
}

func (r *PostgresRepo) get(ctx context.Context, where string, arg string) (Identity, error) {
	query := `SELECT id, email, password_hash, created_at FROM identities WHERE ` + where + ` LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var ident Identity
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&ident.ID, &ident.Email, &ident.PasswordHash, &ident.CreatedAt)
	if err != nil {
		return Identity{}, apperror.FromStore(err)
	}
	return ident, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (Identity, error) {
	return r.get(ctx, "email = $1", email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Identity, error) {
	return r.get(ctx, "id = $1", id)
}
