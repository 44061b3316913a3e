package profile

import (
	"context"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/database"

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

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Profile, error) {
	const query = `SELECT id, display_name, email, created_at, updated_at FROM profiles WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var p Profile
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(&p.ID, &p.DisplayName, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, apperror.FromStore(err)
	}
	return p, nil
}

func (r *PostgresRepo) UpdateDisplayName(ctx context.Context, actorID, id, name string, updatedAt time.Time) (Profile, error) {
	const query = `
	UPDATE profiles SET display_name = $3, updated_at = $4
	WHERE id = $1 AND id = $2
	RETURNING id, display_name, email, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var p Profile
	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		return tx.QueryRow(timeoutCtx, query, id, actorID, name, updatedAt).
			Scan(&p.ID, &p.DisplayName, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		return Profile{}, apperror.FromStore(err)
	}
	return p, nil
}
