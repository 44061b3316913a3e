package review

import (
	"context"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectReviews = `
	SELECT r.id, r.book_id, r.author_id, COALESCE(p.display_name, ''), r.rating, r.body, r.created_at, r.updated_at
	FROM reviews r
	LEFT JOIN profiles p ON p.id = r.author_id
	`

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

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	err := row.Scan(
		&rv.ID,
		&rv.BookID,
		&rv.AuthorID,
		&rv.AuthorName,
		&rv.Rating,
		&rv.Body,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	return rv, err
}

func (r *PostgresRepo) list(ctx context.Context, query string, arg string) ([]Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, arg)
	if err != nil {
		return nil, apperror.FromStore(err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, apperror.FromStore(err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, apperror.FromStore(rows.Err())
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rv, err := scanReview(r.db.QueryRow(timeoutCtx, selectReviews+`WHERE r.id = $1`, id))
	if err != nil {
		return Review{}, apperror.FromStore(err)
	}
	return rv, nil
}

func (r *PostgresRepo) Exists(ctx context.Context, bookID, authorID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM reviews WHERE book_id = $1 AND author_id = $2)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(timeoutCtx, query, bookID, authorID).Scan(&exists)
	return exists, apperror.FromStore(err)
}

func (r *PostgresRepo) BookExists(ctx context.Context, bookID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(timeoutCtx, query, bookID).Scan(&exists)
	return exists, apperror.FromStore(err)
}

// ListByBook returns the reviews of a book, newest first.
func (r *PostgresRepo) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	return r.list(ctx, selectReviews+`WHERE r.book_id = $1 ORDER BY r.created_at DESC, r.id ASC`, bookID)
}

func (r *PostgresRepo) ListByAuthor(ctx context.Context, authorID string) ([]Review, error) {
	return r.list(ctx, selectReviews+`WHERE r.author_id = $1 ORDER BY r.created_at DESC, r.id ASC`, authorID)
}

// Create relies on the (book_id, author_id) unique index to reject a
// concurrent duplicate.
func (r *PostgresRepo) Create(ctx context.Context, actorID string, rv *Review) error {
	const query = `
	INSERT INTO reviews (id, book_id, author_id, rating, body, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		_, err := tx.Exec(timeoutCtx, query, rv.ID, rv.BookID, rv.AuthorID, rv.Rating, rv.Body, rv.CreatedAt, rv.UpdatedAt)
		return err
	})
	return apperror.FromStore(err)
}

func (r *PostgresRepo) Update(ctx context.Context, actorID string, rv *Review) error {
	const query = `
	UPDATE reviews SET rating = $3, body = $4, updated_at = $5
	WHERE id = $1 AND author_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(timeoutCtx, query, rv.ID, actorID, rv.Rating, rv.Body, rv.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.NotFoundf("review %s", rv.ID)
		}
		return nil
	})
	return apperror.FromStore(err)
}

func (r *PostgresRepo) Delete(ctx context.Context, actorID, id string) error {
	const query = `DELETE FROM reviews WHERE id = $1 AND author_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(timeoutCtx, query, id, actorID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.NotFoundf("review %s", id)
		}
		return nil
	})
	return apperror.FromStore(err)
}
