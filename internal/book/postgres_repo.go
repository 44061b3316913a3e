package book

import (
	"context"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, title, author, description, genre, published_year, owner_id, created_at, updated_at`

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

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.Genre,
		&b.PublishedYear,
		&b.OwnerID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		return Book{}, apperror.FromStore(err)
	}
	return b, nil
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY created_at DESC, id ASC`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, ownerID)
	if err != nil {
		return nil, apperror.FromStore(err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, apperror.FromStore(err)
		}
		books = append(books, b)
	}
	return books, apperror.FromStore(rows.Err())
}

func (r *PostgresRepo) Create(ctx context.Context, actorID string, b *Book) error {
	const query = `
	INSERT INTO books (id, title, author, description, genre, published_year, owner_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		_, err := tx.Exec(timeoutCtx, query,
			b.ID, b.Title, b.Author, b.Description, b.Genre, b.PublishedYear, b.OwnerID, b.CreatedAt, b.UpdatedAt,
		)
		return err
	})
	return apperror.FromStore(err)
}

func (r *PostgresRepo) Update(ctx context.Context, actorID string, b *Book) error {
	const query = `
	UPDATE books
	SET title = $3, author = $4, description = $5, genre = $6, published_year = $7, updated_at = $8
	WHERE id = $1 AND owner_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(timeoutCtx, query,
			b.ID, actorID, b.Title, b.Author, b.Description, b.Genre, b.PublishedYear, b.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.NotFoundf("book %s", b.ID)
		}
		return nil
	})
	return apperror.FromStore(err)
}

// Delete removes the book; reviews go with it through ON DELETE CASCADE.
func (r *PostgresRepo) Delete(ctx context.Context, actorID, id string) error {
	const query = `DELETE FROM books WHERE id = $1 AND owner_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := database.WithActor(timeoutCtx, r.db, actorID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(timeoutCtx, query, id, actorID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.NotFoundf("book %s", id)
		}
		return nil
	})
	return apperror.FromStore(err)
}
