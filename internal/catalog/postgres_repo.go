package catalog

import (
	"context"
	"fmt"
	"strings"
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

const selectSummaries = `
	SELECT b.id, b.title, b.author, b.description, b.genre, b.published_year, b.owner_id,
	       b.created_at, b.updated_at,
	       COALESCE(p.display_name, ''),
	       COALESCE(ROUND(AVG(rv.rating)::numeric, 1), 0)::float8,
	       COUNT(rv.id)
	FROM books b
	LEFT JOIN profiles p ON p.id = b.owner_id
	LEFT JOIN reviews rv ON rv.book_id = b.id
	`

const groupSummaries = ` GROUP BY b.id, p.display_name `

var orderBy = map[Sort]string{
	SortNewest: "b.created_at DESC, b.id ASC",
	SortOldest: "b.created_at ASC, b.id ASC",
	SortYear:   "b.published_year DESC, b.id ASC",
}

func scanSummary(row pgx.Row) (BookSummary, error) {
	var s BookSummary
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Author,
		&s.Description,
		&s.Genre,
		&s.PublishedYear,
		&s.OwnerID,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.OwnerName,
		&s.AverageRating,
		&s.ReviewCount,
	)
	return s, err
}

// buildWhere renders the filters of q as a WHERE clause and its arguments.
func buildWhere(q Query) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Q != "" {
		clauses = append(clauses, fmt.Sprintf(`(b.title ILIKE $%d ESCAPE '\' OR b.author ILIKE $%d ESCAPE '\')`, argn, argn))
		args = append(args, "%"+EscapeLike(q.Q)+"%")
		argn++
	}

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("b.genre = $%d", argn))
		args = append(args, q.Genre)
		argn++
	}

	if q.OwnerID != "" {
		clauses = append(clauses, fmt.Sprintf("b.owner_id = $%d", argn))
		args = append(args, q.OwnerID)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// List counts and fetches inside one read-only repeatable-read transaction
// so the total and the page agree.
func (r *PostgresRepo) List(ctx context.Context, q Query) ([]BookSummary, int, error) {
	where, args := buildWhere(q)
	order, ok := orderBy[q.Sort]
	if !ok {
		return nil, 0, apperror.Validationf("unknown sort %q", q.Sort)
	}

	countSQL := "SELECT COUNT(*) FROM books b " + where
	dataSQL := fmt.Sprintf("%s%s%sORDER BY %s LIMIT %d OFFSET $%d",
		selectSummaries, where, groupSummaries, order, PageSize, len(args)+1)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		total int
		out   = []BookSummary{}
	)
	err := database.ReadSnapshot(timeoutCtx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
			return err
		}
		if q.Offset() >= total {
			return nil
		}

		rows, err := tx.Query(timeoutCtx, dataSQL, append(args, q.Offset())...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			s, err := scanSummary(rows)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, apperror.FromStore(err)
	}
	return out, total, nil
}

func (r *PostgresRepo) GetBook(ctx context.Context, id string) (BookSummary, error) {
	query := selectSummaries + "WHERE b.id = $1" + groupSummaries
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	s, err := scanSummary(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		return BookSummary{}, apperror.FromStore(err)
	}
	return s, nil
}

func (r *PostgresRepo) Genres(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT genre FROM books WHERE btrim(genre) <> '' ORDER BY genre`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, apperror.FromStore(err)
	}
	genres, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperror.FromStore(err)
	}
	return genres, nil
}
