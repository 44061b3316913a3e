package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestFromStore(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "reviews_book_author_key"}, want: ErrConstraintViolation},
		{name: "check violation", err: &pgconn.PgError{Code: "23514", ConstraintName: "reviews_rating_check"}, want: ErrConstraintViolation},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503", ConstraintName: "books_owner_id_fkey"}, want: ErrConstraintViolation},
		{name: "reviewed book deleted", err: &pgconn.PgError{Code: "23503", ConstraintName: "reviews_book_id_fkey"}, want: ErrNotFound},
		{name: "row level security", err: &pgconn.PgError{Code: "42501"}, want: ErrUnauthorized},
		{name: "bad uuid", err: &pgconn.PgError{Code: "22P02"}, want: ErrValidation},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: ErrUnavailable},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, want: ErrUnavailable},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStore(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestFromStore_PassThrough(t *testing.T) {
	assert.NoError(t, FromStore(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, FromStore(plain))

	already := NotFoundf("book %s", "x")
	assert.Equal(t, already, FromStore(already))
}

func TestKind(t *testing.T) {
	assert.Equal(t, ErrUnauthorized, Kind(Unauthorizedf("actor %s", "a")))
	assert.Equal(t, ErrConstraintViolation, Kind(ConstraintViolationf("dup")))
	assert.Equal(t, ErrValidation, Kind(fmt.Errorf("wrapped: %w", Validationf("title required"))))
	assert.Nil(t, Kind(errors.New("other")))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "", PublicMessage(nil))
	assert.Equal(t, "not found: book 7", PublicMessage(NotFoundf("book %d", 7)))

	wrapped := FromStore(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	assert.Equal(t, "constraint violation", PublicMessage(wrapped))

	assert.Equal(t, "internal error", PublicMessage(&pgconn.PgError{Code: "XX000"}))
}
