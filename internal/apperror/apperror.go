// Package apperror defines the error kinds shared by every service and the
// classification of raw store errors into those kinds.
package apperror

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnauthorized is returned when the actor lacks rights for a mutation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConstraintViolation is returned when a range or uniqueness rule is broken.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation error")
	// ErrUnavailable is returned for transient store connectivity failures.
	ErrUnavailable = errors.New("store unavailable")
)

func wrap(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

func Unauthorizedf(format string, args ...any) error {
	return wrap(ErrUnauthorized, fmt.Sprintf(format, args...))
}

func ConstraintViolationf(format string, args ...any) error {
	return wrap(ErrConstraintViolation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return wrap(ErrNotFound, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) error {
	return wrap(ErrValidation, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel err belongs to, or nil when it is none of them.
func Kind(err error) error {
	for _, kind := range []error{ErrUnauthorized, ErrConstraintViolation, ErrNotFound, ErrValidation, ErrUnavailable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Postgres SQLSTATE codes the repositories care about.
const (
	codeUniqueViolation       = "23505"
	codeCheckViolation        = "23514"
	codeForeignKeyViolation   = "23503"
	codeNotNullViolation      = "23502"
	codeInsufficientPrivilege = "42501"
	codeInvalidTextRep        = "22P02"
	codeTooManyConnections    = "53300"
	codeAdminShutdown         = "57P01"
	codeCannotConnectNow      = "57P03"
)

// parentGone lists foreign keys whose violation means the referenced row was
// deleted, which callers see as NotFound rather than a broken constraint.
var parentGone = map[string]bool{
	"reviews_book_id_fkey": true,
}

// FromStore classifies an error returned by pgx. Errors that are already one
// of the kinds, and errors it does not recognise, are returned unchanged.
func FromStore(err error) error {
	if err == nil || Kind(err) != nil {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == codeForeignKeyViolation && parentGone[pgErr.ConstraintName] {
			return fmt.Errorf("%w: %s: %w", ErrNotFound, pgErr.ConstraintName, err)
		}
		switch pgErr.Code {
		case codeUniqueViolation, codeCheckViolation, codeForeignKeyViolation, codeNotNullViolation:
			return fmt.Errorf("%w: %s: %w", ErrConstraintViolation, pgErr.ConstraintName, err)
		case codeInsufficientPrivilege:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case codeInvalidTextRep:
			return fmt.Errorf("%w: %w", ErrValidation, err)
		case codeTooManyConnections, codeAdminShutdown, codeCannotConnectNow:
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		// class 08: connection exception
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// PublicMessage is the text safe to show a client. Errors that wrap a driver
// error are reduced to their kind so SQL details stay in the logs.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError
	if errors.As(err, &pgErr) || errors.As(err, &connectErr) || errors.Is(err, pgx.ErrNoRows) {
		if kind := Kind(err); kind != nil {
			return kind.Error()
		}
		return "internal error"
	}
	return err.Error()
}
