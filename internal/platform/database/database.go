// Package database opens the pgx pool and runs actor-scoped transactions.
//
// Every mutating transaction sets the app.actor_id setting so the
// row-level-security policies in db/migrations can compare it with the
// owner column of the row being written.
package database

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 2 * time.Second

// Open creates a pool and pings it once.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", RedactDSN(dsn), err)
	}
	return pool, nil
}

// Beginner is satisfied by *pgxpool.Pool and pgx.Tx.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// WithActor runs fn inside a read-write transaction bound to actorID.
// An empty actorID leaves app.actor_id unset, which the policies treat as
// the anonymous actor.
func WithActor(ctx context.Context, db Beginner, actorID string, fn func(pgx.Tx) error) error {
	return inTx(ctx, db, pgx.TxOptions{}, actorID, fn)
}

// ReadSnapshot runs fn in a read-only repeatable-read transaction so several
// queries observe one snapshot.
func ReadSnapshot(ctx context.Context, db Beginner, fn func(pgx.Tx) error) error {
	return inTx(ctx, db, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, "", fn)
}

func inTx(ctx context.Context, db Beginner, opts pgx.TxOptions, actorID string, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if actorID != "" {
		if _, err := tx.Exec(ctx, `SELECT set_config('app.actor_id', $1, true)`, actorID); err != nil {
			return err
		}
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// keywordPassword matches a password entry of a keyword/value DSN or a URL
// query, quoted or bare.
var keywordPassword = regexp.MustCompile(`(?i)(\bpassword\s*=\s*)('(?:\\.|[^'])*'|[^\s&]+)`)

// RedactDSN masks the password of a URL or keyword/value DSN.
func RedactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "<unparsable dsn>"
		}
		dsn = u.Redacted()
	}
	return keywordPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
