package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigrations(t *testing.T) map[string]string {
	t.Helper()
	dir := repoMigrationsDir(t)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	out := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(b)
	}
	return out
}

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	for name, s := range readMigrations(t) {
		assert.Contains(t, s, "-- +goose Up", name)
		assert.Contains(t, s, "-- +goose Down", name)
	}
}

func TestSQLMigrations_DeclareReviewInvariants(t *testing.T) {
	all := strings.Join(func() []string {
		var v []string
		for _, s := range readMigrations(t) {
			v = append(v, s)
		}
		return v
	}(), "\n")

	assert.Contains(t, all, "UNIQUE (book_id, author_id)")
	assert.Contains(t, all, "CHECK (rating BETWEEN 1 AND 5)")
	assert.Contains(t, all, "REFERENCES books(id) ON DELETE CASCADE")
	assert.Contains(t, all, "CONSTRAINT reviews_book_id_fkey REFERENCES books(id)")
	assert.Contains(t, all, "FORCE ROW LEVEL SECURITY")
}
