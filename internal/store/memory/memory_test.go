package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/catalog"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func register(t *testing.T, s *Store, id, email, name string) {
	t.Helper()
	err := s.Identities().CreateWithProfile(context.Background(),
		&auth.Identity{ID: id, Email: email, PasswordHash: "x", CreatedAt: t0},
		&profile.Profile{ID: id, Email: email, DisplayName: name, CreatedAt: t0, UpdatedAt: t0})
	require.NoError(t, err)
}

func addBook(t *testing.T, s *Store, id, owner string, created time.Time) {
	t.Helper()
	b := &book.Book{ID: id, Title: "T " + id, Author: "A", OwnerID: owner, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, s.Books().Create(context.Background(), owner, b))
}

func TestCreateWithProfile_DuplicateEmail(t *testing.T) {
	s := New()
	register(t, s, "u1", "ada@x.com", "Ada")

	err := s.Identities().CreateWithProfile(context.Background(),
		&auth.Identity{ID: "u2", Email: "ada@x.com"},
		&profile.Profile{ID: "u2", Email: "ada@x.com"})
	assert.ErrorIs(t, err, apperror.ErrConstraintViolation)

	_, err = s.Profiles().GetByID(context.Background(), "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound, "no profile without identity")
}

func TestCreateWithProfile_ProfileMustMatchIdentity(t *testing.T) {
	s := New()
	err := s.Identities().CreateWithProfile(context.Background(),
		&auth.Identity{ID: "u1", Email: "a@x.com"},
		&profile.Profile{ID: "other", Email: "a@x.com"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = s.Identities().GetByID(context.Background(), "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProfileUpdate_OnlyOwner(t *testing.T) {
	s := New()
	register(t, s, "u1", "ada@x.com", "Ada")

	_, err := s.Profiles().UpdateDisplayName(context.Background(), "u2", "u1", "Mallory", t0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err := s.Profiles().UpdateDisplayName(context.Background(), "u1", "u1", "Ada L.", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", p.DisplayName)
	assert.Equal(t, t0, p.CreatedAt)
}

func TestBookWrites_ScopedToOwner(t *testing.T) {
	s := New()
	ctx := context.Background()
	register(t, s, "u1", "a@x.com", "Ada")
	register(t, s, "u2", "b@x.com", "Bob")

	err := s.Books().Create(ctx, "u2", &book.Book{ID: "b1", OwnerID: "u1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = s.Books().Create(ctx, "ghost", &book.Book{ID: "b1", OwnerID: "ghost"})
	assert.ErrorIs(t, err, apperror.ErrConstraintViolation)

	addBook(t, s, "b1", "u1", t0)

	err = s.Books().Update(ctx, "u2", &book.Book{ID: "b1", Title: "x", OwnerID: "u2"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, s.Books().Delete(ctx, "u2", "b1"), apperror.ErrNotFound)

	err = s.Books().Update(ctx, "u1", &book.Book{ID: "b1", Title: "New", OwnerID: "u2", CreatedAt: t0.Add(time.Hour)})
	require.NoError(t, err)
	got, err := s.Books().GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "u1", got.OwnerID, "owner is immutable")
	assert.Equal(t, t0, got.CreatedAt, "created_at is immutable")
}

func TestReviewCreate_Constraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	register(t, s, "u1", "a@x.com", "Ada")
	register(t, s, "u2", "b@x.com", "Bob")
	addBook(t, s, "b1", "u1", t0)

	newReview := func(id, author string, rating int) *review.Review {
		return &review.Review{ID: id, BookID: "b1", AuthorID: author, Rating: rating, CreatedAt: t0, UpdatedAt: t0}
	}

	assert.ErrorIs(t, s.Reviews().Create(ctx, "u1", newReview("r0", "u2", 4)), apperror.ErrUnauthorized)
	assert.ErrorIs(t, s.Reviews().Create(ctx, "u2", newReview("r0", "u2", 0)), apperror.ErrConstraintViolation)
	assert.ErrorIs(t, s.Reviews().Create(ctx, "u2", newReview("r0", "u2", 6)), apperror.ErrConstraintViolation)

	rv := newReview("r1", "u2", 4)
	require.NoError(t, s.Reviews().Create(ctx, "u2", rv))
	assert.Equal(t, "Bob", rv.AuthorName)

	assert.ErrorIs(t, s.Reviews().Create(ctx, "u2", newReview("r2", "u2", 5)), apperror.ErrConstraintViolation)
	require.NoError(t, s.Reviews().Create(ctx, "u1", newReview("r3", "u1", 5)))

	missing := &review.Review{ID: "r4", BookID: "nope", AuthorID: "u1", Rating: 3}
	assert.ErrorIs(t, s.Reviews().Create(ctx, "u1", missing), apperror.ErrNotFound)
}

func TestReviewCreate_ConcurrentDuplicatesOneWins(t *testing.T) {
	s := New()
	ctx := context.Background()
	register(t, s, "u1", "a@x.com", "Ada")
	addBook(t, s, "b1", "u1", t0)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rv := &review.Review{ID: string(rune('a' + i)), BookID: "b1", AuthorID: "u1", Rating: 3}
			errs[i] = s.Reviews().Create(ctx, "u1", rv)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrConstraintViolation)
	}
	assert.Equal(t, 1, ok)
}

func TestBookDelete_CascadesReviews(t *testing.T) {
	s := New()
	ctx := context.Background()
	register(t, s, "u1", "a@x.com", "Ada")
	addBook(t, s, "b1", "u1", t0)
	addBook(t, s, "b2", "u1", t0)
	require.NoError(t, s.Reviews().Create(ctx, "u1", &review.Review{ID: "r1", BookID: "b1", AuthorID: "u1", Rating: 5}))
	require.NoError(t, s.Reviews().Create(ctx, "u1", &review.Review{ID: "r2", BookID: "b2", AuthorID: "u1", Rating: 2}))

	require.NoError(t, s.Books().Delete(ctx, "u1", "b1"))

	_, err := s.Reviews().GetByID(ctx, "r1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	left, err := s.Reviews().ListByAuthor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "r2", left[0].ID)
}

func TestCatalogList_SortAndTiebreak(t *testing.T) {
	s := New()
	ctx := context.Background()
	register(t, s, "u1", "a@x.com", "Ada")
	addBook(t, s, "c", "u1", t0)
	addBook(t, s, "a", "u1", t0)
	addBook(t, s, "b", "u1", t0.Add(time.Minute))

	ids := func(sortKey catalog.Sort) []string {
		items, total, err := s.Catalog().List(ctx, catalog.Query{Sort: sortKey, Page: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		var out []string
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}

	assert.Equal(t, []string{"b", "a", "c"}, ids(catalog.SortNewest))
	assert.Equal(t, []string{"a", "c", "b"}, ids(catalog.SortOldest))
	assert.Equal(t, []string{"a", "b", "c"}, ids(catalog.SortYear))
}

func TestCatalogGenres_SkipsBlank(t *testing.T) {
	s := New()
	ctx := context.Background()
	register(t, s, "u1", "a@x.com", "Ada")
	for i, g := range []string{"Sci-Fi", "", "Fantasy", "Sci-Fi", "  "} {
		b := &book.Book{ID: string(rune('a' + i)), Title: "t", Author: "a", Genre: g, OwnerID: "u1"}
		require.NoError(t, s.Books().Create(ctx, "u1", b))
	}

	genres, err := s.Catalog().Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Sci-Fi"}, genres)
}

func TestSessions_Expiry(t *testing.T) {
	now := t0
	s := New().WithClock(func() time.Time { return now })
	ctx := context.Background()

	sess := &session.Session{UserID: "u1", RefreshTokenHash: "h1", ExpiresAt: t0.Add(time.Hour)}
	require.NoError(t, s.Sessions().Create(ctx, sess))
	assert.NotEmpty(t, sess.ID)

	got, err := s.Sessions().GetByTokenHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	assert.ErrorIs(t, s.Sessions().Delete(ctx, "u2", sess.ID), apperror.ErrNotFound)

	now = t0.Add(2 * time.Hour)
	_, err = s.Sessions().GetByTokenHash(ctx, "h1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, s.Sessions().CleanupExpired(ctx))
	list, err := s.Sessions().ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBlacklist_Expiry(t *testing.T) {
	now := t0
	s := New().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Blacklist().AddToken(ctx, "jti", "u1", t0.Add(time.Minute)))
	revoked, err := s.Blacklist().IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = t0.Add(time.Hour)
	revoked, err = s.Blacklist().IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
