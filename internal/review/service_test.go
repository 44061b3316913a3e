package review

import (
	"context"
	"testing"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/policy"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	author   = policy.Actor{ID: "author-1"}
	other    = policy.Actor{ID: "other-2"}
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *MockRepository) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	return NewService(repo, policy.NewEngine()).WithClock(func() time.Time { return fixedNow }), repo
}

func storedReview() Review {
	created := fixedNow.Add(-time.Hour)
	return Review{ID: "rv-1", BookID: "book-1", AuthorID: author.ID, Rating: 3, Body: "ok", CreatedAt: created, UpdatedAt: created}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("first review succeeds", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().BookExists(gomock.Any(), "book-1").Return(true, nil)
		repo.EXPECT().Exists(gomock.Any(), "book-1", author.ID).Return(false, nil)
		repo.EXPECT().Create(gomock.Any(), author.ID, gomock.Any()).Return(nil)

		rv, err := svc.Create(ctx, author, "book-1", Input{Rating: 5, Body: " loved it "})
		require.NoError(t, err)
		assert.Equal(t, author.ID, rv.AuthorID)
		assert.Equal(t, "loved it", rv.Body)
		assert.Equal(t, fixedNow, rv.CreatedAt)
	})

	t.Run("second review is a constraint violation", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().BookExists(gomock.Any(), "book-1").Return(true, nil)
		repo.EXPECT().Exists(gomock.Any(), "book-1", author.ID).Return(true, nil)

		_, err := svc.Create(ctx, author, "book-1", Input{Rating: 4})
		assert.ErrorIs(t, err, apperror.ErrConstraintViolation)
	})

	t.Run("lost race surfaces the store constraint violation", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().BookExists(gomock.Any(), "book-1").Return(true, nil)
		repo.EXPECT().Exists(gomock.Any(), "book-1", author.ID).Return(false, nil)
		repo.EXPECT().Create(gomock.Any(), author.ID, gomock.Any()).Return(apperror.ConstraintViolationf("duplicate"))

		_, err := svc.Create(ctx, author, "book-1", Input{Rating: 4})
		assert.ErrorIs(t, err, apperror.ErrConstraintViolation)
	})

	t.Run("book deleted before insert is not found", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().BookExists(gomock.Any(), "book-1").Return(true, nil)
		repo.EXPECT().Exists(gomock.Any(), "book-1", author.ID).Return(false, nil)
		repo.EXPECT().Create(gomock.Any(), author.ID, gomock.Any()).Return(apperror.NotFoundf("book book-1"))

		_, err := svc.Create(ctx, author, "book-1", Input{Rating: 4})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	for _, rating := range []int{0, 6, -1} {
		t.Run("rating out of range", func(t *testing.T) {
			svc, repo := newTestService(t)
			repo.EXPECT().BookExists(gomock.Any(), "book-1").Return(true, nil)
			repo.EXPECT().Exists(gomock.Any(), "book-1", author.ID).Return(false, nil)

			_, err := svc.Create(ctx, author, "book-1", Input{Rating: rating})
			assert.ErrorIs(t, err, apperror.ErrConstraintViolation, "rating %d", rating)
		})
	}

	t.Run("missing book is not found", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().BookExists(gomock.Any(), "ghost").Return(false, nil)

		_, err := svc.Create(ctx, author, "ghost", Input{Rating: 4})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("anonymous is unauthorized without touching the store", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Create(ctx, policy.Anonymous(), "book-1", Input{Rating: 4})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("foreign author is unauthorized", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().BookExists(gomock.Any(), "book-1").Return(true, nil)
		repo.EXPECT().Exists(gomock.Any(), "book-1", author.ID).Return(false, nil)

		_, err := svc.Create(ctx, author, "book-1", Input{Rating: 4, AuthorID: other.ID})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("author updates", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedReview()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)
		repo.EXPECT().Update(gomock.Any(), author.ID, gomock.Any()).Return(nil)

		rv, err := svc.Update(ctx, author, current.ID, Input{Rating: 5, Body: "better on reread"})
		require.NoError(t, err)
		assert.Equal(t, 5, rv.Rating)
		assert.Equal(t, current.CreatedAt, rv.CreatedAt)
		assert.Equal(t, fixedNow, rv.UpdatedAt)
	})

	t.Run("other actor is unauthorized", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedReview()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := svc.Update(ctx, other, current.ID, Input{Rating: 5})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("rating bound holds on update", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedReview()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := svc.Update(ctx, author, current.ID, Input{Rating: 6})
		assert.ErrorIs(t, err, apperror.ErrConstraintViolation)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedReview()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)
		repo.EXPECT().Delete(gomock.Any(), author.ID, current.ID).Return(nil)

		assert.NoError(t, svc.Delete(ctx, author, current.ID))
	})

	t.Run("other actor is unauthorized", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedReview()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		assert.ErrorIs(t, svc.Delete(ctx, other, current.ID), apperror.ErrUnauthorized)
	})
}
