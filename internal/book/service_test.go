package book

import (
	"context"
	"strings"
	"testing"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/policy"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = policy.Actor{ID: "owner-1"}
	stranger = policy.Actor{ID: "stranger-2"}
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *MockRepository) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, policy.NewEngine()).WithClock(func() time.Time { return fixedNow })
	return svc, repo
}

func storedBook() Book {
	created := fixedNow.Add(-48 * time.Hour)
	return Book{
		ID:            "book-1",
		Title:         "Dune",
		Author:        "Frank Herbert",
		Genre:         "Sci-Fi",
		PublishedYear: 1965,
		OwnerID:       owner.ID,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestService_Create(t *testing.T) {
	t.Run("stamps owner and timestamps", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(gomock.Any(), owner.ID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, b *Book) error {
				assert.Equal(t, owner.ID, b.OwnerID)
				assert.NotEmpty(t, b.ID)
				return nil
			})

		b, err := svc.Create(context.Background(), owner, Input{Title: "  Dune ", Author: "Frank Herbert", PublishedYear: 1965})
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, fixedNow, b.CreatedAt)
		assert.Equal(t, fixedNow, b.UpdatedAt)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Create(context.Background(), policy.Anonymous(), Input{Title: "Dune", Author: "Herbert"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("foreign owner is unauthorized", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Create(context.Background(), owner, Input{Title: "Dune", Author: "Herbert", OwnerID: stranger.ID})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("validation", func(t *testing.T) {
		cases := map[string]Input{
			"missing title":    {Author: "Herbert"},
			"missing author":   {Title: "Dune"},
			"year too far":     {Title: "Dune", Author: "Herbert", PublishedYear: fixedNow.Year() + 2},
			"negative year":    {Title: "Dune", Author: "Herbert", PublishedYear: -1},
			"genre too long":   {Title: "Dune", Author: "Herbert", Genre: strings.Repeat("g", MaxGenreLen+1)},
			"whitespace title": {Title: "   ", Author: "Herbert"},
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				svc, _ := newTestService(t)
				_, err := svc.Create(context.Background(), owner, in)
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})
		}
	})

	t.Run("next year is accepted", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(gomock.Any(), owner.ID, gomock.Any()).Return(nil)
		_, err := svc.Create(context.Background(), owner, Input{Title: "Soon", Author: "A", PublishedYear: fixedNow.Year() + 1})
		assert.NoError(t, err)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("owner updates and bumps updated_at only", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedBook()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)
		repo.EXPECT().Update(gomock.Any(), owner.ID, gomock.Any()).Return(nil)

		b, err := svc.Update(context.Background(), owner, current.ID, Input{Title: "Dune Messiah", Author: "Frank Herbert", PublishedYear: 1969})
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", b.Title)
		assert.Equal(t, current.CreatedAt, b.CreatedAt)
		assert.Equal(t, fixedNow, b.UpdatedAt)
		assert.Equal(t, owner.ID, b.OwnerID)
	})

	t.Run("non-owner is unauthorized", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedBook()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := svc.Update(context.Background(), stranger, current.ID, Input{Title: "X", Author: "Y"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("ownership cannot move", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedBook()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		_, err := svc.Update(context.Background(), owner, current.ID, Input{Title: "X", Author: "Y", OwnerID: stranger.ID})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("missing book is not found", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "nope").Return(Book{}, apperror.NotFoundf("book nope"))

		_, err := svc.Update(context.Background(), owner, "nope", Input{Title: "X", Author: "Y"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedBook()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)
		repo.EXPECT().Delete(gomock.Any(), owner.ID, current.ID).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), owner, current.ID))
	})

	t.Run("non-owner is unauthorized", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedBook()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		err := svc.Delete(context.Background(), stranger, current.ID)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		svc, repo := newTestService(t)
		current := storedBook()
		repo.EXPECT().GetByID(gomock.Any(), current.ID).Return(current, nil)

		err := svc.Delete(context.Background(), policy.Anonymous(), current.ID)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
