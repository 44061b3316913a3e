package review

import (
	"context"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/policy"

	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	policy *policy.Engine
	now    func() time.Time
}

func NewService(repo Repository, engine *policy.Engine) *Service {
	return &Service{repo: repo, policy: engine, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Get(ctx context.Context, id string) (Review, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByBook returns the reviews of a book, newest first.
func (s *Service) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	return s.repo.ListByBook(ctx, bookID)
}

// ListByAuthor returns the reviews written by a profile, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]Review, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// Create posts actor's review of a book.
func (s *Service) Create(ctx context.Context, actor policy.Actor, bookID string, in Input) (Review, error) {
	if in.AuthorID == "" {
		in.AuthorID = actor.ID
	}
	req := policy.Request{
		Resource:         policy.ResourceReview,
		Operation:        policy.OpCreate,
		SubmittedOwnerID: in.AuthorID,
		Rating:           in.Rating,
	}

	if actor.Authenticated() {
		ok, err := s.repo.BookExists(ctx, bookID)
		if err != nil {
			return Review{}, err
		}
		if !ok {
			return Review{}, apperror.NotFoundf("book %s", bookID)
		}
		if req.ReviewExists, err = s.repo.Exists(ctx, bookID, actor.ID); err != nil {
			return Review{}, err
		}
	}

	if err := s.policy.Authorize(actor, req); err != nil {
		return Review{}, err
	}

	body, err := normalizeBody(in.Body)
	if err != nil {
		return Review{}, err
	}

	ts := policy.StampCreate(s.now())
	rv := Review{
		ID:        uuid.NewString(),
		BookID:    bookID,
		AuthorID:  in.AuthorID,
		Rating:    in.Rating,
		Body:      body,
		CreatedAt: ts.CreatedAt,
		UpdatedAt: ts.UpdatedAt,
	}
	if err := s.repo.Create(ctx, actor.ID, &rv); err != nil {
		return Review{}, err
	}
	return rv, nil
}

// Update changes the rating and body of actor's own review.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id string, in Input) (Review, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Review{}, err
	}

	err = s.policy.Authorize(actor, policy.Request{
		Resource:         policy.ResourceReview,
		Operation:        policy.OpUpdate,
		OwnerID:          current.AuthorID,
		SubmittedOwnerID: in.AuthorID,
		Rating:           in.Rating,
	})
	if err != nil {
		return Review{}, err
	}

	body, err := normalizeBody(in.Body)
	if err != nil {
		return Review{}, err
	}

	ts := policy.StampUpdate(policy.Timestamps{CreatedAt: current.CreatedAt, UpdatedAt: current.UpdatedAt}, s.now())
	updated := current
	updated.Rating = in.Rating
	updated.Body = body
	updated.UpdatedAt = ts.UpdatedAt

	if err := s.repo.Update(ctx, actor.ID, &updated); err != nil {
		return Review{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor policy.Actor, id string) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.policy.Authorize(actor, policy.Request{
		Resource:  policy.ResourceReview,
		Operation: policy.OpDelete,
		OwnerID:   current.AuthorID,
	})
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, actor.ID, id)
}
