package book

import (
	"context"
	"time"

	"bookreview/internal/policy"

	"github.com/google/uuid"
)

// Service applies the access rules to book mutations before they reach the
// repository.
type Service struct {
	repo   Repository
	policy *policy.Engine
	now    func() time.Time
}

// NewService creates a new book service.
func NewService(repo Repository, engine *policy.Engine) *Service {
	return &Service{repo: repo, policy: engine, now: time.Now}
}

// WithClock replaces the time source. Intended for tests and seeding.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns a book by id. Reads are open to every actor.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create stores a new book owned by actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, in Input) (Book, error) {
	if in.OwnerID == "" {
		in.OwnerID = actor.ID
	}
	err := s.policy.Authorize(actor, policy.Request{
		Resource:         policy.ResourceBook,
		Operation:        policy.OpCreate,
		SubmittedOwnerID: in.OwnerID,
	})
	if err != nil {
		return Book{}, err
	}

	now := s.now()
	in, err = in.Normalize(now)
	if err != nil {
		return Book{}, err
	}

	ts := policy.StampCreate(now)
	b := Book{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Author:        in.Author,
		Description:   in.Description,
		Genre:         in.Genre,
		PublishedYear: in.PublishedYear,
		OwnerID:       in.OwnerID,
		CreatedAt:     ts.CreatedAt,
		UpdatedAt:     ts.UpdatedAt,
	}
	if err := s.repo.Create(ctx, actor.ID, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update replaces the editable fields of a book owned by actor.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id string, in Input) (Book, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}

	err = s.policy.Authorize(actor, policy.Request{
		Resource:         policy.ResourceBook,
		Operation:        policy.OpUpdate,
		OwnerID:          current.OwnerID,
		SubmittedOwnerID: in.OwnerID,
	})
	if err != nil {
		return Book{}, err
	}

	now := s.now()
	in, err = in.Normalize(now)
	if err != nil {
		return Book{}, err
	}

	ts := policy.StampUpdate(policy.Timestamps{CreatedAt: current.CreatedAt, UpdatedAt: current.UpdatedAt}, now)
	updated := current
	updated.Title = in.Title
	updated.Author = in.Author
	updated.Description = in.Description
	updated.Genre = in.Genre
	updated.PublishedYear = in.PublishedYear
	updated.UpdatedAt = ts.UpdatedAt

	if err := s.repo.Update(ctx, actor.ID, &updated); err != nil {
		return Book{}, err
	}
	return updated, nil
}

// Delete removes a book owned by actor together with its reviews.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id string) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.policy.Authorize(actor, policy.Request{
		Resource:  policy.ResourceBook,
		Operation: policy.OpDelete,
		OwnerID:   current.OwnerID,
	})
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, actor.ID, id)
}
