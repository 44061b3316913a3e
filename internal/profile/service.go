package profile

import (
	"context"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/policy"
	"bookreview/internal/review"
)

type Service struct {
	repo    Repository
	books   BookLister
	reviews ReviewLister
	policy  *policy.Engine
	now     func() time.Time
}

func NewService(repo Repository, books BookLister, reviews ReviewLister, engine *policy.Engine) *Service {
	return &Service{
		repo:    repo,
		books:   books,
		reviews: reviews,
		policy:  engine,
		now:     time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies cmd to the profile id on behalf of actor.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id string, cmd UpdateCommand) (Profile, error) {
	fields := cmd.Fields()
	if len(fields) == 0 {
		return Profile{}, apperror.Validationf("no fields to update")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	err = s.policy.Authorize(actor, policy.Request{
		Resource:  policy.ResourceProfile,
		Operation: policy.OpUpdate,
		OwnerID:   current.ID,
		Fields:    fields,
	})
	if err != nil {
		return Profile{}, err
	}

	name, err := NormalizeDisplayName(*cmd.DisplayName)
	if err != nil {
		return Profile{}, err
	}

	ts := policy.StampUpdate(policy.Timestamps{CreatedAt: current.CreatedAt, UpdatedAt: current.UpdatedAt}, s.now())
	return s.repo.UpdateDisplayName(ctx, actor.ID, id, name, ts.UpdatedAt)
}

// Summary gathers a profile with its books, its reviews and their counters.
func (s *Service) Summary(ctx context.Context, id string) (Summary, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	books, err := s.books.ListByOwner(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	reviews, err := s.reviews.ListByAuthor(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Profile: p,
		Stats: Stats{
			BooksCount:         len(books),
			ReviewsCount:       len(reviews),
			AverageRatingGiven: review.RoundOne(review.Average(review.Ratings(reviews))),
		},
		Books:   books,
		Reviews: reviews,
	}, nil
}
