package catalog

import (
	"context"

	"bookreview/internal/review"
)

type Service struct {
	repo    Repository
	reviews ReviewLister
}

func NewService(repo Repository, reviews ReviewLister) *Service {
	return &Service{repo: repo, reviews: reviews}
}

// List returns one page of books. A page past the end is empty but still
// reports the total.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	q, err := q.Normalize()
	if err != nil {
		return Page{}, err
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []BookSummary{}
	}

	return Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   PageSize,
		TotalPages: TotalPages(total),
	}, nil
}

// Detail returns a book with all of its reviews, newest first. The rating
// figures are derived from the reviews returned.
func (s *Service) Detail(ctx context.Context, id string) (BookDetail, error) {
	summary, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}

	reviews, err := s.reviews.ListByBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}

	summary.ReviewCount = len(reviews)
	summary.AverageRating = review.RoundOne(review.Average(review.Ratings(reviews)))
	return BookDetail{BookSummary: summary, Reviews: reviews}, nil
}

// Genres lists the distinct non-empty genres, sorted.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.repo.Genres(ctx)
	if err != nil {
		return nil, err
	}
	if genres == nil {
		genres = []string{}
	}
	return genres, nil
}
