// Package review holds star-rated reviews: one per book per author.
package review

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"bookreview/internal/apperror"
)

const MaxBodyLen = 5000

type Review struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input is the submitted form of a review. AuthorID defaults to the acting
// user when empty.
type Input struct {
	Rating   int    `json:"rating"`
	Body     string `json:"body"`
	AuthorID string `json:"author_id,omitempty"`
}

func normalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) > MaxBodyLen {
		return "", apperror.Validationf("body must be at most %d characters", MaxBodyLen)
	}
	return body, nil
}

// Average is the arithmetic mean of ratings, 0 when there are none.
func Average(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// RoundOne rounds to one decimal place, halves away from zero.
func RoundOne(v float64) float64 {
	return math.Round(v*10) / 10
}

// Stars is the whole number of stars to render for an average.
func Stars(avg float64) int {
	return int(math.Round(avg))
}

// Ratings extracts the ratings of reviews.
func Ratings(reviews []Review) []int {
	out := make([]int, len(reviews))
	for i, r := range reviews {
		out[i] = r.Rating
	}
	return out
}
