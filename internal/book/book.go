package book

import (
	"strings"
	"time"
	"unicode/utf8"

	"bookreview/internal/apperror"
)

// Field limits, counted in characters after trimming.
const (
	MaxTitleLen       = 200
	MaxAuthorLen      = 200
	MaxGenreLen       = 50
	MaxDescriptionLen = 5000
)

// Book is a catalog entry owned by the profile that created it.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Genre         string    `json:"genre"`
	PublishedYear int       `json:"published_year"`
	OwnerID       string    `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Input is the submitted form of a book. OwnerID may be left empty, in which
// case it is taken to be the acting user.
type Input struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	Genre         string `json:"genre"`
	PublishedYear int    `json:"published_year"`
	OwnerID       string `json:"owner_id,omitempty"`
}

// Normalize trims the text fields and checks them against the limits. The
// published year may be at most one year past now.
func (in Input) Normalize(now time.Time) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	in.Genre = strings.TrimSpace(in.Genre)

	if in.Title == "" {
		return in, apperror.Validationf("title is required")
	}
	if in.Author == "" {
		return in, apperror.Validationf("author is required")
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLen {
		return in, apperror.Validationf("title must be at most %d characters", MaxTitleLen)
	}
	if utf8.RuneCountInString(in.Author) > MaxAuthorLen {
		return in, apperror.Validationf("author must be at most %d characters", MaxAuthorLen)
	}
	if utf8.RuneCountInString(in.Genre) > MaxGenreLen {
		return in, apperror.Validationf("genre must be at most %d characters", MaxGenreLen)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLen {
		return in, apperror.Validationf("description must be at most %d characters", MaxDescriptionLen)
	}
	if maxYear := now.Year() + 1; in.PublishedYear < 0 || in.PublishedYear > maxYear {
		return in, apperror.Validationf("published_year must be between 0 and %d", maxYear)
	}
	return in, nil
}
