// Package profile holds the per-user profile created at registration.
package profile

import (
	"strings"
	"time"
	"unicode/utf8"

	"bookreview/internal/apperror"
	"bookreview/internal/book"
	"bookreview/internal/policy"
	"bookreview/internal/review"
)

// DefaultDisplayName is used when registration supplies no name.
const DefaultDisplayName = "Anonymous"

const MaxDisplayNameLen = 100

type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Stats struct {
	BooksCount         int     `json:"books_count"`
	ReviewsCount       int     `json:"reviews_count"`
	AverageRatingGiven float64 `json:"average_rating_given"`
}

// Summary is the profile page: the profile, its counters, and what it owns.
type Summary struct {
	Profile Profile         `json:"profile"`
	Stats   Stats           `json:"stats"`
	Books   []book.Book     `json:"books"`
	Reviews []review.Review `json:"reviews"`
}

// UpdateCommand is a partial profile update. Only DisplayName may be set by
// the owner; the other fields exist so that an attempt to change them is
// seen and refused.
type UpdateCommand struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	ID          *string `json:"id"`
}

// Fields lists the fields the command touches.
func (c UpdateCommand) Fields() []string {
	var fields []string
	if c.DisplayName != nil {
		fields = append(fields, policy.FieldDisplayName)
	}
	if c.Email != nil {
		fields = append(fields, "email")
	}
	if c.ID != nil {
		fields = append(fields, "id")
	}
	return fields
}

// NormalizeDisplayName trims name and checks its length.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validationf("display_name is required")
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", apperror.Validationf("display_name must be at most %d characters", MaxDisplayNameLen)
	}
	return name, nil
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
