// Package auth registers identities and issues the tokens that prove them.
package auth

import "time"

// Identity is a login credential. Its id is the actor id and the id of the
// profile created with it.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,password_strength"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type LoginInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
	UserAgent  string `json:"-"`
	IPAddress  string `json:"-"`
}

// Tokens is the result of a login or refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Refresh token lifetimes.
const (
	RefreshTTL           = 30 * 24 * time.Hour
	RememberedRefreshTTL = 90 * 24 * time.Hour
)

func refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return RememberedRefreshTTL
	}
	return RefreshTTL
}
