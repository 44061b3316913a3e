package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/profile"
	"bookreview/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var errBadCredentials = apperror.Unauthorizedf("invalid email or password")

type Service struct {
	repo      Repository
	sessions  *session.Service
	secret    string
	accessTTL time.Duration
	now       func() time.Time
}

func NewService(repo Repository, sessions *session.Service, secret string, accessTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		secret:    secret,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// Register creates an identity together with its profile. Without a display
// name the profile is called profile.DefaultDisplayName.
func (s *Service) Register(ctx context.Context, in RegisterInput) (profile.Profile, error) {
	email := profile.NormalizeEmail(in.Email)
	if email == "" {
		return profile.Profile{}, apperror.Validationf("email is required")
	}
	if err := crypto.ValidatePasswordStrength(in.Password); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %w", apperror.ErrValidation, err)
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = profile.DefaultDisplayName
	}
	name, err := profile.NormalizeDisplayName(name)
	if err != nil {
		return profile.Profile{}, err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return profile.Profile{}, err
	}

	now := s.now().UTC()
	ident := Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	p := profile.Profile{
		ID:          ident.ID,
		DisplayName: name,
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateWithProfile(ctx, &ident, &p); err != nil {
		return profile.Profile{}, err
	}

	log.Info().Str("user_id", ident.ID).Msg("registered")
	return p, nil
}

// Login checks the credentials and opens a refresh session.
func (s *Service) Login(ctx context.Context, in LoginInput) (Tokens, error) {
	ident, err := s.repo.GetByEmail(ctx, profile.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Tokens{}, errBadCredentials
		}
		return Tokens{}, err
	}
	if !crypto.VerifyPassword(ident.PasswordHash, in.Password) {
		return Tokens{}, errBadCredentials
	}

	return s.issue(ctx, session.Session{
		UserID:     ident.ID,
		UserAgent:  in.UserAgent,
		IPAddress:  in.IPAddress,
		RememberMe: in.RememberMe,
	})
}

// Refresh rotates a refresh token: the old session is removed and a new one
// opened with the same attributes.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	hash := crypto.HashRefreshToken(refreshToken)
	sess, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Tokens{}, apperror.Unauthorizedf("invalid or expired refresh token")
		}
		return Tokens{}, err
	}

	if _, err := s.repo.GetByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Tokens{}, apperror.Unauthorizedf("invalid or expired refresh token")
		}
		return Tokens{}, err
	}

	if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil {
		return Tokens{}, err
	}

	next := sess
	next.ID = ""
	return s.issue(ctx, next)
}

func (s *Service) issue(ctx context.Context, sess session.Session) (Tokens, error) {
	access, _, err := crypto.GenerateToken(s.secret, sess.UserID, s.accessTTL)
	if err != nil {
		return Tokens{}, err
	}

	refresh, hash, err := crypto.NewRefreshToken()
	if err != nil {
		return Tokens{}, err
	}
	sess.RefreshTokenHash = hash
	sess.ExpiresAt = s.now().Add(refreshTTL(sess.RememberMe))

	if err := s.sessions.Create(ctx, &sess); err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes the access token jti until it would have expired anyway.
// Expired sessions and revocations are pruned on the way.
func (s *Service) Logout(ctx context.Context, actorID, jti string, expiresAt time.Time) error {
	if actorID == "" || jti == "" {
		return apperror.Unauthorizedf("authentication required")
	}
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.accessTTL)
	}

	if err := s.sessions.AddToBlacklist(ctx, jti, actorID, expiresAt); err != nil {
		return err
	}
	if err := s.sessions.Prune(ctx); err != nil {
		log.Warn().Err(err).Msg("prune sessions")
	}
	return nil
}
