package session

import (
	"context"
	"time"
)

type Service struct {
	repo          Repository
	blacklistRepo BlacklistRepository
}

func NewService(repo Repository, blacklistRepo BlacklistRepository) *Service {
	return &Service{
		repo:          repo,
		blacklistRepo: blacklistRepo,
	}
}

func (s *Service) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Delete revokes one of userID's own sessions.
func (s *Service) Delete(ctx context.Context, userID, sessionID string) error {
	return s.repo.Delete(ctx, userID, sessionID)
}

func (s *Service) Create(ctx context.Context, session *Session) error {
	return s.repo.Create(ctx, session)
}

// GetByTokenHash returns the unexpired session for a refresh token hash and
// marks it used.
func (s *Service) GetByTokenHash(ctx context.Context, hash string) (Session, error) {
	sess, err := s.repo.GetByTokenHash(ctx, hash)
	if err != nil {
		return Session{}, err
	}
	if err := s.repo.UpdateLastUsed(ctx, sess.ID); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Service) DeleteByTokenHash(ctx context.Context, hash string) error {
	return s.repo.DeleteByTokenHash(ctx, hash)
}

func (s *Service) AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	return s.blacklistRepo.AddToken(ctx, jti, userID, expiresAt)
}

// IsBlacklisted lets the service stand in for httpx.TokenChecker.
func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.blacklistRepo.IsBlacklisted(ctx, jti)
}

// Prune drops expired sessions and blacklist entries.
func (s *Service) Prune(ctx context.Context) error {
	if err := s.repo.CleanupExpired(ctx); err != nil {
		return err
	}
	return s.blacklistRepo.CleanupExpired(ctx)
}
