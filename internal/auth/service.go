package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-edu/meridian-edu/internal/shared"
)

// Service handles authentication business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies email and password against stored hashes.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session row.
func (s *Service) RegisterSession(ctx context.Context, sessionID string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, sessionID, userID, expiresAt, ip, ua)
}

// RemoveSession deletes the session row.
func (s *Service) RemoveSession(ctx context.Context, sessionID string) error {
	return s.repo.DeleteSession(ctx, sessionID)
}
