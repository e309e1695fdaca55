package identity

import "context"

// RepositoryPort defines data access methods for actor resolution.
type RepositoryPort interface {
	LoadActor(ctx context.Context, userID int64) (Actor, error)
}

// Service resolves the actor projection for authenticated requests.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Resolve loads the actor for a user ID. Callers must treat any error as
// "unauthenticated" and deny access to role-gated views.
func (s *Service) Resolve(ctx context.Context, userID int64) (Actor, error) {
	return s.repo.LoadActor(ctx, userID)
}
