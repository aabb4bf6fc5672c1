package services

import (
	"context"

	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
)

// AuthorizationService resolves an actor's grants and decides actions
type AuthorizationService struct {
	userRepo repositories.UserRepository
	failOpen bool
}

// NewAuthorizationService creates a new authorization service.
// failOpen decides unnamed actions; it should stay false outside development.
func NewAuthorizationService(userRepo repositories.UserRepository, failOpen bool) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo, failOpen: failOpen}
}

// Resolve loads roles, role permissions and direct permissions of a user
func (s *AuthorizationService) Resolve(ctx context.Context, userID uint) (domain.Grants, error) {
	user, err := s.userRepo.GetWithGrants(ctx, userID)
	if err != nil {
		return domain.Grants{}, lookup(err, domain.NotFound("user"))
	}
	return user.Grants(), nil
}

// Authorize decides whether userID may perform action
func (s *AuthorizationService) Authorize(ctx context.Context, userID uint, action string) (domain.Decision, error) {
	grants, err := s.Resolve(ctx, userID)
	if err != nil {
		return domain.Decision{}, err
	}
	return domain.Authorize(grants, action, s.failOpen), nil
}

// IsElevated reports whether userID sees every case
func (s *AuthorizationService) IsElevated(ctx context.Context, userID uint) (bool, error) {
	grants, err := s.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return grants.IsElevated(), nil
}

// ResponsibleScope returns nil for elevated actors and the actor's own id
// otherwise, for use as a responsible_id filter.
func (s *AuthorizationService) ResponsibleScope(ctx context.Context, userID uint) (*uint, error) {
	elevated, err := s.IsElevated(ctx, userID)
	if err != nil {
		return nil, err
	}
	if elevated {
		return nil, nil
	}
	id := userID
	return &id, nil
}
