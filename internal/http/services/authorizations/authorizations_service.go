// Package authorizations implements the authorization read operations.
package authorizations

import (
	"context"
	"errors"

	"github.com/clientlinkhq/clientlink/internal/store/core"
)

var ErrNotFound = errors.New("authorization not found")

// Service reads persisted authorizations. Token material stays in the
// store; callers get everything else.
type Service interface {
	ListByClient(ctx context.Context, clientID string) ([]core.Authorization, error)
	Get(ctx context.Context, clientID, platform string) (*core.Authorization, error)
}

type service struct {
	repo core.Repository
}

func New(repo core.Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListByClient(ctx context.Context, clientID string) ([]core.Authorization, error) {
	return s.repo.ListAuthorizationsByClient(ctx, clientID)
}

func (s *service) Get(ctx context.Context, clientID, platform string) (*core.Authorization, error) {
	a, err := s.repo.GetAuthorization(ctx, clientID, platform)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}
