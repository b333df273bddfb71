package core

import (
	"context"
	"time"
)

// Repository is the storage contract the services program against.
// Implementations: pg (pgxpool) and memory.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Onboarding links
	CreateLink(ctx context.Context, l *OnboardingLink) error
	GetLinkByToken(ctx context.Context, token string) (*OnboardingLink, error)
	ListLinks(ctx context.Context, limit, offset int) ([]OnboardingLink, error)
	UpdateLinkStatus(ctx context.Context, token string, status LinkStatus) error
	// ClaimLink records which client is completing the link without
	// touching its status. Errors when the link is missing or already
	// claimed by a different client.
	ClaimLink(ctx context.Context, token, clientID string, at time.Time) error
	MarkLinkUsed(ctx context.Context, token, clientID string, usedAt time.Time) error

	// Clients
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id string) (*Client, error)
	GetClientByEmail(ctx context.Context, email string) (*Client, error)

	// Authorizations. Upsert keyed (client_id, platform); last write wins.
	UpsertAuthorization(ctx context.Context, a *Authorization) error
	GetAuthorization(ctx context.Context, clientID, platform string) (*Authorization, error)
	ListAuthorizationsByClient(ctx context.Context, clientID string) ([]Authorization, error)
}
