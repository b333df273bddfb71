package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clientlinkhq/clientlink/internal/catalog"
	"github.com/clientlinkhq/clientlink/internal/config"
	linkssvc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/oauth/state"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
)

var (
	ErrPlatformNotOnLink = errors.New("platform not requested by this link")
	ErrNoOptionsSelected = errors.New("no access-request options selected")
)

// StartService builds the provider authorization URL for a link.
type StartService interface {
	// Start validates the link, encodes the selection into the state
	// parameter and returns the authorization URL.
	Start(ctx context.Context, platform, linkToken string, options []string) (string, error)

	// StartAdmin builds an authorization URL for the admin's own
	// account, carrying a signed state token instead of a link.
	StartAdmin(ctx context.Context, platform, adminID string) (string, error)
}

// StartDeps contains the start service dependencies.
type StartDeps struct {
	Registry *providers.Registry
	Links    linkssvc.Service
	Catalog  *catalog.Catalog
	Signer   state.Signer
	Config   *config.Config
}

type startService struct {
	registry *providers.Registry
	links    linkssvc.Service
	cat      *catalog.Catalog
	signer   state.Signer
	cfg      *config.Config
}

func NewStartService(d StartDeps) StartService {
	return &startService{
		registry: d.Registry,
		links:    d.Links,
		cat:      d.Catalog,
		signer:   d.Signer,
		cfg:      d.Config,
	}
}

func (s *startService) Start(ctx context.Context, platform, linkToken string, options []string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("StartService.Start"),
		logger.Platform(platform),
		logger.LinkToken(linkToken),
	)

	l, err := s.links.ResolveActive(ctx, linkToken)
	if err != nil {
		return "", err
	}
	if !containsFold(l.Platforms, platform) {
		return "", ErrPlatformNotOnLink
	}

	scopes := s.cat.ScopesForSelection(platform, options)
	if len(scopes) == 0 {
		return "", ErrNoOptionsSelected
	}

	p, err := s.registry.Get(platform)
	if err != nil {
		return "", ErrUnknownPlatform
	}

	codec := state.NewCodec(platform, s.cat)
	st := state.Join(linkToken, codec.EncodeSelection(options))

	u, err := p.AuthorizeURL(providers.AuthorizeRequest{
		RedirectURI: s.redirectURI(platform),
		Scopes:      scopes,
		State:       st,
	})
	if err != nil {
		return "", err
	}

	log.Info("authorization url built", logger.Count(len(scopes)))
	return u, nil
}

func (s *startService) StartAdmin(ctx context.Context, platform, adminID string) (string, error) {
	if s.signer == nil {
		return "", fmt.Errorf("admin flow is not configured")
	}

	p, err := s.registry.Get(platform)
	if err != nil {
		return "", ErrUnknownPlatform
	}

	scopes := s.cat.EnabledScopes(platform)
	if len(scopes) == 0 {
		return "", ErrNoOptionsSelected
	}

	st, err := s.signer.SignAdminState(state.AdminClaims{
		Platform: platform,
		AdminID:  adminID,
		Nonce:    uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	return p.AuthorizeURL(providers.AuthorizeRequest{
		RedirectURI: s.redirectURI(platform),
		Scopes:      scopes,
		State:       st,
	})
}

func (s *startService) redirectURI(platform string) string {
	base := strings.TrimRight(s.cfg.App.BaseURL, "/")
	path := ""
	if p := s.cfg.ProviderFor(platform); p != nil {
		path = p.RedirectPath
	}
	if path == "" {
		path = "/v1/oauth/" + platform + "/callback"
	}
	return base + path
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
