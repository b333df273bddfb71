// Package links implements the onboarding-link operations.
package links

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/clientlinkhq/clientlink/internal/cache"
	"github.com/clientlinkhq/clientlink/internal/catalog"
	dto "github.com/clientlinkhq/clientlink/internal/http/dto/links"
	"github.com/clientlinkhq/clientlink/internal/idx"
	"github.com/clientlinkhq/clientlink/internal/metrics"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/store/core"
)

var (
	ErrNotFound        = errors.New("link not found")
	ErrExpired         = errors.New("link expired")
	ErrNotActive       = errors.New("link is not active")
	ErrNoPlatforms     = errors.New("at least one platform is required")
	ErrUnknownPlatform = errors.New("unknown platform")
)

const cacheKeyPrefixLink = "link:"

// Service manages onboarding links.
type Service interface {
	Create(ctx context.Context, req dto.CreateLinkRequest) (*core.OnboardingLink, error)
	Get(ctx context.Context, token string) (*core.OnboardingLink, error)
	List(ctx context.Context, limit, offset int) ([]core.OnboardingLink, error)
	Revoke(ctx context.Context, token string) error

	// ResolveActive returns the link only when it is usable right now:
	// status active and not past expiry. Lookups are cached and
	// deduplicated, since every OAuth round trip resolves the token twice.
	ResolveActive(ctx context.Context, token string) (*core.OnboardingLink, error)

	// Claim binds the link to the client completing it. Status stays
	// active so the link's remaining platforms can still be authorized.
	Claim(ctx context.Context, token, clientID string, at time.Time) error

	// MarkUsed retires the link once its platforms are authorized.
	MarkUsed(ctx context.Context, token, clientID string, at time.Time) error
}

// Deps contains the service dependencies.
type Deps struct {
	Repo       core.Repository
	Cache      cache.Client
	DefaultTTL time.Duration
	Now        func() time.Time
}

type service struct {
	repo       core.Repository
	cache      cache.Client
	defaultTTL time.Duration
	now        func() time.Time
	sf         singleflight.Group
}

func New(d Deps) Service {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.DefaultTTL <= 0 {
		d.DefaultTTL = 7 * 24 * time.Hour
	}
	return &service{
		repo:       d.Repo,
		cache:      d.Cache,
		defaultTTL: d.DefaultTTL,
		now:        d.Now,
	}
}

func (s *service) Create(ctx context.Context, req dto.CreateLinkRequest) (*core.OnboardingLink, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("LinksService.Create"))

	if len(req.Platforms) == 0 {
		return nil, ErrNoPlatforms
	}
	for _, p := range req.Platforms {
		if !catalog.KnownPlatform(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
		}
	}

	ttl := s.defaultTTL
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid expires_in %q", req.ExpiresIn)
		}
		ttl = d
	}

	now := s.now()
	exp := now.Add(ttl)
	l := &core.OnboardingLink{
		ID:        uuid.NewString(),
		Token:     idx.New(),
		CreatedBy: req.CreatedBy,
		Platforms: append([]string(nil), req.Platforms...),
		Note:      req.Note,
		Status:    core.LinkStatusActive,
		ExpiresAt: &exp,
		CreatedAt: now,
	}
	if err := s.repo.CreateLink(ctx, l); err != nil {
		return nil, err
	}

	metrics.LinksCreated.Inc()
	log.Info("link created",
		logger.LinkToken(l.Token),
		logger.Any("platforms", l.Platforms),
	)
	return l, nil
}

func (s *service) Get(ctx context.Context, token string) (*core.OnboardingLink, error) {
	l, err := s.repo.GetLinkByToken(ctx, token)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *service) List(ctx context.Context, limit, offset int) ([]core.OnboardingLink, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListLinks(ctx, limit, offset)
}

func (s *service) Revoke(ctx context.Context, token string) error {
	err := s.repo.UpdateLinkStatus(ctx, token, core.LinkStatusExpired)
	if errors.Is(err, core.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.invalidate(ctx, token)
	}
	return err
}

func (s *service) ResolveActive(ctx context.Context, token string) (*core.OnboardingLink, error) {
	l, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if l.Expired(s.now()) {
		return nil, ErrExpired
	}
	if l.Status != core.LinkStatusActive {
		return nil, ErrNotActive
	}
	return l, nil
}

func (s *service) resolve(ctx context.Context, token string) (*core.OnboardingLink, error) {
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, cacheKeyPrefixLink+token); err == nil {
			var l core.OnboardingLink
			if json.Unmarshal(b, &l) == nil {
				return &l, nil
			}
		}
	}

	v, err, _ := s.sf.Do(token, func() (any, error) {
		l, err := s.repo.GetLinkByToken(ctx, token)
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if b, err := json.Marshal(l); err == nil {
				_ = s.cache.Set(ctx, cacheKeyPrefixLink+token, b, time.Minute)
			}
		}
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.OnboardingLink), nil
}

func (s *service) invalidate(ctx context.Context, token string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cacheKeyPrefixLink+token)
	}
}

func (s *service) Claim(ctx context.Context, token, clientID string, at time.Time) error {
	err := s.repo.ClaimLink(ctx, token, clientID, at)
	if errors.Is(err, core.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.invalidate(ctx, token)
	}
	return err
}

func (s *service) MarkUsed(ctx context.Context, token, clientID string, at time.Time) error {
	err := s.repo.MarkLinkUsed(ctx, token, clientID, at)
	if errors.Is(err, core.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.invalidate(ctx, token)
	}
	return err
}
