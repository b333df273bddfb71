package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clientlinkhq/clientlink/internal/catalog"
	"github.com/clientlinkhq/clientlink/internal/config"
	"github.com/clientlinkhq/clientlink/internal/email"
	dto "github.com/clientlinkhq/clientlink/internal/http/dto/oauth"
	linkssvc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	"github.com/clientlinkhq/clientlink/internal/metrics"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/oauth/state"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/store/core"
)

// CallbackQuery carries the provider redirect parameters.
type CallbackQuery struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackService drives the provider redirect back to a persisted
// authorization.
type CallbackService interface {
	HandleCallback(ctx context.Context, platform string, q CallbackQuery) dto.CallbackResult
}

// CallbackDeps contains the callback service dependencies.
type CallbackDeps struct {
	Repo     core.Repository
	Registry *providers.Registry
	Exchange ExchangeService
	Links    linkssvc.Service
	Catalog  *catalog.Catalog
	Signer   state.Signer
	Notifier *email.Notifier
	Config   *config.Config
	Now      func() time.Time
}

type callbackService struct {
	repo     core.Repository
	registry *providers.Registry
	exchange ExchangeService
	links    linkssvc.Service
	cat      *catalog.Catalog
	signer   state.Signer
	notifier *email.Notifier
	cfg      *config.Config
	now      func() time.Time
}

func NewCallbackService(d CallbackDeps) CallbackService {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &callbackService{
		repo:     d.Repo,
		registry: d.Registry,
		exchange: d.Exchange,
		links:    d.Links,
		cat:      d.Catalog,
		signer:   d.Signer,
		notifier: d.Notifier,
		cfg:      d.Config,
		now:      d.Now,
	}
}

// HandleCallback never returns an error: every failure becomes an error
// result with a human-readable message, matching the single-recovery
// contract of the onboarding page.
func (s *callbackService) HandleCallback(ctx context.Context, platform string, q CallbackQuery) dto.CallbackResult {
	start := s.now()
	res := s.handle(ctx, platform, q)
	metrics.CallbackDuration.WithLabelValues(platform, res.Status).Observe(s.now().Sub(start).Seconds())
	return res
}

func (s *callbackService) handle(ctx context.Context, platform string, q CallbackQuery) dto.CallbackResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("CallbackService.HandleCallback"),
		logger.Platform(platform),
	)

	// Provider-reported error: surface verbatim, no exchange attempt.
	if q.Error != "" {
		msg := q.Error
		if q.ErrorDescription != "" {
			msg = fmt.Sprintf("%s: %s", q.Error, q.ErrorDescription)
		}
		log.Warn("provider returned error", logger.String("provider_error", q.Error))
		return errorResult(platform, msg)
	}
	if q.Code == "" {
		return errorResult(platform, "authorization code missing from callback")
	}
	if q.State == "" {
		return errorResult(platform, "state missing from callback")
	}
	if p := s.cfg.ProviderFor(platform); p == nil || p.ClientID == "" {
		log.Error("platform not configured")
		return errorResult(platform, "platform is not configured, contact your administrator")
	}

	// Admin flow carries a signed state token instead of a link token.
	if s.signer != nil {
		if claims, err := s.signer.ParseAdminState(q.State); err == nil {
			return s.handleAdmin(ctx, platform, q.Code, claims, log)
		} else if errors.Is(err, state.ErrStateExpired) {
			return errorResult(platform, "authorization session expired, start again")
		}
	}

	linkToken, encodedSelection := state.Split(q.State)
	if linkToken == "" {
		return errorResult(platform, "state missing from callback")
	}

	link, err := s.links.ResolveActive(ctx, linkToken)
	if err != nil {
		switch {
		case errors.Is(err, linkssvc.ErrNotFound):
			return errorResult(platform, "onboarding link not found")
		case errors.Is(err, linkssvc.ErrExpired):
			return errorResult(platform, "onboarding link expired")
		case errors.Is(err, linkssvc.ErrNotActive):
			return errorResult(platform, "onboarding link is no longer active")
		default:
			log.Error("link resolution failed", logger.Err(err))
			return errorResult(platform, "could not verify the onboarding link")
		}
	}

	// Selection decode is fail-soft: a corrupt payload grants nothing
	// instead of failing the whole flow.
	codec := state.NewCodec(platform, s.cat)
	selection := codec.DecodeSelection(ctx, encodedSelection)
	scopes := s.cat.ScopesForSelection(platform, selection)

	tr, profile, result := s.exchangeAndFetch(ctx, platform, q.Code, log)
	if result != nil {
		return *result
	}

	client, err := s.ensureClient(ctx, link, profile)
	if err != nil {
		log.Error("client record failed", logger.Err(err))
		return errorResult(platform, "could not save the authorization")
	}

	if err := s.persist(ctx, client.ID, platform, scopes, selection, tr, profile); err != nil {
		log.Error("authorization upsert failed", logger.Err(err))
		return errorResult(platform, "could not save the authorization")
	}

	s.completeLink(ctx, link, client.ID, platform, log)

	s.notify(client.Name, platform, scopes, log)

	log.Info("authorization completed",
		logger.LinkToken(link.Token),
		logger.ClientID(client.ID),
		logger.Count(len(scopes)),
	)
	return dto.CallbackResult{
		Status:      "success",
		Platform:    platform,
		ClientID:    client.ID,
		RedirectURL: s.cfg.App.SuccessURL,
	}
}

// completeLink binds the link to the client on its first authorization and
// retires it once every platform on the link has one. Failures here only
// log: the grant itself is already persisted and must not fail the user.
func (s *callbackService) completeLink(ctx context.Context, link *core.OnboardingLink, clientID, platform string, log *zap.Logger) {
	if link.UsedBy == nil {
		if err := s.links.Claim(ctx, link.Token, clientID, s.now()); err != nil {
			log.Warn("link claim failed", logger.Err(err))
		}
	}
	for _, p := range link.Platforms {
		if strings.EqualFold(p, platform) {
			continue
		}
		if _, err := s.repo.GetAuthorization(ctx, clientID, strings.ToLower(p)); err != nil {
			return
		}
	}
	if err := s.links.MarkUsed(ctx, link.Token, clientID, s.now()); err != nil {
		log.Warn("mark link used failed", logger.Err(err))
	}
}

func (s *callbackService) handleAdmin(ctx context.Context, platform, code string, claims *state.AdminClaims, log *zap.Logger) dto.CallbackResult {
	log = log.With(logger.Flow("admin"))

	if claims.Platform != "" && claims.Platform != platform {
		return errorResult(platform, "state was issued for a different platform")
	}

	tr, profile, result := s.exchangeAndFetch(ctx, platform, code, log)
	if result != nil {
		return *result
	}

	client, err := s.ensureAdminClient(ctx, claims.AdminID, profile)
	if err != nil {
		log.Error("admin client record failed", logger.Err(err))
		return errorResult(platform, "could not save the authorization")
	}

	scopes := s.cat.EnabledScopes(platform)
	if err := s.persist(ctx, client.ID, platform, scopes, nil, tr, profile); err != nil {
		log.Error("authorization upsert failed", logger.Err(err))
		return errorResult(platform, "could not save the authorization")
	}

	log.Info("admin authorization completed", logger.ClientID(client.ID))
	return dto.CallbackResult{
		Status:      "success",
		Platform:    platform,
		ClientID:    client.ID,
		RedirectURL: s.cfg.App.SuccessURL,
	}
}

// exchangeAndFetch runs the code exchange and the profile fetch. On
// failure it returns a non-nil error result.
func (s *callbackService) exchangeAndFetch(ctx context.Context, platform, code string, log *zap.Logger) (*providers.TokenResponse, *providers.Profile, *dto.CallbackResult) {
	tr, err := s.exchange.Exchange(ctx, platform, code, s.redirectURI(platform))
	if err != nil {
		var exErr *providers.ExchangeError
		if errors.As(err, &exErr) {
			r := errorResult(platform, fmt.Sprintf("token exchange failed (%d): %s", exErr.StatusCode, exErr.Details))
			return nil, nil, &r
		}
		log.Error("exchange failed", logger.Err(err))
		r := errorResult(platform, "token exchange failed")
		return nil, nil, &r
	}

	p, err := s.registry.Get(platform)
	if err != nil {
		r := errorResult(platform, "platform is not configured, contact your administrator")
		return nil, nil, &r
	}
	profile, err := p.Profile(ctx, tr.AccessToken)
	if err != nil {
		log.Error("profile fetch failed", logger.Err(err))
		r := errorResult(platform, "could not fetch account info from the provider")
		return nil, nil, &r
	}
	return tr, profile, nil
}

func (s *callbackService) ensureClient(ctx context.Context, link *core.OnboardingLink, profile *providers.Profile) (*core.Client, error) {
	if link.UsedBy != nil {
		if c, err := s.repo.GetClient(ctx, *link.UsedBy); err == nil {
			return c, nil
		}
	}
	if profile.Email != "" {
		if c, err := s.repo.GetClientByEmail(ctx, profile.Email); err == nil {
			return c, nil
		}
	}

	c := &core.Client{
		ID:    uuid.NewString(),
		Name:  profile.Name,
		Email: profile.Email,
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *callbackService) ensureAdminClient(ctx context.Context, adminID string, profile *providers.Profile) (*core.Client, error) {
	if _, err := uuid.Parse(adminID); err == nil {
		if c, err := s.repo.GetClient(ctx, adminID); err == nil {
			return c, nil
		}
		c := &core.Client{ID: adminID, Name: profile.Name, Email: profile.Email}
		if err := s.repo.CreateClient(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}

	if c, err := s.repo.GetClientByEmail(ctx, adminID); err == nil {
		return c, nil
	}
	c := &core.Client{ID: uuid.NewString(), Name: profile.Name, Email: adminID}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *callbackService) persist(ctx context.Context, clientID, platform string, scopes, selection []string, tr *providers.TokenResponse, profile *providers.Profile) error {
	a := &core.Authorization{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Platform: platform,
		Status:   core.AuthorizationAuthorized,
		Scopes:   scopes,
		TokenData: core.TokenData{
			AccessToken:       tr.AccessToken,
			RefreshToken:      tr.RefreshToken,
			TokenType:         tr.TokenType,
			ExpiresIn:         tr.ExpiresIn,
			Scope:             tr.Scope,
			ProviderUserID:    profile.ID,
			ProviderUserName:  profile.Name,
			ProviderUserEmail: profile.Email,
			SelectedOptions:   selection,
		},
	}
	if err := s.repo.UpsertAuthorization(ctx, a); err != nil {
		return err
	}
	metrics.AuthorizationsUpserted.WithLabelValues(platform).Inc()
	return nil
}

func (s *callbackService) notify(clientName, platform string, scopes []string, log *zap.Logger) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.AuthorizationCompleted(clientName, platform, scopes); err != nil {
			log.Warn("notify failed", logger.Err(err))
		}
	}()
}

func (s *callbackService) redirectURI(platform string) string {
	base := s.cfg.App.BaseURL
	path := ""
	if p := s.cfg.ProviderFor(platform); p != nil {
		path = p.RedirectPath
	}
	if path == "" {
		path = "/v1/oauth/" + platform + "/callback"
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}

func errorResult(platform, msg string) dto.CallbackResult {
	return dto.CallbackResult{Status: "error", Platform: platform, Message: msg}
}
