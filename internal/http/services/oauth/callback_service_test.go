package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientlinkhq/clientlink/internal/catalog"
	"github.com/clientlinkhq/clientlink/internal/config"
	linkssvc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/oauth/state"
	"github.com/clientlinkhq/clientlink/internal/store/core"
	"github.com/clientlinkhq/clientlink/internal/store/memory"
)

type fakeProvider struct {
	name string

	exchangeCalls int
	lastCode      string
	lastRedirect  string
	exchangeResp  *providers.TokenResponse
	exchangeErr   error

	profile    *providers.Profile
	profileErr error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthorizeURL(req providers.AuthorizeRequest) (string, error) {
	return "https://example.com/authorize", nil
}

func (f *fakeProvider) Exchange(_ context.Context, code, redirectURI string) (*providers.TokenResponse, error) {
	f.exchangeCalls++
	f.lastCode = code
	f.lastRedirect = redirectURI
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeResp, nil
}

func (f *fakeProvider) Profile(_ context.Context, _ string) (*providers.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

type callbackFixture struct {
	svc      CallbackService
	repo     *memory.Store
	links    linkssvc.Service
	provider *fakeProvider
	google   *fakeProvider
	cfg      *config.Config
}

func newCallbackFixture(t *testing.T, signer state.Signer) *callbackFixture {
	t.Helper()

	fp := &fakeProvider{
		name: "meta",
		exchangeResp: &providers.TokenResponse{
			AccessToken: "tok-123",
			TokenType:   "bearer",
			ExpiresIn:   3600,
			Raw:         json.RawMessage(`{"access_token":"tok-123"}`),
		},
		profile: &providers.Profile{ID: "fb-1", Name: "Acme Corp", Email: "ops@acme.test"},
	}
	fg := &fakeProvider{
		name: "google",
		exchangeResp: &providers.TokenResponse{
			AccessToken: "tok-g",
			TokenType:   "bearer",
			ExpiresIn:   3600,
			Raw:         json.RawMessage(`{"access_token":"tok-g"}`),
		},
		profile: &providers.Profile{ID: "g-1", Name: "Acme Corp", Email: "ads@acme.test"},
	}
	registry := providers.NewRegistry()
	registry.Register(fp)
	registry.Register(fg)

	repo := memory.New()
	links := linkssvc.New(linkssvc.Deps{Repo: repo})

	cfg := &config.Config{}
	cfg.App.BaseURL = "https://link.example.com"
	cfg.App.SuccessURL = "https://app.example.com/done"
	cfg.Providers.Meta.ClientID = "app-id"
	cfg.Providers.Google.ClientID = "g-app-id"

	svc := NewCallbackService(CallbackDeps{
		Repo:     repo,
		Registry: registry,
		Exchange: NewExchangeService(registry),
		Links:    links,
		Catalog:  catalog.Default(),
		Signer:   signer,
		Config:   cfg,
	})
	return &callbackFixture{svc: svc, repo: repo, links: links, provider: fp, google: fg, cfg: cfg}
}

func (f *callbackFixture) createLink(t *testing.T, token string, platforms ...string) *core.OnboardingLink {
	t.Helper()
	l := &core.OnboardingLink{
		ID:        "link-" + token,
		Token:     token,
		Platforms: platforms,
		Status:    core.LinkStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.repo.CreateLink(context.Background(), l))
	return l
}

func clientState(t *testing.T, linkToken string, options ...string) string {
	t.Helper()
	return platformState(t, "meta", linkToken, options...)
}

func platformState(t *testing.T, platform, linkToken string, options ...string) string {
	t.Helper()
	codec := state.NewCodec(platform, catalog.Default())
	return state.Join(linkToken, codec.EncodeSelection(options))
}

func TestCallbackProviderErrorShortCircuits(t *testing.T) {
	f := newCallbackFixture(t, nil)

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{
		Error:            "access_denied",
		ErrorDescription: "user cancelled",
	})

	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "access_denied: user cancelled", res.Message)
	assert.Equal(t, 0, f.provider.exchangeCalls, "must not attempt an exchange")
}

func TestCallbackMissingCode(t *testing.T) {
	f := newCallbackFixture(t, nil)

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{State: "whatever"})

	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "authorization code missing from callback", res.Message)
	assert.Equal(t, 0, f.provider.exchangeCalls)
}

func TestCallbackMissingState(t *testing.T) {
	f := newCallbackFixture(t, nil)

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{Code: "abc"})

	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "state missing from callback", res.Message)
}

func TestCallbackUnconfiguredPlatform(t *testing.T) {
	f := newCallbackFixture(t, nil)
	f.cfg.Providers.Meta.ClientID = ""

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{Code: "abc", State: "tok|"})

	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Message, "not configured")
}

func TestCallbackHappyPath(t *testing.T) {
	f := newCallbackFixture(t, nil)
	link := f.createLink(t, "tok-happy", "meta")
	ctx := context.Background()

	res := f.svc.HandleCallback(ctx, "meta", CallbackQuery{
		Code:  "code-1",
		State: clientState(t, link.Token, "ad_account"),
	})

	require.Equal(t, "success", res.Status, res.Message)
	assert.Equal(t, "https://app.example.com/done", res.RedirectURL)
	assert.Equal(t, "meta", res.Platform)
	require.NotEmpty(t, res.ClientID)

	assert.Equal(t, 1, f.provider.exchangeCalls)
	assert.Equal(t, "code-1", f.provider.lastCode)
	assert.Equal(t, "https://link.example.com/v1/oauth/meta/callback", f.provider.lastRedirect)

	a, err := f.repo.GetAuthorization(ctx, res.ClientID, "meta")
	require.NoError(t, err)
	assert.Equal(t, core.AuthorizationAuthorized, a.Status)
	assert.Equal(t, []string{"business_management", "ads_read"}, a.Scopes)
	assert.Equal(t, []string{"ad_account"}, a.TokenData.SelectedOptions)
	assert.Equal(t, "tok-123", a.TokenData.AccessToken)
	assert.Equal(t, "fb-1", a.TokenData.ProviderUserID)

	got, err := f.repo.GetLinkByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, core.LinkStatusUsed, got.Status)
	require.NotNil(t, got.UsedBy)
	assert.Equal(t, res.ClientID, *got.UsedBy)
}

func TestCallbackProviderRejectsExchange(t *testing.T) {
	f := newCallbackFixture(t, nil)
	link := f.createLink(t, "tok-reject", "meta")
	f.provider.exchangeErr = &providers.ExchangeError{
		StatusCode: 400,
		Details:    `{"error":{"message":"Invalid verification code format."}}`,
	}

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{
		Code:  "bad-code",
		State: clientState(t, link.Token, "ad_account"),
	})

	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Message, "token exchange failed (400)")
	assert.Contains(t, res.Message, "Invalid verification code format.")

	got, err := f.repo.GetLinkByToken(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, core.LinkStatusActive, got.Status, "link stays usable after a failed exchange")
}

func TestCallbackTransportFailure(t *testing.T) {
	f := newCallbackFixture(t, nil)
	link := f.createLink(t, "tok-transport", "meta")
	f.provider.exchangeErr = errors.New("dial tcp: connection refused")

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{
		Code:  "code-1",
		State: clientState(t, link.Token),
	})

	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "token exchange failed", res.Message, "transport details never reach the user")
}

func TestCallbackCorruptSelectionGrantsNothing(t *testing.T) {
	f := newCallbackFixture(t, nil)
	link := f.createLink(t, "tok-corrupt", "meta")
	ctx := context.Background()

	res := f.svc.HandleCallback(ctx, "meta", CallbackQuery{
		Code:  "code-1",
		State: state.Join(link.Token, "%%%not-base64%%%"),
	})

	require.Equal(t, "success", res.Status, res.Message)

	a, err := f.repo.GetAuthorization(ctx, res.ClientID, "meta")
	require.NoError(t, err)
	assert.Empty(t, a.Scopes)
	assert.Empty(t, a.TokenData.SelectedOptions)
}

func TestCallbackLinkStates(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown link", func(t *testing.T) {
		f := newCallbackFixture(t, nil)
		res := f.svc.HandleCallback(ctx, "meta", CallbackQuery{Code: "c", State: "no-such-token|"})
		assert.Equal(t, "error", res.Status)
		assert.Equal(t, "onboarding link not found", res.Message)
	})

	t.Run("expired link", func(t *testing.T) {
		f := newCallbackFixture(t, nil)
		past := time.Now().UTC().Add(-time.Hour)
		l := &core.OnboardingLink{
			ID: "l1", Token: "tok-exp", Platforms: []string{"meta"},
			Status: core.LinkStatusActive, ExpiresAt: &past, CreatedAt: past,
		}
		require.NoError(t, f.repo.CreateLink(ctx, l))

		res := f.svc.HandleCallback(ctx, "meta", CallbackQuery{Code: "c", State: clientState(t, "tok-exp")})
		assert.Equal(t, "error", res.Status)
		assert.Equal(t, "onboarding link expired", res.Message)
	})

	t.Run("revoked link", func(t *testing.T) {
		f := newCallbackFixture(t, nil)
		f.createLink(t, "tok-rev", "meta")
		require.NoError(t, f.repo.UpdateLinkStatus(ctx, "tok-rev", core.LinkStatusExpired))

		res := f.svc.HandleCallback(ctx, "meta", CallbackQuery{Code: "c", State: clientState(t, "tok-rev")})
		assert.Equal(t, "error", res.Status)
		assert.Contains(t, res.Message, "no longer active")
	})
}

func TestCallbackRetiredLinkFailsClosed(t *testing.T) {
	f := newCallbackFixture(t, nil)
	link := f.createLink(t, "tok-two", "meta")
	ctx := context.Background()

	first := f.svc.HandleCallback(ctx, "meta", CallbackQuery{
		Code:  "code-1",
		State: clientState(t, link.Token, "ad_account"),
	})
	require.Equal(t, "success", first.Status, first.Message)

	// Every platform on the link is authorized, so the link is retired.
	// A later callback must fail closed rather than silently writing
	// under a fresh client.
	second := f.svc.HandleCallback(ctx, "meta", CallbackQuery{
		Code:  "code-2",
		State: clientState(t, link.Token, "ad_account"),
	})
	assert.Equal(t, "error", second.Status)
	assert.Contains(t, second.Message, "no longer active")
}

func TestCallbackMultiPlatformLinkCompletesEachPlatform(t *testing.T) {
	f := newCallbackFixture(t, nil)
	link := f.createLink(t, "tok-multi", "meta", "google")
	ctx := context.Background()

	first := f.svc.HandleCallback(ctx, "meta", CallbackQuery{
		Code:  "code-m",
		State: clientState(t, link.Token, "ad_account"),
	})
	require.Equal(t, "success", first.Status, first.Message)

	// One platform down: the link is bound to the client but stays
	// active so the second platform can still come through.
	mid, err := f.repo.GetLinkByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, core.LinkStatusActive, mid.Status)
	require.NotNil(t, mid.UsedBy)
	assert.Equal(t, first.ClientID, *mid.UsedBy)

	second := f.svc.HandleCallback(ctx, "google", CallbackQuery{
		Code:  "code-g",
		State: platformState(t, "google", link.Token, "google_ads"),
	})
	require.Equal(t, "success", second.Status, second.Message)
	assert.Equal(t, first.ClientID, second.ClientID,
		"second platform must land under the client that claimed the link")

	a, err := f.repo.GetAuthorization(ctx, first.ClientID, "google")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/adwords"}, a.Scopes)
	assert.Equal(t, "tok-g", a.TokenData.AccessToken)

	done, err := f.repo.GetLinkByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, core.LinkStatusUsed, done.Status)

	third := f.svc.HandleCallback(ctx, "meta", CallbackQuery{
		Code:  "code-m2",
		State: clientState(t, link.Token, "ad_account"),
	})
	assert.Equal(t, "error", third.Status)
	assert.Contains(t, third.Message, "no longer active")
}

func TestCallbackAdminFlow(t *testing.T) {
	signer := state.NewHMACSigner([]byte("test-secret-test-secret-12345678"), "https://link.example.com", 10*time.Minute)
	f := newCallbackFixture(t, signer)
	ctx := context.Background()

	tok, err := signer.SignAdminState(state.AdminClaims{
		Platform: "meta",
		AdminID:  "admin@agency.test",
		Nonce:    "n-1",
	})
	require.NoError(t, err)

	res := f.svc.HandleCallback(ctx, "meta", CallbackQuery{Code: "code-a", State: tok})

	require.Equal(t, "success", res.Status, res.Message)
	require.NotEmpty(t, res.ClientID)

	a, err := f.repo.GetAuthorization(ctx, res.ClientID, "meta")
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().EnabledScopes("meta"), a.Scopes)

	c, err := f.repo.GetClient(ctx, res.ClientID)
	require.NoError(t, err)
	assert.Equal(t, "admin@agency.test", c.Email)
}

func TestCallbackAdminStateWrongPlatform(t *testing.T) {
	signer := state.NewHMACSigner([]byte("test-secret-test-secret-12345678"), "https://link.example.com", 10*time.Minute)
	f := newCallbackFixture(t, signer)

	tok, err := signer.SignAdminState(state.AdminClaims{Platform: "google", AdminID: "a@b.test", Nonce: "n"})
	require.NoError(t, err)

	res := f.svc.HandleCallback(context.Background(), "meta", CallbackQuery{Code: "c", State: tok})

	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Message, "different platform")
}
