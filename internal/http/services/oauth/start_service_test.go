package oauth

import (
	"context"
	"net/url"
	"strings"
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

func newStartFixture(t *testing.T, signer state.Signer) (StartService, *memory.Store) {
	t.Helper()

	registry := providers.NewRegistry()
	registry.Register(providers.NewMeta("meta-app-id", "meta-secret", 5*time.Second))

	repo := memory.New()
	cfg := &config.Config{}
	cfg.App.BaseURL = "https://link.example.com/"
	cfg.Providers.Meta.ClientID = "meta-app-id"

	svc := NewStartService(StartDeps{
		Registry: registry,
		Links:    linkssvc.New(linkssvc.Deps{Repo: repo}),
		Catalog:  catalog.Default(),
		Signer:   signer,
		Config:   cfg,
	})
	return svc, repo
}

func activeLink(t *testing.T, repo *memory.Store, token string, platforms ...string) {
	t.Helper()
	require.NoError(t, repo.CreateLink(context.Background(), &core.OnboardingLink{
		ID: "l-" + token, Token: token, Platforms: platforms,
		Status: core.LinkStatusActive, CreatedAt: time.Now().UTC(),
	}))
}

func TestStartBuildsAuthorizeURL(t *testing.T) {
	svc, repo := newStartFixture(t, nil)
	activeLink(t, repo, "tok-1", "meta")

	raw, err := svc.Start(context.Background(), "meta", "tok-1", []string{"ad_account"})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "meta-app-id", q.Get("client_id"))
	assert.Equal(t, "business_management,ads_read", q.Get("scope"))
	assert.Equal(t, "https://link.example.com/v1/oauth/meta/callback", q.Get("redirect_uri"))

	// State must be the link token plus the reversible selection payload.
	st := q.Get("state")
	linkToken, encoded := state.Split(st)
	assert.Equal(t, "tok-1", linkToken)
	codec := state.NewCodec("meta", catalog.Default())
	assert.Equal(t, []string{"ad_account"}, codec.DecodeSelection(context.Background(), encoded))

	assert.NotContains(t, raw, "meta-secret")
}

func TestStartRejectsPlatformNotOnLink(t *testing.T) {
	svc, repo := newStartFixture(t, nil)
	activeLink(t, repo, "tok-1", "google")

	_, err := svc.Start(context.Background(), "meta", "tok-1", []string{"ad_account"})
	assert.ErrorIs(t, err, ErrPlatformNotOnLink)
}

func TestStartRejectsEmptySelection(t *testing.T) {
	svc, repo := newStartFixture(t, nil)
	activeLink(t, repo, "tok-1", "meta")
	ctx := context.Background()

	_, err := svc.Start(ctx, "meta", "tok-1", nil)
	assert.ErrorIs(t, err, ErrNoOptionsSelected)

	// Unknown option ids contribute no scopes and so fail the same way.
	_, err = svc.Start(ctx, "meta", "tok-1", []string{"bogus_option"})
	assert.ErrorIs(t, err, ErrNoOptionsSelected)
}

func TestStartPropagatesLinkErrors(t *testing.T) {
	svc, repo := newStartFixture(t, nil)
	ctx := context.Background()

	_, err := svc.Start(ctx, "meta", "missing", []string{"ad_account"})
	assert.ErrorIs(t, err, linkssvc.ErrNotFound)

	activeLink(t, repo, "tok-rev", "meta")
	require.NoError(t, repo.UpdateLinkStatus(ctx, "tok-rev", core.LinkStatusExpired))
	_, err = svc.Start(ctx, "meta", "tok-rev", []string{"ad_account"})
	assert.ErrorIs(t, err, linkssvc.ErrNotActive)
}

func TestStartUnknownPlatform(t *testing.T) {
	svc, repo := newStartFixture(t, nil)
	activeLink(t, repo, "tok-1", "meta", "tiktok")

	// tiktok is on the link but has no registered provider.
	_, err := svc.Start(context.Background(), "tiktok", "tok-1", []string{"tiktok_profile"})
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestStartAdmin(t *testing.T) {
	signer := state.NewHMACSigner([]byte("test-secret-test-secret-12345678"), "https://link.example.com", 10*time.Minute)
	svc, _ := newStartFixture(t, signer)

	raw, err := svc.StartAdmin(context.Background(), "meta", "admin@agency.test")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	st := u.Query().Get("state")
	require.NotEmpty(t, st)

	// Admin state is a signed token, not a link token pair.
	assert.False(t, strings.Contains(st, "|"))
	claims, err := signer.ParseAdminState(st)
	require.NoError(t, err)
	assert.Equal(t, "meta", claims.Platform)
	assert.Equal(t, "admin@agency.test", claims.AdminID)
	assert.NotEmpty(t, claims.Nonce)
}

func TestStartAdminWithoutSigner(t *testing.T) {
	svc, _ := newStartFixture(t, nil)

	_, err := svc.StartAdmin(context.Background(), "meta", "admin@agency.test")
	assert.Error(t, err)
}
