package links

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientlinkhq/clientlink/internal/cache"
	dto "github.com/clientlinkhq/clientlink/internal/http/dto/links"
	"github.com/clientlinkhq/clientlink/internal/store/core"
	"github.com/clientlinkhq/clientlink/internal/store/memory"
)

func newService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	repo := memory.New()
	return New(Deps{Repo: repo, Cache: cache.NewMemory(time.Minute)}), repo
}

func TestCreateLink(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, dto.CreateLinkRequest{
		Platforms: []string{"meta", "google"},
		Note:      "Acme onboarding",
		CreatedBy: "ops@agency.test",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, l.Token)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, core.LinkStatusActive, l.Status)
	assert.Equal(t, []string{"meta", "google"}, l.Platforms)
	require.NotNil(t, l.ExpiresAt)
	assert.True(t, l.ExpiresAt.After(time.Now().UTC()))
}

func TestCreateLinkValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateLinkRequest{})
	assert.ErrorIs(t, err, ErrNoPlatforms)

	_, err = svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"myspace"}})
	assert.ErrorIs(t, err, ErrUnknownPlatform)

	_, err = svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"meta"}, ExpiresIn: "yesterday"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"meta"}, ExpiresIn: "-1h"})
	assert.Error(t, err)
}

func TestCreateLinkCustomExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := New(Deps{Repo: memory.New(), Now: func() time.Time { return now }})

	l, err := svc.Create(context.Background(), dto.CreateLinkRequest{
		Platforms: []string{"meta"},
		ExpiresIn: "72h",
	})
	require.NoError(t, err)
	require.NotNil(t, l.ExpiresAt)
	assert.Equal(t, now.Add(72*time.Hour), *l.ExpiresAt)
}

func TestResolveActive(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"meta"}})
	require.NoError(t, err)

	got, err := svc.ResolveActive(ctx, l.Token)
	require.NoError(t, err)
	assert.Equal(t, l.Token, got.Token)

	// Cached copy must not mask a status change.
	require.NoError(t, svc.Revoke(ctx, l.Token))
	_, err = svc.ResolveActive(ctx, l.Token)
	assert.ErrorIs(t, err, ErrNotActive)

	_, err = svc.ResolveActive(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)

	// Expiry wins over status.
	past := time.Now().UTC().Add(-time.Minute)
	exp := &core.OnboardingLink{
		ID: "e1", Token: "tok-old", Platforms: []string{"meta"},
		Status: core.LinkStatusActive, ExpiresAt: &past, CreatedAt: past,
	}
	require.NoError(t, repo.CreateLink(ctx, exp))
	_, err = svc.ResolveActive(ctx, "tok-old")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestClaim(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"meta", "google"}})
	require.NoError(t, err)

	// Warm the cache so the claim has something to invalidate.
	_, err = svc.ResolveActive(ctx, l.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Claim(ctx, l.Token, "client-1", time.Now().UTC()))

	// Claimed links stay resolvable and carry the binding.
	got, err := svc.ResolveActive(ctx, l.Token)
	require.NoError(t, err)
	assert.Equal(t, core.LinkStatusActive, got.Status)
	require.NotNil(t, got.UsedBy)
	assert.Equal(t, "client-1", *got.UsedBy)

	// Re-claiming by the same client is fine; another client is not.
	assert.NoError(t, svc.Claim(ctx, l.Token, "client-1", time.Now().UTC()))
	assert.ErrorIs(t, svc.Claim(ctx, l.Token, "client-2", time.Now().UTC()), core.ErrConflict)

	assert.ErrorIs(t, svc.Claim(ctx, "missing", "c", time.Now()), ErrNotFound)
}

func TestMarkUsed(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"meta"}})
	require.NoError(t, err)

	// Warm the cache, then make sure MarkUsed invalidates it.
	_, err = svc.ResolveActive(ctx, l.Token)
	require.NoError(t, err)

	require.NoError(t, svc.MarkUsed(ctx, l.Token, "client-1", time.Now().UTC()))

	_, err = svc.ResolveActive(ctx, l.Token)
	assert.ErrorIs(t, err, ErrNotActive)

	got, err := repo.GetLinkByToken(ctx, l.Token)
	require.NoError(t, err)
	assert.Equal(t, core.LinkStatusUsed, got.Status)
	require.NotNil(t, got.UsedBy)
	assert.Equal(t, "client-1", *got.UsedBy)

	assert.ErrorIs(t, svc.MarkUsed(ctx, "missing", "c", time.Now()), ErrNotFound)
}

func TestListClampsLimits(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, dto.CreateLinkRequest{Platforms: []string{"meta"}})
		require.NoError(t, err)
	}

	out, err := svc.List(ctx, -5, -1)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	out, err = svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
