package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientlinkhq/clientlink/internal/validation"
)

func TestScopesForSelection_Empty(t *testing.T) {
	c := Default()
	assert.Empty(t, c.ScopesForSelection(PlatformMeta, nil))
	assert.Empty(t, c.ScopesForSelection(PlatformMeta, []string{}))
}

func TestScopesForSelection_SingleOption(t *testing.T) {
	c := Default()
	got := c.ScopesForSelection(PlatformMeta, []string{"ad_account"})
	assert.Equal(t, []string{"business_management", "ads_read"}, got)
}

func TestScopesForSelection_DisabledContributesNothing(t *testing.T) {
	c := Default()
	// instagram_account is disabled; selecting it must add no scopes.
	got := c.ScopesForSelection(PlatformMeta, []string{"instagram_account"})
	assert.Empty(t, got)

	got = c.ScopesForSelection(PlatformMeta, []string{"ad_account", "instagram_account"})
	assert.Equal(t, []string{"business_management", "ads_read"}, got)
}

func TestScopesForSelection_UnknownIDsIgnored(t *testing.T) {
	c := Default()
	got := c.ScopesForSelection(PlatformMeta, []string{"nope", "ad_account", "also_nope"})
	assert.Equal(t, []string{"business_management", "ads_read"}, got)
}

func TestScopesForSelection_Deduplicates(t *testing.T) {
	c := New(map[string][]Option{
		"meta": {
			{ID: "a", Enabled: true, Scopes: []string{"shared", "only_a"}},
			{ID: "b", Enabled: true, Scopes: []string{"shared", "only_b"}},
		},
	})
	got := c.ScopesForSelection("meta", []string{"a", "b"})
	assert.Equal(t, []string{"shared", "only_a", "only_b"}, got)
}

func TestScopesForSelection_NeverIncludesDisabledOnlyScope(t *testing.T) {
	c := Default()
	// ads_management belongs only to disabled meta options.
	for _, sel := range [][]string{
		{"ad_account", "page_all_permissions"},
		{"catalog", "dataset"},
		{"ad_account", "catalog"},
	} {
		for _, s := range c.ScopesForSelection(PlatformMeta, sel) {
			assert.NotEqual(t, "ads_management", s, "selection %v leaked a disabled-only scope", sel)
		}
	}
}

func TestEnabledScopes_Meta(t *testing.T) {
	c := Default()
	got := c.EnabledScopes(PlatformMeta)
	assert.Equal(t, []string{
		"business_management",
		"ads_read",
		"pages_show_list",
		"pages_read_engagement",
		"pages_manage_posts",
		"pages_manage_metadata",
	}, got)
}

func TestEnabledOptions(t *testing.T) {
	c := Default()
	for _, o := range c.EnabledOptions(PlatformMeta) {
		assert.True(t, o.Enabled)
	}
	// Meta ships ad_account and page_all_permissions enabled.
	require.Len(t, c.EnabledOptions(PlatformMeta), 2)
}

func TestOptionLookup(t *testing.T) {
	c := Default()
	o, ok := c.Option(PlatformGoogle, "google_ads")
	require.True(t, ok)
	assert.Equal(t, "Google Ads", o.Name)

	_, ok = c.Option(PlatformGoogle, "missing")
	assert.False(t, ok)
}

func TestKnownPlatform(t *testing.T) {
	for _, p := range Platforms() {
		assert.True(t, KnownPlatform(p))
	}
	assert.True(t, KnownPlatform("Meta")) // case-insensitive
	assert.False(t, KnownPlatform("linkedin"))
	assert.False(t, KnownPlatform(""))
}

func TestDefaultScopeNamesWellFormed(t *testing.T) {
	c := Default()
	for _, p := range Platforms() {
		for _, o := range c.Options(p) {
			assert.True(t, validation.ValidScopes(o.Scopes), "%s/%s", p, o.ID)
		}
		assert.True(t, validation.ValidPlatformID(p), p)
	}
}

func TestNewRejectsMalformedEntries(t *testing.T) {
	assert.Panics(t, func() {
		New(map[string][]Option{"bad platform!": nil})
	})
	assert.Panics(t, func() {
		New(map[string][]Option{PlatformMeta: {
			{ID: "broken", Enabled: true, Scopes: []string{"has space"}},
		}})
	})
	assert.NotPanics(t, func() {
		New(map[string][]Option{PlatformGoogle: {
			{ID: "ads", Enabled: true, Scopes: []string{"https://www.googleapis.com/auth/adwords"}},
		}})
	})
}
