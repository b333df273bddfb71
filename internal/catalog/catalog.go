// Package catalog maps human-facing access-request options to provider
// scope vocabularies.
//
// An option is a named bundle of provider scopes ("Ad Account" =>
// business_management + ads_read) presented to the admin as one permission
// choice. The catalog is an explicit value handed to the services that need
// it; nothing here is package-mutable state.
package catalog

import (
	"fmt"
	"strings"

	"github.com/clientlinkhq/clientlink/internal/validation"
)

// Platform identifiers. These match the `platform` column in the
// authorizations table and the {platform} path segment of the OAuth routes.
const (
	PlatformMeta    = "meta"
	PlatformGoogle  = "google"
	PlatformTikTok  = "tiktok"
	PlatformShopify = "shopify"
)

// Platforms lists every supported platform id.
func Platforms() []string {
	return []string{PlatformMeta, PlatformGoogle, PlatformTikTok, PlatformShopify}
}

// KnownPlatform reports whether p names a supported platform.
func KnownPlatform(p string) bool {
	switch strings.ToLower(p) {
	case PlatformMeta, PlatformGoogle, PlatformTikTok, PlatformShopify:
		return true
	}
	return false
}

// Option is a static catalog entry: one human-meaningful permission choice
// translated into provider scope strings.
type Option struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
	Scopes      []string
	Category    string
}

// Catalog holds the option sets per platform.
type Catalog struct {
	options map[string][]Option
}

// New builds a catalog from explicit per-platform option lists. Catalogs
// are static program data, so a malformed platform id or scope string
// panics instead of surfacing at request time.
func New(opts map[string][]Option) *Catalog {
	m := make(map[string][]Option, len(opts))
	for platform, list := range opts {
		p := strings.ToLower(platform)
		if !validation.ValidPlatformID(p) {
			panic(fmt.Sprintf("catalog: invalid platform id %q", platform))
		}
		cp := make([]Option, len(list))
		copy(cp, list)
		for _, o := range cp {
			if !validation.ValidScopes(o.Scopes) {
				panic(fmt.Sprintf("catalog: option %q has a malformed scope", o.ID))
			}
		}
		m[p] = cp
	}
	return &Catalog{options: m}
}

// Options returns all options for a platform, enabled or not.
func (c *Catalog) Options(platform string) []Option {
	list := c.options[strings.ToLower(platform)]
	out := make([]Option, len(list))
	copy(out, list)
	return out
}

// EnabledOptions returns only the enabled options for a platform.
func (c *Catalog) EnabledOptions(platform string) []Option {
	var out []Option
	for _, o := range c.options[strings.ToLower(platform)] {
		if o.Enabled {
			out = append(out, o)
		}
	}
	return out
}

// Option looks up a single option by id. Second return is false when the id
// is unknown for that platform.
func (c *Catalog) Option(platform, id string) (Option, bool) {
	for _, o := range c.options[strings.ToLower(platform)] {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// EnabledScopes returns the union of scopes across all enabled options for a
// platform, de-duplicated, in first-seen order. This is the admin-flow
// default scope set.
func (c *Catalog) EnabledScopes(platform string) []string {
	var ids []string
	for _, o := range c.EnabledOptions(platform) {
		ids = append(ids, o.ID)
	}
	return c.ScopesForSelection(platform, ids)
}

// ScopesForSelection resolves selected option ids to a de-duplicated scope
// list. Unknown ids are ignored; disabled options contribute no scopes even
// if selected. Order follows the first occurrence across the selection.
func (c *Catalog) ScopesForSelection(platform string, selected []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, id := range selected {
		o, ok := c.Option(platform, id)
		if !ok || !o.Enabled {
			continue
		}
		for _, s := range o.Scopes {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
