package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clientlinkhq/clientlink/internal/config"
)

// Registry holds the configured provider instances keyed by platform id.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.Name())] = p
}

// Get returns the provider for a platform id.
func (r *Registry) Get(platform string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, platform)
	}
	return p, nil
}

// Available returns the registered platform ids, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FromConfig builds a registry with every enabled provider from config.
// Providers with an empty client id are still registered; AuthorizeURL
// reports ErrNotConfigured at use time.
func FromConfig(cfg *config.Config, httpTimeout time.Duration) *Registry {
	r := NewRegistry()
	if p := cfg.Providers.Meta; p.Enabled {
		r.Register(NewMeta(p.ClientID, p.ClientSecret, httpTimeout))
	}
	if p := cfg.Providers.Google; p.Enabled {
		r.Register(NewGoogle(p.ClientID, p.ClientSecret, httpTimeout))
	}
	if p := cfg.Providers.TikTok; p.Enabled {
		r.Register(NewTikTok(p.ClientID, p.ClientSecret, httpTimeout))
	}
	if p := cfg.Providers.Shopify; p.Enabled {
		r.Register(NewShopify(p.ClientID, p.ClientSecret, p.ShopDomain, httpTimeout))
	}
	return r
}
