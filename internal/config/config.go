package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider holds the OAuth credentials and endpoints for one platform.
// ClientID is public (it ends up in browser-visible URLs); ClientSecret is
// confidential and must never be returned by any endpoint.
type Provider struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectPath string   `yaml:"redirect_path"` // if empty => /v1/oauth/<platform>/callback
	Scopes       []string `yaml:"scopes"`        // admin-flow default scopes; client flow derives from catalog
	ShopDomain   string   `yaml:"shop_domain"`   // shopify only: <shop>.myshopify.com
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// Public base URL of this service, used to build redirect URIs.
		BaseURL string `yaml:"base_url"`
		// Where the browser is sent after a successful authorization.
		SuccessURL string `yaml:"success_url"`
	} `yaml:"app"`

	Log struct {
		// debug | info | warn | error
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string   `yaml:"addr"`
		MetricsAddr        string   `yaml:"metrics_addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Admin struct {
		// bcrypt hash of the admin API key expected in X-Admin-API-Key.
		APIKeyHash string `yaml:"api_key_hash"`
		// Email address notified when a client completes an authorization.
		NotifyEmail string `yaml:"notify_email"`
	} `yaml:"admin"`

	OAuth struct {
		// HMAC secret for signing admin-flow state tokens.
		StateSecret string `yaml:"state_secret"`
		StateTTL    string `yaml:"state_ttl"`
		// Upper bound for processing one callback end to end.
		CallbackTimeout string `yaml:"callback_timeout"`
		// Outbound HTTP timeout for token and profile calls.
		HTTPTimeout string `yaml:"http_timeout"`
	} `yaml:"oauth"`

	Links struct {
		// Default lifetime for new onboarding links; 0 means no expiry.
		DefaultTTL string `yaml:"default_ttl"`
	} `yaml:"links"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`

		Exchange struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"exchange"`

		Callback struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"callback"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Providers struct {
		Meta    Provider `yaml:"meta"`
		Google  Provider `yaml:"google"`
		TikTok  Provider `yaml:"tiktok"`
		Shopify Provider `yaml:"shopify"`
	} `yaml:"providers"`
}

// Load reads a YAML config file, applies environment overrides for secrets,
// fills defaults and validates duration strings.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	applyEnvOverrides(&c)

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.OAuth.StateTTL == "" {
		c.OAuth.StateTTL = "10m"
	}
	if c.OAuth.CallbackTimeout == "" {
		c.OAuth.CallbackTimeout = "15s"
	}
	if c.OAuth.HTTPTimeout == "" {
		c.OAuth.HTTPTimeout = "10s"
	}
	if c.Links.DefaultTTL == "" {
		c.Links.DefaultTTL = "168h" // 7d
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Exchange.Limit == 0 {
		c.Rate.Exchange.Limit = 10
	}
	if c.Rate.Exchange.Window == "" {
		c.Rate.Exchange.Window = "1m"
	}
	if c.Rate.Callback.Limit == 0 {
		c.Rate.Callback.Limit = 20
	}
	if c.Rate.Callback.Window == "" {
		c.Rate.Callback.Window = "1m"
	}

	// validate string durations
	for name, d := range map[string]string{
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
		"cache.memory.ttl":       c.Cache.Memory.DefaultTTL,
		"oauth.state_ttl":        c.OAuth.StateTTL,
		"oauth.callback_timeout": c.OAuth.CallbackTimeout,
		"oauth.http_timeout":     c.OAuth.HTTPTimeout,
		"links.default_ttl":      c.Links.DefaultTTL,
		"rate.window":            c.Rate.Window,
		"rate.exchange.window":   c.Rate.Exchange.Window,
		"rate.callback.window":   c.Rate.Callback.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return nil, fmt.Errorf("config: invalid duration %s=%q: %w", name, d, err)
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, fmt.Errorf("config: invalid storage.postgres.conn_max_lifetime: %w", err)
		}
	}
	return &c, nil
}

// applyEnvOverrides lets deployments keep secrets out of the YAML file.
// Client IDs are overridable too since they differ per environment.
func applyEnvOverrides(c *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Storage.DSN, "DATABASE_DSN")
	set(&c.Admin.APIKeyHash, "ADMIN_API_KEY_HASH")
	set(&c.OAuth.StateSecret, "OAUTH_STATE_SECRET")

	set(&c.Providers.Meta.ClientID, "META_APP_ID")
	set(&c.Providers.Meta.ClientSecret, "META_APP_SECRET")
	set(&c.Providers.Google.ClientID, "GOOGLE_CLIENT_ID")
	set(&c.Providers.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	set(&c.Providers.TikTok.ClientID, "TIKTOK_CLIENT_KEY")
	set(&c.Providers.TikTok.ClientSecret, "TIKTOK_CLIENT_SECRET")
	set(&c.Providers.Shopify.ClientID, "SHOPIFY_API_KEY")
	set(&c.Providers.Shopify.ClientSecret, "SHOPIFY_API_SECRET")
	set(&c.Providers.Shopify.ShopDomain, "SHOPIFY_SHOP_DOMAIN")
	set(&c.SMTP.Password, "SMTP_PASSWORD")
}

// MustDuration parses a duration already validated by Load.
func MustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ProviderFor returns the provider block for a platform id, nil if unknown.
func (c *Config) ProviderFor(platform string) *Provider {
	switch strings.ToLower(platform) {
	case "meta":
		return &c.Providers.Meta
	case "google":
		return &c.Providers.Google
	case "tiktok":
		return &c.Providers.TikTok
	case "shopify":
		return &c.Providers.Shopify
	}
	return nil
}
