// Package providers implements the per-platform OAuth2 flows: authorization
// URL construction, the confidential code-for-token exchange, and the
// minimal profile fetch.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotConfigured reports a missing client id. Treated as a configuration
// error, not a user error: a malformed OAuth URL sent to the provider fails
// on the provider's side far from the root cause, so we refuse to build one.
var ErrNotConfigured = errors.New("provider not configured: client id is empty")

// ErrUnknownProvider reports a platform with no registered provider.
var ErrUnknownProvider = errors.New("unknown provider")

// AuthorizeRequest carries the inputs for building an authorization URL.
// Everything in it is public; no network call happens while building.
type AuthorizeRequest struct {
	RedirectURI string
	Scopes      []string
	State       string
}

// TokenResponse is the parsed result of a successful code exchange. Raw
// preserves the provider's JSON verbatim for the relay contract.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Profile is the minimal identity fetched after a successful exchange.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// ExchangeError carries a provider token-endpoint failure with the original
// HTTP status preserved, so the relay can forward both verbatim.
type ExchangeError struct {
	StatusCode int
	Details    string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: status=%d: %s", e.StatusCode, e.Details)
}

// Provider implements one platform's OAuth flow.
type Provider interface {
	// Name returns the platform id (meta, google, tiktok, shopify).
	Name() string

	// AuthorizeURL builds the provider authorization redirect URL.
	// Returns ErrNotConfigured when the client id is empty. No network.
	AuthorizeURL(req AuthorizeRequest) (string, error)

	// Exchange trades an authorization code for tokens. Provider-side
	// failures return *ExchangeError with the original status and body.
	Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error)

	// Profile fetches minimal identity info with the access token.
	Profile(ctx context.Context, accessToken string) (*Profile, error)
}

// Scope-joining delimiters differ per provider: comma for the Meta family
// (and TikTok, Shopify), space per OAuth2 convention for Google. Providers
// reject or silently mis-parse scope strings joined with the wrong
// delimiter, so each implementation hardcodes its own.
const (
	scopeDelimComma = ","
	scopeDelimSpace = " "
)
