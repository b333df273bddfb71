package core

import "time"

// LinkStatus is the lifecycle state of an onboarding link.
type LinkStatus string

const (
	LinkStatusActive  LinkStatus = "active"
	LinkStatusUsed    LinkStatus = "used"
	LinkStatusExpired LinkStatus = "expired"
)

// OnboardingLink is an admin-issued, tokenized invitation that lets a
// client authorize one or more platforms. Token is the opaque value that
// travels in the URL and in the OAuth state parameter.
type OnboardingLink struct {
	ID        string
	Token     string
	CreatedBy string
	Platforms []string
	Note      string
	Status    LinkStatus
	ExpiresAt *time.Time
	UsedBy    *string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Expired reports whether the link has passed its expiry, independent of
// the persisted Status column. Expiry is honored at use time.
func (l *OnboardingLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Client is the business a link was issued for. A row is created (or
// matched) the first time one of its links is used.
type Client struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// AuthorizationStatus tracks whether a grant has completed.
type AuthorizationStatus string

const (
	AuthorizationPending    AuthorizationStatus = "pending"
	AuthorizationAuthorized AuthorizationStatus = "authorized"
)

// TokenData is the provider grant material persisted with an
// authorization. Stored as JSONB.
type TokenData struct {
	AccessToken       string   `json:"access_token"`
	RefreshToken      string   `json:"refresh_token,omitempty"`
	TokenType         string   `json:"token_type,omitempty"`
	ExpiresIn         int64    `json:"expires_in,omitempty"`
	Scope             string   `json:"scope,omitempty"`
	ProviderUserID    string   `json:"provider_user_id,omitempty"`
	ProviderUserName  string   `json:"provider_user_name,omitempty"`
	ProviderUserEmail string   `json:"provider_user_email,omitempty"`
	SelectedOptions   []string `json:"selected_options,omitempty"`
}

// Authorization is one grant per (ClientID, Platform) pair. Re-authorizing
// the same pair updates the existing row.
type Authorization struct {
	ID        string
	ClientID  string
	Platform  string
	Status    AuthorizationStatus
	Scopes    []string
	TokenData TokenData
	CreatedAt time.Time
	UpdatedAt time.Time
}
