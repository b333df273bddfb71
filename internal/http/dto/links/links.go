// Package links defines the wire shapes of the onboarding-link API.
package links

import "time"

type CreateLinkRequest struct {
	Platforms []string `json:"platforms"`
	Note      string   `json:"note,omitempty"`
	CreatedBy string   `json:"created_by,omitempty"`
	// TTL as a duration string ("72h"). Empty uses the configured default.
	ExpiresIn string `json:"expires_in,omitempty"`
}

type LinkResponse struct {
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	Platforms []string   `json:"platforms"`
	Note      string     `json:"note,omitempty"`
	Status    string     `json:"status"`
	CreatedBy string     `json:"created_by,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UsedBy    *string    `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListLinksResponse struct {
	Links []LinkResponse `json:"links"`
}

// PublicLinkResponse is what the onboarding page may fetch before
// starting the flow. It never exposes who issued the link.
type PublicLinkResponse struct {
	Token     string               `json:"token"`
	Status    string               `json:"status"`
	Platforms []PublicLinkPlatform `json:"platforms"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

// PublicLinkPlatform lists the selectable access-request options for one
// platform on the link.
type PublicLinkPlatform struct {
	ID      string             `json:"id"`
	Options []PublicLinkOption `json:"options"`
}

type PublicLinkOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
