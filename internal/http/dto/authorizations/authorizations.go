// Package authorizations defines the wire shapes of the authorization
// read API. Token material never appears here.
package authorizations

import "time"

type AuthorizationResponse struct {
	ID                string    `json:"id"`
	ClientID          string    `json:"client_id"`
	Platform          string    `json:"platform"`
	Status            string    `json:"status"`
	Scopes            []string  `json:"scopes"`
	ProviderUserID    string    `json:"provider_user_id,omitempty"`
	ProviderUserName  string    `json:"provider_user_name,omitempty"`
	ProviderUserEmail string    `json:"provider_user_email,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ListAuthorizationsResponse struct {
	Authorizations []AuthorizationResponse `json:"authorizations"`
}
