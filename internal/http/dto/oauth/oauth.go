// Package oauth defines the wire shapes of the OAuth start, callback and
// exchange endpoints.
package oauth

// StartRequest selects the access-request options before redirecting to
// the provider.
type StartRequest struct {
	LinkToken string   `json:"link_token"`
	Options   []string `json:"options"`
}

type StartResponse struct {
	AuthorizeURL string `json:"authorize_url"`
}

// ExchangeRequest is the relay contract: the browser posts the code and
// redirect URI, the server attaches the client secret.
type ExchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

// ExchangeErrorResponse is the relay's transport-failure shape.
type ExchangeErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CallbackResult is what the callback endpoint renders or redirects with.
type CallbackResult struct {
	Status      string `json:"status"` // success | error
	Message     string `json:"message,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Platform    string `json:"platform,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
}
