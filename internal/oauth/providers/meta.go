package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const metaGraphVersion = "v21.0"

// Meta implements the Facebook Graph OAuth flow. Scopes are comma-joined;
// the Graph API rejects space-joined scope strings.
type Meta struct {
	clientID     string
	clientSecret string

	authURL    string
	tokenURL   string
	profileURL string
	http       *http.Client
}

// NewMeta builds the Meta provider. httpTimeout bounds every outbound call.
func NewMeta(clientID, clientSecret string, httpTimeout time.Duration) *Meta {
	return &Meta{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      "https://www.facebook.com/" + metaGraphVersion + "/dialog/oauth",
		tokenURL:     "https://graph.facebook.com/" + metaGraphVersion + "/oauth/access_token",
		profileURL:   "https://graph.facebook.com/" + metaGraphVersion + "/me",
		http:         defaultHTTPClient(httpTimeout),
	}
}

func (p *Meta) Name() string { return "meta" }

func (p *Meta) AuthorizeURL(req AuthorizeRequest) (string, error) {
	if strings.TrimSpace(p.clientID) == "" {
		return "", ErrNotConfigured
	}
	u, err := url.Parse(p.authURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client_id", p.clientID)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(req.Scopes, scopeDelimComma))
	q.Set("state", req.State)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *Meta) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

	status, body, err := postForm(ctx, p.http, p.tokenURL, form)
	if err != nil {
		return nil, err
	}
	return parseTokenResponse(status, body)
}

func (p *Meta) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	u, err := url.Parse(p.profileURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("fields", "id,name,email")
	// Graph API takes the token as a query param on /me.
	q.Set("access_token", accessToken)
	u.RawQuery = q.Encode()

	var out struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if _, err := getJSON(ctx, p.http, u.String(), "", &out); err != nil {
		return nil, err
	}
	return &Profile{ID: out.ID, Name: out.Name, Email: out.Email}, nil
}
