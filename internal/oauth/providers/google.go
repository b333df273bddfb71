package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Google implements the Google OAuth flow. Scopes are space-joined per
// OAuth2 convention; access_type=offline and prompt=consent are requested
// so Google returns a refresh token on every authorization.
type Google struct {
	clientID     string
	clientSecret string

	authURL     string
	tokenURL    string
	userinfoURL string
	http        *http.Client
}

func NewGoogle(clientID, clientSecret string, httpTimeout time.Duration) *Google {
	return &Google{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		tokenURL:     "https://oauth2.googleapis.com/token",
		userinfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
		http:         defaultHTTPClient(httpTimeout),
	}
}

func (p *Google) Name() string { return "google" }

func (p *Google) AuthorizeURL(req AuthorizeRequest) (string, error) {
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
	q.Set("scope", strings.Join(req.Scopes, scopeDelimSpace))
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("state", req.State)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *Google) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
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

func (p *Google) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	var out struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if _, err := getJSON(ctx, p.http, p.userinfoURL, accessToken, &out); err != nil {
		return nil, err
	}
	return &Profile{ID: out.Sub, Name: out.Name, Email: out.Email}, nil
}
