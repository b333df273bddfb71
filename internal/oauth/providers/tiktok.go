package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TikTok implements the TikTok open-api OAuth flow. The authorize endpoint
// takes client_key (not client_id) and comma-joined scopes.
type TikTok struct {
	clientKey    string
	clientSecret string

	authURL  string
	tokenURL string
	userURL  string
	http     *http.Client
}

func NewTikTok(clientKey, clientSecret string, httpTimeout time.Duration) *TikTok {
	return &TikTok{
		clientKey:    clientKey,
		clientSecret: clientSecret,
		authURL:      "https://www.tiktok.com/v2/auth/authorize/",
		tokenURL:     "https://open.tiktokapis.com/v2/oauth/token/",
		userURL:      "https://open.tiktokapis.com/v2/user/info/",
		http:         defaultHTTPClient(httpTimeout),
	}
}

func (p *TikTok) Name() string { return "tiktok" }

func (p *TikTok) AuthorizeURL(req AuthorizeRequest) (string, error) {
	if strings.TrimSpace(p.clientKey) == "" {
		return "", ErrNotConfigured
	}
	u, err := url.Parse(p.authURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client_key", p.clientKey)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(req.Scopes, scopeDelimComma))
	q.Set("state", req.State)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *TikTok) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_key", p.clientKey)
	form.Set("client_secret", p.clientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

	status, body, err := postForm(ctx, p.http, p.tokenURL, form)
	if err != nil {
		return nil, err
	}
	return parseTokenResponse(status, body)
}

func (p *TikTok) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	u := p.userURL + "?fields=open_id,display_name"
	var out struct {
		Data struct {
			User struct {
				OpenID      string `json:"open_id"`
				DisplayName string `json:"display_name"`
			} `json:"user"`
		} `json:"data"`
	}
	if _, err := getJSON(ctx, p.http, u, accessToken, &out); err != nil {
		return nil, err
	}
	return &Profile{ID: out.Data.User.OpenID, Name: out.Data.User.DisplayName}, nil
}
