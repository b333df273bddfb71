package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoShopDomain reports a Shopify provider without a shop domain; the
// authorize and token endpoints are per-shop so there is nothing to build.
var ErrNoShopDomain = errors.New("shopify: shop domain not configured")

// Shopify implements the Shopify admin OAuth flow. Endpoints live under the
// shop's own domain; scopes are comma-joined.
type Shopify struct {
	apiKey    string
	apiSecret string
	shop      string // <shop>.myshopify.com

	http *http.Client
	// overridable in tests; empty means derive from shop domain
	tokenURL string
	shopURL  string
}

func NewShopify(apiKey, apiSecret, shopDomain string, httpTimeout time.Duration) *Shopify {
	return &Shopify{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		shop:      strings.TrimSpace(shopDomain),
		http:      defaultHTTPClient(httpTimeout),
	}
}

func (p *Shopify) Name() string { return "shopify" }

func (p *Shopify) AuthorizeURL(req AuthorizeRequest) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", ErrNotConfigured
	}
	if p.shop == "" {
		return "", ErrNoShopDomain
	}
	u := url.URL{Scheme: "https", Host: p.shop, Path: "/admin/oauth/authorize"}
	q := u.Query()
	q.Set("client_id", p.apiKey)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(req.Scopes, scopeDelimComma))
	q.Set("state", req.State)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *Shopify) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	endpoint := p.tokenURL
	if endpoint == "" {
		if p.shop == "" {
			return nil, ErrNoShopDomain
		}
		endpoint = "https://" + p.shop + "/admin/oauth/access_token"
	}
	form := url.Values{}
	form.Set("client_id", p.apiKey)
	form.Set("client_secret", p.apiSecret)
	form.Set("code", code)
	// Shopify validates the redirect against the app config, not the form,
	// but sending it is harmless and keeps the relay contract uniform.
	form.Set("redirect_uri", redirectURI)

	status, body, err := postForm(ctx, p.http, endpoint, form)
	if err != nil {
		return nil, err
	}
	return parseTokenResponse(status, body)
}

func (p *Shopify) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	endpoint := p.shopURL
	if endpoint == "" {
		if p.shop == "" {
			return nil, ErrNoShopDomain
		}
		endpoint = "https://" + p.shop + "/admin/api/2024-10/shop.json"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// Shopify uses its own header instead of a bearer token.
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Shop struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"shop"`
	}
	if resp.StatusCode/100 != 2 {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Details: "shop lookup failed"}
	}
	if err := decodeJSONBody(resp, &out); err != nil {
		return nil, err
	}
	return &Profile{ID: formatShopID(out.Shop.ID), Name: out.Shop.Name, Email: out.Shop.Email}, nil
}
