package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientlinkhq/clientlink/internal/config"
	dto "github.com/clientlinkhq/clientlink/internal/http/dto/oauth"
	linkssvc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	svc "github.com/clientlinkhq/clientlink/internal/http/services/oauth"
)

type fakeStart struct {
	url string
	err error
}

func (f *fakeStart) Start(context.Context, string, string, []string) (string, error) {
	return f.url, f.err
}

func (f *fakeStart) StartAdmin(context.Context, string, string) (string, error) {
	return f.url, f.err
}

type fakeCallback struct {
	lastPlatform string
	lastQuery    svc.CallbackQuery
	result       dto.CallbackResult
}

func (f *fakeCallback) HandleCallback(_ context.Context, platform string, q svc.CallbackQuery) dto.CallbackResult {
	f.lastPlatform = platform
	f.lastQuery = q
	return f.result
}

func mountOAuth(t *testing.T, start svc.StartService, callback svc.CallbackService) http.Handler {
	t.Helper()
	ctrl := NewController(start, callback, nil, &config.Config{})
	r := chi.NewRouter()
	r.Post("/v1/oauth/{platform}/start", ctrl.Start)
	r.Get("/v1/oauth/{platform}/callback", ctrl.Callback)
	return r
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestStartEndpoint(t *testing.T) {
	h := mountOAuth(t, &fakeStart{url: "https://www.facebook.com/v23.0/dialog/oauth?client_id=x"}, nil)

	rec := postJSON(h, "/v1/oauth/meta/start", `{"link_token":"tok-1","options":["ad_account"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.AuthorizeURL, "facebook.com")
}

func TestStartEndpointRequiresLinkToken(t *testing.T) {
	h := mountOAuth(t, &fakeStart{url: "https://x"}, nil)

	rec := postJSON(h, "/v1/oauth/meta/start", `{"options":["ad_account"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"link not found", linkssvc.ErrNotFound, http.StatusNotFound, "not_found"},
		{"link expired", linkssvc.ErrExpired, http.StatusGone, "link_expired"},
		{"link revoked", linkssvc.ErrNotActive, http.StatusGone, "link_expired"},
		{"platform not on link", svc.ErrPlatformNotOnLink, http.StatusBadRequest, "bad_request"},
		{"empty selection", svc.ErrNoOptionsSelected, http.StatusBadRequest, "bad_request"},
		{"unknown platform", svc.ErrUnknownPlatform, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := mountOAuth(t, &fakeStart{err: tc.err}, nil)

			rec := postJSON(h, "/v1/oauth/meta/start", `{"link_token":"tok-1"}`)

			assert.Equal(t, tc.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestCallbackRedirectsOnSuccess(t *testing.T) {
	cb := &fakeCallback{result: dto.CallbackResult{
		Status:      "success",
		Platform:    "meta",
		ClientID:    "client-1",
		RedirectURL: "https://app.example.com/done",
	}}
	h := mountOAuth(t, nil, cb)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/oauth/meta/callback?code=abc&state=tok-1%7CeyJhZCI6dHJ1ZX0%3D", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://app.example.com/done", rec.Header().Get("Location"))

	assert.Equal(t, "meta", cb.lastPlatform)
	assert.Equal(t, "abc", cb.lastQuery.Code)
	assert.Equal(t, "tok-1|eyJhZCI6dHJ1ZX0=", cb.lastQuery.State)
}

func TestCallbackRendersErrorResult(t *testing.T) {
	cb := &fakeCallback{result: dto.CallbackResult{
		Status:   "error",
		Platform: "meta",
		Message:  "onboarding link expired",
	}}
	h := mountOAuth(t, nil, cb)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/oauth/meta/callback?error=access_denied&error_description=user+cancelled", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res dto.CallbackResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "error", res.Status)

	assert.Equal(t, "access_denied", cb.lastQuery.Error)
	assert.Equal(t, "user cancelled", cb.lastQuery.ErrorDescription)
}
