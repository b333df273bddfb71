// Package oauth exposes the OAuth endpoints: start, provider callback
// and the token-exchange relay.
package oauth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clientlinkhq/clientlink/internal/config"
	dto "github.com/clientlinkhq/clientlink/internal/http/dto/oauth"
	httperrors "github.com/clientlinkhq/clientlink/internal/http/errors"
	"github.com/clientlinkhq/clientlink/internal/http/helpers"
	linkssvc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	svc "github.com/clientlinkhq/clientlink/internal/http/services/oauth"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/validation"
)

type Controller struct {
	start           svc.StartService
	callback        svc.CallbackService
	exchange        svc.ExchangeService
	cfg             *config.Config
	callbackTimeout time.Duration
}

func NewController(start svc.StartService, callback svc.CallbackService, exchange svc.ExchangeService, cfg *config.Config) *Controller {
	timeout := 15 * time.Second
	if cfg.OAuth.CallbackTimeout != "" {
		timeout = config.MustDuration(cfg.OAuth.CallbackTimeout)
	}
	return &Controller{
		start:           start,
		callback:        callback,
		exchange:        exchange,
		cfg:             cfg,
		callbackTimeout: timeout,
	}
}

// Start handles POST /v1/oauth/{platform}/start.
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	platform := strings.ToLower(chi.URLParam(r, "platform"))
	if !validation.ValidPlatformID(platform) {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown platform"))
		return
	}
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("OAuthController.Start"),
		logger.Platform(platform),
	)

	var req dto.StartRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.LinkToken == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("link_token is required"))
		return
	}
	log.Debug("start requested", logger.LinkToken(req.LinkToken), logger.Count(len(req.Options)))

	u, err := c.start.Start(ctx, platform, req.LinkToken, req.Options)
	if err != nil {
		c.writeStartError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.StartResponse{AuthorizeURL: u})
}

// StartAdmin handles POST /v1/admin/oauth/{platform}/start.
func (c *Controller) StartAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	platform := strings.ToLower(chi.URLParam(r, "platform"))
	if !validation.ValidPlatformID(platform) {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown platform"))
		return
	}
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("OAuthController.StartAdmin"),
		logger.Platform(platform),
		logger.Flow("admin"),
	)

	var req struct {
		AdminID string `json:"admin_id"`
	}
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.AdminID == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("admin_id is required"))
		return
	}
	log.Debug("admin start requested")

	u, err := c.start.StartAdmin(ctx, platform, req.AdminID)
	if err != nil {
		c.writeStartError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.StartResponse{AuthorizeURL: u})
}

func (c *Controller) writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, linkssvc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("onboarding link not found"))
	case errors.Is(err, linkssvc.ErrExpired), errors.Is(err, linkssvc.ErrNotActive):
		httperrors.WriteError(w, httperrors.ErrLinkExpired)
	case errors.Is(err, svc.ErrPlatformNotOnLink), errors.Is(err, svc.ErrNoOptionsSelected):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
	case errors.Is(err, svc.ErrUnknownPlatform):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown platform"))
	case errors.Is(err, providers.ErrNotConfigured):
		httperrors.WriteError(w, httperrors.New(http.StatusInternalServerError, "not_configured",
			"platform is not configured, contact your administrator"))
	default:
		httperrors.WriteError(w, err)
	}
}

// Callback handles GET /v1/oauth/{platform}/callback, the provider
// redirect target. Success redirects onward; every failure renders a
// JSON error result.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	platform := strings.ToLower(chi.URLParam(r, "platform"))
	if !validation.ValidPlatformID(platform) {
		helpers.WriteJSON(w, http.StatusOK, dto.CallbackResult{
			Status:  "error",
			Message: "unknown platform",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.callbackTimeout)
	defer cancel()

	q := r.URL.Query()
	res := c.callback.HandleCallback(ctx, platform, svc.CallbackQuery{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})

	if res.Status == "success" && res.RedirectURL != "" {
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}
