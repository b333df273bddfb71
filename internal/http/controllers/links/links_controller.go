// Package links exposes the onboarding-link endpoints: admin CRUD plus
// the public link inspection used by the onboarding page.
package links

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clientlinkhq/clientlink/internal/catalog"
	"github.com/clientlinkhq/clientlink/internal/config"
	dto "github.com/clientlinkhq/clientlink/internal/http/dto/links"
	httperrors "github.com/clientlinkhq/clientlink/internal/http/errors"
	"github.com/clientlinkhq/clientlink/internal/http/helpers"
	svc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/store/core"
)

type Controller struct {
	service svc.Service
	cat     *catalog.Catalog
	cfg     *config.Config
}

func NewController(s svc.Service, cat *catalog.Catalog, cfg *config.Config) *Controller {
	return &Controller{service: s, cat: cat, cfg: cfg}
}

// Create handles POST /v1/admin/links.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LinksController.Create"))

	var req dto.CreateLinkRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	l, err := c.service.Create(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrNoPlatforms), errors.Is(err, svc.ErrUnknownPlatform):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		default:
			log.Error("create failed", logger.Err(err))
			httperrors.WriteError(w, err)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, c.toResponse(l))
}

// List handles GET /v1/admin/links.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	links, err := c.service.List(r.Context(), limit, offset)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out := dto.ListLinksResponse{Links: make([]dto.LinkResponse, 0, len(links))}
	for i := range links {
		out.Links = append(out.Links, c.toResponse(&links[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /v1/admin/links/{token}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	l, err := c.service.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, c.toResponse(l))
}

// Revoke handles DELETE /v1/admin/links/{token}.
func (c *Controller) Revoke(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := c.service.Revoke(r.Context(), token); err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Inspect handles GET /v1/links/{token}, the public shape the
// onboarding page loads before starting a flow.
func (c *Controller) Inspect(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	l, err := c.service.ResolveActive(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrNotFound)
		case errors.Is(err, svc.ErrExpired), errors.Is(err, svc.ErrNotActive):
			httperrors.WriteError(w, httperrors.ErrLinkExpired)
		default:
			httperrors.WriteError(w, err)
		}
		return
	}

	out := dto.PublicLinkResponse{
		Token:     l.Token,
		Status:    string(l.Status),
		ExpiresAt: l.ExpiresAt,
	}
	for _, p := range l.Platforms {
		pl := dto.PublicLinkPlatform{ID: p}
		for _, opt := range c.cat.EnabledOptions(p) {
			pl.Options = append(pl.Options, dto.PublicLinkOption{
				ID:          opt.ID,
				Name:        opt.Name,
				Description: opt.Description,
			})
		}
		out.Platforms = append(out.Platforms, pl)
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *Controller) toResponse(l *core.OnboardingLink) dto.LinkResponse {
	return dto.LinkResponse{
		Token:     l.Token,
		URL:       strings.TrimRight(c.cfg.App.BaseURL, "/") + "/onboard/" + l.Token,
		Platforms: l.Platforms,
		Note:      l.Note,
		Status:    string(l.Status),
		CreatedBy: l.CreatedBy,
		ExpiresAt: l.ExpiresAt,
		UsedBy:    l.UsedBy,
		UsedAt:    l.UsedAt,
		CreatedAt: l.CreatedAt,
	}
}
