// Package authorizations exposes the admin read API over persisted
// authorizations.
package authorizations

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/clientlinkhq/clientlink/internal/http/dto/authorizations"
	httperrors "github.com/clientlinkhq/clientlink/internal/http/errors"
	"github.com/clientlinkhq/clientlink/internal/http/helpers"
	svc "github.com/clientlinkhq/clientlink/internal/http/services/authorizations"
	"github.com/clientlinkhq/clientlink/internal/store/core"
)

type Controller struct {
	service svc.Service
}

func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// List handles GET /v1/admin/authorizations?client_id=...
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("client_id is required"))
		return
	}

	auths, err := c.service.ListByClient(r.Context(), clientID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out := dto.ListAuthorizationsResponse{
		Authorizations: make([]dto.AuthorizationResponse, 0, len(auths)),
	}
	for i := range auths {
		out.Authorizations = append(out.Authorizations, toResponse(&auths[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /v1/admin/authorizations/{clientID}/{platform}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	platform := strings.ToLower(chi.URLParam(r, "platform"))

	a, err := c.service.Get(r.Context(), clientID, platform)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(a))
}

func toResponse(a *core.Authorization) dto.AuthorizationResponse {
	return dto.AuthorizationResponse{
		ID:                a.ID,
		ClientID:          a.ClientID,
		Platform:          a.Platform,
		Status:            string(a.Status),
		Scopes:            a.Scopes,
		ProviderUserID:    a.TokenData.ProviderUserID,
		ProviderUserName:  a.TokenData.ProviderUserName,
		ProviderUserEmail: a.TokenData.ProviderUserEmail,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
