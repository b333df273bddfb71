package oauth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/clientlinkhq/clientlink/internal/http/dto/oauth"
	svc "github.com/clientlinkhq/clientlink/internal/http/services/oauth"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/validation"
)

// Exchange handles /v1/oauth/{platform}/exchange, the token-exchange
// relay called cross-origin from the browser. The contract:
//   - OPTIONS answers 200 with permissive CORS headers.
//   - Anything but POST is a 405.
//   - Provider responses pass through verbatim, original status
//     preserved on failure.
//
// The confidential client secret is attached server-side and never
// appears in a response.
func (c *Controller) Exchange(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		h.Set("Allow", "POST, OPTIONS")
		writeExchangeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	ctx := r.Context()
	platform := strings.ToLower(chi.URLParam(r, "platform"))
	if !validation.ValidPlatformID(platform) {
		writeExchangeError(w, http.StatusNotFound, "unknown_platform", "")
		return
	}
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("OAuthController.Exchange"),
		logger.Platform(platform),
	)

	var req dto.ExchangeRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeExchangeError(w, http.StatusBadRequest, "invalid_request", "body must be JSON")
		return
	}
	if req.Code == "" || req.RedirectURI == "" {
		writeExchangeError(w, http.StatusBadRequest, "invalid_request", "code and redirectUri are required")
		return
	}

	tr, err := c.exchange.Exchange(ctx, platform, req.Code, req.RedirectURI)
	if err != nil {
		var exErr *providers.ExchangeError
		switch {
		case errors.As(err, &exErr):
			// Provider rejection: forward body and status untouched.
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(exErr.StatusCode)
			_, _ = w.Write([]byte(exErr.Details))
		case errors.Is(err, svc.ErrUnknownPlatform):
			writeExchangeError(w, http.StatusNotFound, "unknown_platform", platform)
		default:
			log.Error("exchange failed", logger.Err(err))
			writeExchangeError(w, http.StatusBadGateway, "exchange_failed", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tr.Raw)
}

func writeExchangeError(w http.ResponseWriter, status int, code, details string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ExchangeErrorResponse{Error: code, Details: details})
}
