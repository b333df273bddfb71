// Package router wires controllers and middlewares into the HTTP mux.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clientlinkhq/clientlink/internal/config"
	authctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/authorizations"
	healthctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/health"
	linksctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/links"
	oauthctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/oauth"
	mw "github.com/clientlinkhq/clientlink/internal/http/middlewares"
	"github.com/clientlinkhq/clientlink/internal/rate"
)

// Deps contains everything the router mounts.
type Deps struct {
	Config *config.Config

	Health         *healthctrl.Controller
	Links          *linksctrl.Controller
	OAuth          *oauthctrl.Controller
	Authorizations *authctrl.Controller

	// Optional limiters; nil disables that surface's limiting.
	GlobalLimiter   rate.Limiter
	ExchangeLimiter rate.Limiter
	CallbackLimiter rate.Limiter
}

// New builds the API handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithRecover())
	r.Use(mw.WithLogging())
	r.Use(mw.WithSecurityHeaders())
	r.Use(mw.WithRateLimit(mw.RateLimitConfig{
		Limiter:   d.GlobalLimiter,
		Whitelist: []string{"/healthz", "/readyz"},
	}))

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)

	r.Route("/v1", func(r chi.Router) {
		// The relay does its own CORS: it must answer preflights with
		// 200 and permissive headers, and reject non-POST itself.
		r.With(
			mw.WithNoStore(),
			mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: d.ExchangeLimiter,
				KeyFunc: mw.IPRateKey,
			}),
		).HandleFunc("/oauth/{platform}/exchange", d.OAuth.Exchange)

		r.Group(func(r chi.Router) {
			r.Use(mw.WithCORS(d.Config.Server.CORSAllowedOrigins))

			r.Get("/links/{token}", d.Links.Inspect)

			r.Route("/oauth/{platform}", func(r chi.Router) {
				r.Use(mw.WithNoStore())

				r.Post("/start", d.OAuth.Start)

				r.With(mw.WithRateLimit(mw.RateLimitConfig{
					Limiter: d.CallbackLimiter,
					KeyFunc: mw.IPRateKey,
				})).Get("/callback", d.OAuth.Callback)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(mw.RequireAdminKey(d.Config.Admin.APIKeyHash))
				r.Use(mw.WithNoStore())

				r.Post("/links", d.Links.Create)
				r.Get("/links", d.Links.List)
				r.Get("/links/{token}", d.Links.Get)
				r.Delete("/links/{token}", d.Links.Revoke)

				r.Get("/authorizations", d.Authorizations.List)
				r.Get("/authorizations/{clientID}/{platform}", d.Authorizations.Get)

				r.Post("/oauth/{platform}/start", d.OAuth.StartAdmin)
			})
		})
	})

	return r
}
