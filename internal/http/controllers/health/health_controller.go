// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/clientlinkhq/clientlink/internal/cache"
	"github.com/clientlinkhq/clientlink/internal/http/helpers"
	"github.com/clientlinkhq/clientlink/internal/store/core"
)

type Controller struct {
	Repo  core.Repository
	Cache cache.Client
}

func NewController(repo core.Repository, c cache.Client) *Controller {
	return &Controller{Repo: repo, Cache: c}
}

// Healthz reports process liveness.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports dependency readiness.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if err := c.Repo.Ping(ctx); err != nil {
		checks["store"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if c.Cache != nil {
		if err := c.Cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "ok"
		}
	}

	helpers.WriteJSON(w, status, checks)
}
