package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clientlinkhq/clientlink/internal/http/errors"
	"github.com/clientlinkhq/clientlink/internal/http/helpers"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/rate"
)

// RateKeyFunc derives the rate limiting key from a request.
type RateKeyFunc func(r *http.Request) string

// IPRateKey keys by caller address.
func IPRateKey(r *http.Request) string {
	return helpers.ClientIP(r)
}

// IPPathRateKey keys by caller address and path.
func IPPathRateKey(r *http.Request) string {
	return helpers.ClientIP(r) + "|" + r.URL.Path
}

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Limiter   rate.Limiter
	KeyFunc   RateKeyFunc
	Whitelist []string // paths excluded from limiting, e.g. /healthz
}

// WithRateLimit enforces the limiter. A limiter failure lets the
// request through.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPPathRateKey
	}

	whitelist := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelist[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelist[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				if res.Reset > 0 {
					resetAt := time.Now().Add(res.Reset).Unix()
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
				}
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
