package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/clientlinkhq/clientlink/internal/observability/logger"
)

type ctxKey string

const ctxRequestIDKey ctxKey = "request_id"

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// WithRequestID assigns each request an id, echoes it in the response
// header and injects a request-scoped logger into the context.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, rid)

			ctx := context.WithValue(r.Context(), ctxRequestIDKey, rid)
			ctx = logger.ToContext(ctx, logger.With(logger.RequestID(rid)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request id, or empty if the middleware was
// not applied.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
