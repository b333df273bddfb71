package middlewares

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clientlinkhq/clientlink/internal/http/errors"
)

// AdminKeyHeader carries the admin API key on admin routes.
const AdminKeyHeader = "X-Admin-API-Key"

// RequireAdminKey validates the admin API key against its bcrypt hash.
// An empty hash locks the admin surface entirely.
func RequireAdminKey(apiKeyHash string) Middleware {
	hash := []byte(strings.TrimSpace(apiKeyHash))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(AdminKeyHeader))
			if len(hash) == 0 || key == "" {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("admin api key required"))
				return
			}
			if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("invalid admin api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
