package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/retrolist/games-service/internal/api/response"
)

type contextKey string

// OwnerContextKey holds the authenticated caller identity (an email) set by
// the Auth middleware.
const OwnerContextKey contextKey = "owner"

// userEmailHeader carries the caller identity. The gateway in front of this
// service verifies the user's token and forwards the email; the service
// trusts it only together with the shared API key.
const userEmailHeader = "X-User-Email"

// Auth validates the shared API key from the Authorization header and
// extracts the caller identity from X-User-Email.
func Auth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.RespondUnauthorized(w, "Missing Authorization header")
				return
			}

			// Expected format: "Bearer <api-key>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.RespondUnauthorized(w, "Invalid Authorization header format. Expected: Bearer <api-key>")
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(apiKey)) != 1 {
				response.RespondUnauthorized(w, "Invalid API key")
				return
			}

			owner := strings.TrimSpace(r.Header.Get(userEmailHeader))
			if owner == "" {
				response.RespondUnauthorized(w, "Missing "+userEmailHeader+" header")
				return
			}

			ctx := context.WithValue(r.Context(), OwnerContextKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext returns the authenticated caller identity, or "" when the
// request did not pass through Auth.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(OwnerContextKey).(string)

	return owner
}
