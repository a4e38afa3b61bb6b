package middlewares

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/jcmexdev/bakeryspot/internal/domain/user"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenParser validates a bearer token and returns the identity it carries.
type TokenParser interface {
	ParseToken(token string) (user.Identity, error)
}

// IdentityFrom extracts the authenticated identity placed by Authenticate.
func IdentityFrom(ctx context.Context) (user.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(user.Identity)
	return ident, ok
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// attaches the resulting identity to the request context.
func Authenticate(parser TokenParser, onError func(w http.ResponseWriter, status int, code, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				onError(w, http.StatusUnauthorized, "missing_token", "authorization header with bearer token is required")
				return
			}

			ident, err := parser.ParseToken(token)
			if err != nil {
				onError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated callers whose role is not in the allow
// list. It must be mounted after Authenticate.
func RequireRoles(onError func(w http.ResponseWriter, status int, code, msg string), roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFrom(r.Context())
			if !ok {
				onError(w, http.StatusUnauthorized, "missing_token", "authorization required")
				return
			}
			if !slices.Contains(roles, ident.Role) {
				onError(w, http.StatusForbidden, "forbidden", "insufficient privileges for this endpoint")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
