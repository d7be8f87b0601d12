package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/univdir/universities-api/internal/http/response"
	"github.com/univdir/universities-api/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "auth.claims"

// AuthMiddleware requires a bearer JWT and puts the verified claims on
// the request context.
func AuthMiddleware(jwtManager *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			claims, err := jwtManager.Parse(raw)
			if err != nil {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims set by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return claims, ok
}
