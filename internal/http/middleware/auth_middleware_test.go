package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/univdir/universities-api/internal/security"
)

func TestAuthMiddleware(t *testing.T) {
	jwtManager := security.NewJWTManager("test-issuer", "0123456789abcdef0123456789abcdef", time.Hour)
	protected := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from context")
		} else if claims.Email != "ada@example.com" {
			t.Errorf("unexpected claims email %q", claims.Email)
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtManager.Sign("ada@example.com", "Ada", "Lovelace")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other := security.NewJWTManager("other-issuer", "0123456789abcdef0123456789abcdef", time.Hour)
		token, err := other.Sign("ada@example.com", "Ada", "Lovelace")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
