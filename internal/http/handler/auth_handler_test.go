package handler

import (
	"net/http"
	"testing"
)

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "ada@example.com", "correct-horse-battery")

	t.Run("answers 202 with token", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/", "", map[string]string{
			"email":    "ada@example.com",
			"password": "correct-horse-battery",
		})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d body=%s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["token"] == "" || body["token"] == nil {
			t.Fatal("expected token in response")
		}
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/", "", map[string]string{
			"email":    "ada@example.com",
			"password": "nope",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/", "", map[string]string{
			"email":    "ghost@example.com",
			"password": "whatever",
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("missing fields is 400", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/", "", map[string]string{"email": "ada@example.com"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestForgotPasswordEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "grace@example.com", "strong-password-1")

	t.Run("first request returns token and name", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
			"email": "grace@example.com",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["token"] == nil {
			t.Fatal("expected token")
		}
		if body["name"] != "Test User" {
			t.Fatalf("expected name on first issuance, got %v", body["name"])
		}
	})

	t.Run("resend inside cooldown is 400", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
			"email": "grace@example.com",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
			"email": "ghost@example.com",
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "rosa@example.com", "original-password")

	issued := srv.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "rosa@example.com",
	})
	if issued.Code != http.StatusOK {
		t.Fatalf("issue token: %d", issued.Code)
	}
	token := decodeBody(t, issued)["token"].(string)

	rec := srv.do(t, http.MethodPost, "/api/auth/change-password", "", map[string]string{
		"email":           "rosa@example.com",
		"currentPassword": "original-password",
		"newPassword":     "brand-new-password",
		"token":           token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["name"] != "Test User" {
		t.Fatal("expected full name in response")
	}

	// New password works, old one does not.
	if rec := srv.do(t, http.MethodPost, "/api/auth/", "", map[string]string{
		"email": "rosa@example.com", "password": "brand-new-password",
	}); rec.Code != http.StatusAccepted {
		t.Fatalf("new password login: expected 202, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/api/auth/", "", map[string]string{
		"email": "rosa@example.com", "password": "original-password",
	}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password login: expected 401, got %d", rec.Code)
	}
}
