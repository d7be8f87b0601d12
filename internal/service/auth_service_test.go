package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/security"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "ada@example.com", "correct-horse-battery")

	t.Run("success", func(t *testing.T) {
		token, err := env.auth.Login(ctx, "ada@example.com", "correct-horse-battery")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if token == "" {
			t.Fatal("expected a signed token")
		}
	})

	t.Run("records last access", func(t *testing.T) {
		u, err := env.users.FindByEmail("ada@example.com")
		if err != nil {
			t.Fatalf("find user: %v", err)
		}
		cred, err := env.credentials.FindByUserID(u.ID)
		if err != nil {
			t.Fatalf("find credential: %v", err)
		}
		if cred.LastAccess == nil {
			t.Fatal("expected last access stamped after login")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "ada@example.com", "wrong")
		if got := apperr.StatusOf(err); got != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d (%v)", got, err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "nobody@example.com", "whatever")
		if got := apperr.StatusOf(err); got != http.StatusNotFound {
			t.Fatalf("expected 404, got %d (%v)", got, err)
		}
	})

	t.Run("user without credential", func(t *testing.T) {
		if err := env.users.Create(&domain.User{FirstName: "No", LastName: "Cred", Email: "nocred@example.com"}); err != nil {
			t.Fatalf("create user: %v", err)
		}
		_, err := env.auth.Login(ctx, "nocred@example.com", "whatever")
		if got := apperr.StatusOf(err); got != http.StatusNotFound {
			t.Fatalf("expected 404, got %d (%v)", got, err)
		}
	})
}

func TestRequestResetPasswordToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "grace@example.com", "strong-password-1")

	t.Run("first issuance includes name", func(t *testing.T) {
		res, err := env.auth.RequestResetPasswordToken(ctx, "grace@example.com")
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if res.Token == "" {
			t.Fatal("expected a token")
		}
		if res.Name != "Test User" {
			t.Fatalf("expected full name on first issuance, got %q", res.Name)
		}
	})

	t.Run("resend inside cooldown rejected", func(t *testing.T) {
		_, err := env.auth.RequestResetPasswordToken(ctx, "grace@example.com")
		if got := apperr.StatusOf(err); got != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (%v)", got, err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.RequestResetPasswordToken(ctx, "ghost@example.com")
		if got := apperr.StatusOf(err); got != http.StatusNotFound {
			t.Fatalf("expected 404, got %d (%v)", got, err)
		}
	})
}

func TestRequestResetPasswordTokenResendAfterCooldown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerUser(t, "alan@example.com", "strong-password-1")

	// Plant a token whose resend window has already passed.
	old := &domain.ResetToken{
		UserID:    u.ID,
		Token:     "stale-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		ResendAt:  time.Now().UTC().Add(-time.Minute),
	}
	if err := env.resetTokens.Create(old); err != nil {
		t.Fatalf("plant token: %v", err)
	}

	res, err := env.auth.RequestResetPasswordToken(ctx, "alan@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Name != "" {
		t.Fatalf("resend must not include the name, got %q", res.Name)
	}
	if res.Token == "stale-token" {
		t.Fatal("expected a fresh token value")
	}

	replaced, err := env.resetTokens.FindByUserID(u.ID)
	if err != nil {
		t.Fatalf("find token: %v", err)
	}
	if replaced.Token != res.Token {
		t.Fatal("old token must be replaced, not kept alongside")
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "rosa@example.com", "original-password")

	issued, err := env.auth.RequestResetPasswordToken(ctx, "rosa@example.com")
	if err != nil {
		t.Fatalf("request token: %v", err)
	}

	name, err := env.auth.ChangePassword(ctx, ChangePasswordInput{
		Email:           "rosa@example.com",
		CurrentPassword: "original-password",
		NewPassword:     "brand-new-password",
		Token:           issued.Token,
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if name != "Test User" {
		t.Fatalf("expected full name, got %q", name)
	}

	if _, err := env.auth.Login(ctx, "rosa@example.com", "original-password"); err == nil {
		t.Fatal("old password must stop working")
	}
	if _, err := env.auth.Login(ctx, "rosa@example.com", "brand-new-password"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}

	// Token is single use.
	_, err = env.auth.ChangePassword(ctx, ChangePasswordInput{
		Email:           "rosa@example.com",
		CurrentPassword: "brand-new-password",
		NewPassword:     "another-password",
		Token:           issued.Token,
	})
	if got := apperr.StatusOf(err); got != http.StatusNotFound {
		t.Fatalf("expected 404 for consumed token, got %d (%v)", got, err)
	}
}

func TestChangePasswordRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerUser(t, "alan2@example.com", "original-password")

	value, err := security.NewRandomString(64)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	expired := &domain.ResetToken{
		UserID:    u.ID,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		ResendAt:  time.Now().UTC().Add(-time.Hour),
	}
	if err := env.resetTokens.Create(expired); err != nil {
		t.Fatalf("plant token: %v", err)
	}

	_, err = env.auth.ChangePassword(ctx, ChangePasswordInput{
		Email:           "alan2@example.com",
		CurrentPassword: "original-password",
		NewPassword:     "whatever-new-pass",
		Token:           value,
	})
	if got := apperr.StatusOf(err); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for expired token, got %d (%v)", got, err)
	}
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "wrongpass@example.com", "original-password")

	issued, err := env.auth.RequestResetPasswordToken(ctx, "wrongpass@example.com")
	if err != nil {
		t.Fatalf("request token: %v", err)
	}

	_, err = env.auth.ChangePassword(ctx, ChangePasswordInput{
		Email:           "wrongpass@example.com",
		CurrentPassword: "not-the-password",
		NewPassword:     "whatever-new-pass",
		Token:           issued.Token,
	})
	if got := apperr.StatusOf(err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%v)", got, err)
	}
}
