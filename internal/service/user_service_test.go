package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/domain"
)

func TestUserServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("fresh user", func(t *testing.T) {
		u, err := env.userSvc.Create(ctx, CreateUserInput{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Password:  "strong-password",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := env.credentials.FindByUserID(u.ID); err != nil {
			t.Fatalf("expected credential created: %v", err)
		}
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		_, err := env.userSvc.Create(ctx, CreateUserInput{
			FirstName: "Ada",
			LastName:  "Again",
			Email:     "ada@example.com",
			Password:  "strong-password",
		})
		if got := apperr.StatusOf(err); got != http.StatusConflict {
			t.Fatalf("expected 409, got %d (%v)", got, err)
		}
	})

	t.Run("retrofits credential for seeded user", func(t *testing.T) {
		seeded := &domain.User{FirstName: "Seed", LastName: "Only", Email: "seed@example.com"}
		if err := env.users.Create(seeded); err != nil {
			t.Fatalf("seed user: %v", err)
		}

		got, err := env.userSvc.Create(ctx, CreateUserInput{
			FirstName: "Ignored",
			LastName:  "Ignored",
			Email:     "seed@example.com",
			Password:  "strong-password",
		})
		if err != nil {
			t.Fatalf("retrofit: %v", err)
		}
		if got.ID != seeded.ID {
			t.Fatalf("expected the seeded user back, got id %d", got.ID)
		}
		if got.FirstName != "Seed" {
			t.Fatalf("retrofit must not rewrite the profile, got %q", got.FirstName)
		}
		if _, err := env.credentials.FindByUserID(seeded.ID); err != nil {
			t.Fatalf("expected credential retrofitted: %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		cases := []CreateUserInput{
			{LastName: "x", Email: "a@b.c", Password: "longenough"},
			{FirstName: "x", Email: "a@b.c", Password: "longenough"},
			{FirstName: "x", LastName: "y", Password: "longenough"},
			{FirstName: "x", LastName: "y", Email: "not-an-email", Password: "longenough"},
			{FirstName: "x", LastName: "y", Email: "a@b.c", Password: "short"},
		}
		for i, in := range cases {
			if _, err := env.userSvc.Create(ctx, in); apperr.StatusOf(err) != http.StatusBadRequest {
				t.Fatalf("case %d: expected 400, got %v", i, err)
			}
		}
	})
}

func TestUserServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.registerUser(t, "a@example.com", "strong-password")
	env.registerUser(t, "b@example.com", "strong-password")

	t.Run("profile change", func(t *testing.T) {
		got, err := env.userSvc.Update(ctx, a.ID, UpdateUserInput{FirstName: "Renamed"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.FirstName != "Renamed" {
			t.Fatalf("expected rename, got %q", got.FirstName)
		}
	})

	t.Run("own email returns stored record unchanged", func(t *testing.T) {
		got, err := env.userSvc.Update(ctx, a.ID, UpdateUserInput{
			FirstName: "ShouldNotApply",
			Email:     "a@example.com",
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.FirstName == "ShouldNotApply" {
			t.Fatal("same-email update must short-circuit before applying fields")
		}
	})

	t.Run("foreign email is a conflict", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, a.ID, UpdateUserInput{Email: "b@example.com"})
		if got := apperr.StatusOf(err); got != http.StatusConflict {
			t.Fatalf("expected 409, got %d (%v)", got, err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := env.userSvc.Update(ctx, 9999, UpdateUserInput{FirstName: "X"})
		if got := apperr.StatusOf(err); got != http.StatusNotFound {
			t.Fatalf("expected 404, got %d (%v)", got, err)
		}
	})
}

func TestUserServiceFindAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerUser(t, "find@example.com", "strong-password")

	if got, err := env.userSvc.FindByEmail(ctx, "find@example.com"); err != nil || got.ID != u.ID {
		t.Fatalf("find by email: %v", err)
	}
	if got, err := env.userSvc.FindByID(ctx, u.ID); err != nil || got.Email != "find@example.com" {
		t.Fatalf("find by id: %v", err)
	}

	if err := env.userSvc.Remove(ctx, u.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := env.userSvc.Remove(ctx, u.ID); apperr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat remove, got %v", err)
	}
}
