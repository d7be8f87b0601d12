package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newUniversityService(t *testing.T, cache ListCache) *UniversityService {
	t.Helper()
	repo := repository.NewUniversityRepository(newTestDB(t))
	return NewUniversityService(repo, cache, testLogger())
}

func TestUniversityServiceCreate(t *testing.T) {
	svc := newUniversityService(t, nil)
	ctx := context.Background()

	in := UniversityInput{Name: "Universidade Alfa", Country: "brasil", Domains: []string{"alfa.br"}}
	u, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected assigned id")
	}

	if _, err := svc.Create(ctx, in); apperr.StatusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %v", err)
	}

	if _, err := svc.Create(ctx, UniversityInput{Country: "peru"}); apperr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %v", err)
	}
	if _, err := svc.Create(ctx, UniversityInput{Name: "Sin Pais"}); apperr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing country, got %v", err)
	}
}

func TestUniversityServiceGetters(t *testing.T) {
	svc := newUniversityService(t, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, UniversityInput{Name: "Universidad Beta", Country: "chile"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got, err := svc.GetByID(ctx, u.ID); err != nil || got.Name != "Universidad Beta" {
		t.Fatalf("get by id: %v", err)
	}
	if _, err := svc.GetByID(ctx, 9999); apperr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	if got, err := svc.GetByName(ctx, "Universidad Beta"); err != nil || got.ID != u.ID {
		t.Fatalf("get by name: %v", err)
	}
	if _, err := svc.GetByName(ctx, "missing"); apperr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestUniversityServiceUpdate(t *testing.T) {
	svc := newUniversityService(t, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, UniversityInput{Name: "Universidad Gama", Country: "peru"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(ctx, u.ID, UniversityInput{
		Name:     "Universidad Gama Renombrada",
		WebPages: []string{"https://gama.pe"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Universidad Gama Renombrada" || len(got.WebPages) != 1 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Country != "peru" {
		t.Fatalf("country must stay fixed, got %q", got.Country)
	}

	if _, err := svc.Update(ctx, 9999, UniversityInput{Name: "x"}); apperr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if _, err := svc.Update(ctx, u.ID, UniversityInput{}); apperr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %v", err)
	}
}

func TestUniversityServiceRemove(t *testing.T) {
	svc := newUniversityService(t, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, UniversityInput{Name: "Universidad Delta", Country: "uruguay"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Remove(ctx, u.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ctx, u.ID); apperr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat remove, got %v", err)
	}
}

func TestUniversityServiceListCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisListCache(client, "test", time.Minute, testLogger())

	svc := newUniversityService(t, cache)
	ctx := context.Background()

	if _, err := svc.Create(ctx, UniversityInput{Name: "Cacheada", Country: "brasil"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	page := repository.PageRequest{Page: 1, Limit: 20}
	first, err := svc.GetAll(ctx, "", page)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if first.Total != 1 {
		t.Fatalf("expected total 1, got %d", first.Total)
	}

	// Second read must come from the cache.
	if _, ok := cache.Get(ctx, "", page); !ok {
		t.Fatal("expected page cached after first read")
	}
	second, err := svc.GetAll(ctx, "", page)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if second.Total != first.Total || len(second.Data) != len(first.Data) {
		t.Fatal("cached page differs from the database page")
	}

	// A write invalidates every cached page.
	if _, err := svc.Create(ctx, UniversityInput{Name: "Nova", Country: "chile"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := cache.Get(ctx, "", page); ok {
		t.Fatal("expected cache invalidated after write")
	}

	third, err := svc.GetAll(ctx, "", page)
	if err != nil {
		t.Fatalf("third list: %v", err)
	}
	if third.Total != 2 {
		t.Fatalf("expected total 2 after invalidation, got %d", third.Total)
	}
}
