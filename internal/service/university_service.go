package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/repository"
)

type UniversityInput struct {
	Name          string   `json:"name"`
	Domains       []string `json:"domains"`
	Country       string   `json:"country"`
	AlphaTwoCode  string   `json:"alpha_two_code"`
	StateProvince string   `json:"state-province"`
	WebPages      []string `json:"web_pages"`
}

type UniversityService struct {
	repo   repository.UniversityRepository
	cache  ListCache
	logger *slog.Logger
}

func NewUniversityService(repo repository.UniversityRepository, cache ListCache, logger *slog.Logger) *UniversityService {
	if cache == nil {
		cache = NoopListCache{}
	}
	return &UniversityService{repo: repo, cache: cache, logger: logger}
}

func (s *UniversityService) Create(ctx context.Context, in UniversityInput) (*domain.University, error) {
	start := time.Now()
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		return nil, apperr.BadRequest("country is required")
	}

	u := &domain.University{
		Name:          in.Name,
		Domains:       in.Domains,
		Country:       in.Country,
		AlphaTwoCode:  in.AlphaTwoCode,
		StateProvince: in.StateProvince,
		WebPages:      in.WebPages,
	}
	if err := s.repo.Create(u); err != nil {
		if errors.Is(err, repository.ErrUniversityExists) {
			observability.RecordUniversityOperation(ctx, "create", "conflict", time.Since(start))
			return nil, apperr.Conflict("university already exists")
		}
		observability.RecordUniversityOperation(ctx, "create", "error", time.Since(start))
		return nil, fmt.Errorf("create university: %w", err)
	}
	s.cache.Invalidate(ctx)
	observability.RecordUniversityOperation(ctx, "create", "success", time.Since(start))
	return u, nil
}

func (s *UniversityService) GetAll(ctx context.Context, country string, page repository.PageRequest) (*repository.PageResult[domain.University], error) {
	start := time.Now()
	if cached, ok := s.cache.Get(ctx, country, page); ok {
		observability.RecordUniversityOperation(ctx, "get_all", "cache_hit", time.Since(start))
		return cached, nil
	}

	res, err := s.repo.ListPaged(country, page)
	if err != nil {
		observability.RecordUniversityOperation(ctx, "get_all", "error", time.Since(start))
		return nil, fmt.Errorf("list universities: %w", err)
	}
	s.cache.Set(ctx, country, page, res)
	observability.RecordUniversityOperation(ctx, "get_all", "success", time.Since(start))
	return res, nil
}

func (s *UniversityService) GetByID(ctx context.Context, id uint) (*domain.University, error) {
	start := time.Now()
	u, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUniversityNotFound) {
			observability.RecordUniversityOperation(ctx, "get_by_id", "not_found", time.Since(start))
			return nil, apperr.NotFound("university not found")
		}
		return nil, fmt.Errorf("find university: %w", err)
	}
	observability.RecordUniversityOperation(ctx, "get_by_id", "success", time.Since(start))
	return u, nil
}

func (s *UniversityService) GetByName(ctx context.Context, name string) (*domain.University, error) {
	u, err := s.repo.FindByName(name)
	if err != nil {
		if errors.Is(err, repository.ErrUniversityNotFound) {
			return nil, apperr.NotFound("university not found")
		}
		return nil, fmt.Errorf("find university by name: %w", err)
	}
	return u, nil
}

// Update replaces the mutable catalog fields: name, domains and web
// pages. Location fields are fixed once created.
func (s *UniversityService) Update(ctx context.Context, id uint, in UniversityInput) (*domain.University, error) {
	start := time.Now()
	u, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUniversityNotFound) {
			observability.RecordUniversityOperation(ctx, "update", "not_found", time.Since(start))
			return nil, apperr.NotFound("university not found")
		}
		return nil, fmt.Errorf("find university: %w", err)
	}

	changed := false
	if in.Name != "" {
		u.Name = in.Name
		changed = true
	}
	if in.Domains != nil {
		u.Domains = in.Domains
		changed = true
	}
	if in.WebPages != nil {
		u.WebPages = in.WebPages
		changed = true
	}
	if !changed {
		return nil, apperr.BadRequest("no updatable fields provided")
	}

	if err := s.repo.Update(u); err != nil {
		observability.RecordUniversityOperation(ctx, "update", "error", time.Since(start))
		return nil, fmt.Errorf("update university: %w", err)
	}
	s.cache.Invalidate(ctx)
	observability.RecordUniversityOperation(ctx, "update", "success", time.Since(start))
	return u, nil
}

func (s *UniversityService) Remove(ctx context.Context, id uint) error {
	start := time.Now()
	if err := s.repo.DeleteByID(id); err != nil {
		if errors.Is(err, repository.ErrUniversityNotFound) {
			observability.RecordUniversityOperation(ctx, "remove", "not_found", time.Since(start))
			return apperr.NotFound("university not found")
		}
		observability.RecordUniversityOperation(ctx, "remove", "error", time.Since(start))
		return fmt.Errorf("delete university: %w", err)
	}
	s.cache.Invalidate(ctx)
	observability.RecordUniversityOperation(ctx, "remove", "success", time.Since(start))
	return nil
}
