package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/univdir/universities-api/internal/directory"
	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/repository"
)

// IngestService refreshes the catalog from the external directory. One
// run fetches every configured country, dedups by exact name (first
// occurrence wins), updates known rows in place and stages the rest,
// then persists the whole batch at once. Any failure aborts the run.
type IngestService struct {
	directory directory.Client
	repo      repository.UniversityRepository
	cache     ListCache
	countries []string
	logger    *slog.Logger
}

func NewIngestService(
	client directory.Client,
	repo repository.UniversityRepository,
	cache ListCache,
	countries []string,
	logger *slog.Logger,
) *IngestService {
	if cache == nil {
		cache = NoopListCache{}
	}
	return &IngestService{
		directory: client,
		repo:      repo,
		cache:     cache,
		countries: countries,
		logger:    logger,
	}
}

func (s *IngestService) Run(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("ingestion run started", "countries", len(s.countries))

	records, err := s.directory.FetchCountries(ctx, s.countries)
	if err != nil {
		observability.RecordIngestRun(ctx, "fetch_failed", time.Since(start))
		return fmt.Errorf("fetch directory: %w", err)
	}
	observability.RecordIngestRecords(ctx, "fetched", int64(len(records)))

	deduped := dedupByName(records)
	observability.RecordIngestRecords(ctx, "deduped", int64(len(deduped)))

	batch := make([]domain.University, 0, len(deduped))
	var created, updated int
	for _, rec := range deduped {
		existing, err := s.repo.FindByName(rec.Name)
		if err != nil && !errors.Is(err, repository.ErrUniversityNotFound) {
			observability.RecordIngestRun(ctx, "lookup_failed", time.Since(start))
			return fmt.Errorf("lookup %q: %w", rec.Name, err)
		}

		u := rec.ToUniversity()
		if existing != nil {
			u.ID = existing.ID
			u.CreatedAt = existing.CreatedAt
			updated++
		} else {
			created++
		}
		batch = append(batch, u)
	}

	if err := s.repo.SaveAll(batch); err != nil {
		observability.RecordIngestRun(ctx, "save_failed", time.Since(start))
		return fmt.Errorf("persist batch: %w", err)
	}
	s.cache.Invalidate(ctx)

	observability.RecordIngestRun(ctx, "success", time.Since(start))
	s.logger.Info("ingestion run finished",
		"fetched", len(records),
		"deduped", len(deduped),
		"created", created,
		"updated", updated,
		"elapsed", time.Since(start),
	)
	return nil
}

// dedupByName keeps the first record seen for each exact name. The
// directory lists some institutions under several countries; the first
// occurrence in fetch order wins.
func dedupByName(records []directory.Record) []directory.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]directory.Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r)
	}
	return out
}
