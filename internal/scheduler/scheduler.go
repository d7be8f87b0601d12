// Package scheduler triggers the nightly catalog ingestion on a cron
// schedule in a configurable timezone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// Runner is the unit of scheduled work, satisfied by the ingest service.
type Runner interface {
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New builds a scheduler firing job per spec (six-field cron, default
// "0 0 5 * * *" for 5:00 AM) in the given timezone.
func New(spec, timezone string, job Runner, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	c := cron.NewWithLocation(loc)
	err = c.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			logger.Error("scheduled ingestion failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register cron spec %q: %w", spec, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if entries := s.cron.Entries(); len(entries) > 0 {
		s.logger.Info("ingestion scheduled", "next_run", entries[0].Next)
	}
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
