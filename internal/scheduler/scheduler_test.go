package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context) error {
	r.runs.Add(1)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", "UTC", &countingRunner{}, testLogger()); err == nil {
		t.Fatal("expected error for malformed spec")
	}
}

func TestNewRejectsBadTimezone(t *testing.T) {
	if _, err := New("0 0 5 * * *", "Mars/Olympus", &countingRunner{}, testLogger()); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestSchedulerFires(t *testing.T) {
	r := &countingRunner{}
	s, err := New("* * * * * *", "UTC", r, testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	for r.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("runner never fired")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestSchedulerStop(t *testing.T) {
	r := &countingRunner{}
	s, err := New("0 0 5 * * *", "America/Sao_Paulo", r, testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start()
	s.Stop()
	if got := r.runs.Load(); got != 0 {
		t.Fatalf("expected no runs for a daily schedule, got %d", got)
	}
}
