// Package queue serializes university writes through one consumer
// goroutine. Producers enqueue named jobs and block on a completion
// handle; results and tagged domain errors cross back natively, so a
// 409 raised inside a job surfaces to the producing handler unchanged.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/univdir/universities-api/internal/apperr"
	"github.com/univdir/universities-api/internal/observability"

	"github.com/google/uuid"
)

var (
	ErrQueueClosed = errors.New("queue closed")
	ErrQueueFull   = errors.New("queue full")
)

type outcome struct {
	value any
	err   error
}

type job struct {
	id       string
	name     string
	run      func(ctx context.Context) (any, error)
	done     chan outcome
	enqueued time.Time
}

type Queue struct {
	jobs        chan *job
	waitTimeout time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	closed  bool
	stopped chan struct{}
}

func New(capacity int, waitTimeout time.Duration, logger *slog.Logger) *Queue {
	return &Queue{
		jobs:        make(chan *job, capacity),
		waitTimeout: waitTimeout,
		logger:      logger,
		stopped:     make(chan struct{}),
	}
}

// Start runs the consumer loop until Close is called. Exactly one
// consumer drains the channel, which is what serializes the writes.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		defer close(q.stopped)
		for j := range q.jobs {
			q.consume(ctx, j)
		}
	}()
}

func (q *Queue) consume(ctx context.Context, j *job) {
	observability.RecordQueueDepth(ctx, -1)
	observability.RecordQueueWait(ctx, j.name, time.Since(j.enqueued))

	value, err := j.run(ctx)
	if err != nil && !apperr.IsDomain(err) {
		q.logger.Error("queue job failed",
			"job_id", j.id,
			"job", j.name,
			"error", err,
		)
	}
	j.done <- outcome{value: value, err: err}
}

// Submit enqueues a named job and blocks until it completes or the wait
// budget runs out. A full queue rejects immediately rather than stalling
// the HTTP handler.
func (q *Queue) Submit(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}
	j := &job{
		id:       uuid.New().String(),
		name:     name,
		run:      fn,
		done:     make(chan outcome, 1),
		enqueued: time.Now(),
	}
	select {
	case q.jobs <- j:
		q.mu.Unlock()
	default:
		q.mu.Unlock()
		return nil, ErrQueueFull
	}
	observability.RecordQueueDepth(ctx, 1)

	timer := time.NewTimer(q.waitTimeout)
	defer timer.Stop()
	select {
	case out := <-j.done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		q.logger.Error("queue job timed out", "job_id", j.id, "job", name, "timeout", q.waitTimeout)
		return nil, apperr.Internal("operation timed out")
	}
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.stopped
}

// Await is the typed front for Submit.
func Await[T any](ctx context.Context, q *Queue, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	res, err := q.Submit(ctx, name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, apperr.Internal("unexpected job result type")
	}
	return v, nil
}
