// Package worker drains completion events and keeps the published
// leaderboard up to date.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/wikidle/internal/adapters/mq/queue"
	"github.com/okian/wikidle/internal/domain/leaderboard"
	"github.com/okian/wikidle/pkg/logger"
	"github.com/okian/wikidle/pkg/metrics"
)

const (
	defaultCoalesce     = 32
	poolShutdownTimeout = 30 * time.Second
)

// Refresher recomputes the leaderboard from the current result rows.
type Refresher interface {
	Refresh(ctx context.Context) (leaderboard.Board, error)
}

// Publisher pushes a freshly computed leaderboard to its consumers.
type Publisher interface {
	Publish(ctx context.Context, board leaderboard.Board)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// Worker turns completion events into leaderboard refreshes. Events that
// are already waiting when a refresh starts are folded into it.
type Worker struct {
	queue     Queue
	refresher Refresher
	publisher Publisher
	name      string
	coalesce  int
	active    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// New creates a worker.
func New(q Queue, refresher Refresher, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		refresher: refresher,
		publisher: publisher,
		name:      "worker",
		coalesce:  defaultCoalesce,
		active:    &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("refresh-worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes events until ctx is done, Shutdown is called or the queue
// is closed.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			folded := 1 + w.drain(events)
			if err := w.process(ctx, folded); err != nil {
				w.logger.Error(ctx, "leaderboard refresh failed",
					logger.String("worker", w.name),
					logger.String("result_id", e.ResultID),
					logger.Error(err))
			}
		}
	}
}

// drain consumes up to coalesce-1 already queued events without blocking.
func (w *Worker) drain(events <-chan queue.Event) int {
	n := 0
	for n < w.coalesce-1 {
		select {
		case _, ok := <-events:
			if !ok {
				return n
			}
			metrics.RecordQueueDequeue()
			n++
		default:
			return n
		}
	}
	return n
}

func (w *Worker) process(ctx context.Context, folded int) error {
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
	}()

	board, err := w.refresher.Refresh(ctx)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "refresh_error")
		return fmt.Errorf("refresh after %d completions: %w", folded, err)
	}
	if w.publisher != nil {
		w.publisher.Publish(ctx, board)
	}

	metrics.RecordWorkerProcessed(float64(time.Since(start).Milliseconds()))
	w.logger.Debug(ctx, "leaderboard refreshed",
		logger.String("worker", w.name),
		logger.Int("completions", folded))
	return nil
}

// Shutdown stops the worker and waits for the current refresh to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers (at least one).
func NewPool(workerCount int, q Queue, refresher Refresher, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("refresh-pool"),
	}
	active := &atomic.Int64{}
	for i := range p.workers {
		w := New(q, refresher, publisher, append(opts, WithName("worker-"+strconv.Itoa(i)))...)
		w.active = active
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue when it supports it, then waits for workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}
