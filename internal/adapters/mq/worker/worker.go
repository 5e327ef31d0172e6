// Package worker runs per-event ledger replays on a pool of goroutines.
//
// Each job holds one event timeline. Replays of different events share no
// state, so workers never coordinate beyond reading the shared queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/robonalysis/internal/adapters/mq/queue"
	"github.com/okian/robonalysis/internal/domain/ledger"
	"github.com/okian/robonalysis/internal/domain/sequence"
	"github.com/okian/robonalysis/pkg/logger"
	"github.com/okian/robonalysis/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// ReplayFunc replays one timeline.
type ReplayFunc func(t sequence.Timeline) ledger.Result

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// JobQueue is the queue side a Pool needs: workers dequeue and Replay enqueues.
type JobQueue interface {
	Queue
	Enqueue(ctx context.Context, j queue.Job) bool
}

// Worker processes replay jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing replay jobs.
type InMemoryWorker struct {
	queue  Queue
	replay ReplayFunc
	name   string

	shutdown chan struct{}
	stopOnce func()
	done     chan struct{}

	processed *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		replay:    ledger.Replay,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: new(atomic.Int64),
	}
	w.stopOnce = onceCloser(w.shutdown)

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many jobs this worker completed.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) {
	start := time.Now()
	res := w.replay(job.Timeline)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	metrics.RecordReplayLatency(elapsed)
	metrics.RecordLedgerSteps(len(res.Steps), res.Skipped)
	metrics.RecordWorkerProcessingLatency(elapsed)
	w.processed.Add(1)

	if res.Skipped > 0 {
		w.logger.Debug(ctx, "replay skipped unrated matches",
			logger.String("event_id", res.EventID),
			logger.Int("skipped", res.Skipped),
		)
	}

	select {
	case job.Reply <- res:
	default:
		metrics.RecordErrorByComponent("worker", "reply_dropped")
		w.logger.Warn(ctx, "replay result dropped", logger.String("event_id", res.EventID))
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   JobQueue

	logger logger.Logger
}

// NewPool creates a new worker pool. Options are applied to every worker.
func NewPool(workerCount int, q JobQueue, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, workerOpts...)
	}
	pool.logger = pool.workers[0].logger.Named("pool")

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the number of jobs completed across all workers.
func (p *Pool) Processed() int64 {
	var total int64
	for _, w := range p.workers {
		total += w.Processed()
	}
	return total
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Replay submits t and waits for its result. ErrRejected means the caller
// should replay inline.
func (p *Pool) Replay(ctx context.Context, t sequence.Timeline) (ledger.Result, error) {
	job, reply := queue.NewJob(t)
	if !p.queue.Enqueue(ctx, job) {
		return ledger.Result{}, ErrRejected
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return ledger.Result{}, ctx.Err()
	}
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx (or the pool timeout) expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var stuck int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			w.stopOnce()
			stuck++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)

	if stuck > 0 {
		return fmt.Errorf("%w: %d workers still running", ErrStopped, stuck)
	}
	return nil
}

func onceCloser(ch chan struct{}) func() {
	var closed atomic.Bool
	return func() {
		if closed.CompareAndSwap(false, true) {
			close(ch)
		}
	}
}
