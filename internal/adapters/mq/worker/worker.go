// Package worker runs the pool that normalizes large uploads in parallel.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ritmo/internal/adapters/mq/queue"
	"github.com/okian/ritmo/pkg/logger"
	"github.com/okian/ritmo/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Queue is what the pool reads jobs from and submits jobs to.
type Queue interface {
	Enqueue(ctx context.Context, j queue.Job) bool
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker fills job slots read off a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in progress.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue Queue
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
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
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	j.Target.Fill(ctx, j.Index)
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	threshold int

	live     atomic.Int32
	idle     chan struct{}
	idleOnce sync.Once
	logger   logger.Logger
}

// NewPool creates a pool of workerCount workers; values < 1 use one worker
// per CPU.
func NewPool(workerCount int, q Queue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     q,
		threshold: defaultThreshold,
		idle:      make(chan struct{}),
		logger:    logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Threshold returns the smallest batch that is fanned out to workers.
func (p *Pool) Threshold() int { return p.threshold }

// Running reports whether any worker loop is still consuming the queue.
func (p *Pool) Running() bool { return p.live.Load() > 0 }

// Start starts all workers. Once every worker has exited the pool stays idle
// and batches are normalized by their callers.
func (p *Pool) Start(ctx context.Context) {
	p.live.Add(int32(len(p.workers)))
	for _, w := range p.workers {
		go func() {
			defer p.exited()
			w.Run(ctx)
		}()
	}
}

func (p *Pool) exited() {
	if p.live.Add(-1) == 0 {
		p.idleOnce.Do(func() { close(p.idle) })
		metrics.UpdateWorkerCount(0)
	}
}

// drain runs whatever jobs are still queued on the calling goroutine.
func (p *Pool) drain(ctx context.Context) {
	jobs := p.queue.Dequeue(ctx)
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			j.Target.Fill(ctx, j.Index)
		default:
			return
		}
	}
}

// Shutdown closes the queue, then waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
