package worker

import (
	"github.com/okian/ritmo/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
			w.logger = w.logger.Named(name)
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithParallelThreshold sets the smallest batch fanned out to workers.
// Smaller batches are normalized inline.
func WithParallelThreshold(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.threshold = n
		}
	}
}
