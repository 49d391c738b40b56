package worker

import (
	"github.com/okian/wikidle/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithCoalesce caps how many queued completions one refresh may absorb.
// 1 refreshes once per event.
func WithCoalesce(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.coalesce = n
		}
	}
}
