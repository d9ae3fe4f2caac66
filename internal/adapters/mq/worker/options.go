package worker

import (
	"github.com/okian/plantcard/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithAppliedHook registers a callback run after an update changed the stored state.
func WithAppliedHook(hook AppliedHook) Option {
	return func(w *InMemoryWorker) {
		if hook != nil {
			w.onApplied = hook
		}
	}
}
