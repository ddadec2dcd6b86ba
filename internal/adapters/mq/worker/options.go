package worker

import (
	"github.com/okian/mapty/pkg/logger"
)

// Option applies a configuration option to the Sequential worker.
type Option func(*Sequential)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Sequential) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *Sequential) {
		if logger != nil {
			w.logger = logger
		}
	}
}
