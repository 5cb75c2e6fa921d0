package worker

import (
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
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

// WithCatalog sets the catalog used to label competencies in e-mails.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(w *Worker) {
		if cat != nil {
			w.catalog = cat
		}
	}
}

// WithStats shares delivery counters, used by the pool.
func WithStats(s *Stats) Option {
	return func(w *Worker) {
		if s != nil {
			w.stats = s
		}
	}
}
