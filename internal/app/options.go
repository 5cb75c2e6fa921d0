package service

import (
	"time"

	"github.com/impactwon/checkin/internal/adapters/mq/queue"
	"github.com/impactwon/checkin/internal/adapters/mq/worker"
	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/adapters/sessionstore"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/pkg/logger"
)

// RadarDefaults are used when a results request leaves a field zero.
type RadarDefaults struct {
	Size        float64
	Levels      int
	Margin      float64
	LabelOffset float64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the competency catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithStore sets where submitted assessments are kept.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSessionStore sets where in-progress sessions are kept.
func WithSessionStore(store sessionstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithPublisher sets the queue submitted events are published to. A nil
// queue disables e-mail notifications.
func WithPublisher(q queue.Queue) Option {
	return func(s *Service) {
		s.queue = q
		s.queueSet = true
	}
}

// WithMailer sets the mailer used by the dispatch workers.
func WithMailer(m worker.Mailer) Option {
	return func(s *Service) {
		if m != nil {
			s.mailer = m
		}
	}
}

// WithWorkerCount sets the number of mail dispatch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithCCEmail sets the address copied on every report.
func WithCCEmail(email string) Option {
	return func(s *Service) {
		s.ccEmail = email
	}
}

// WithRadarDefaults sets the layout used when a request does not override it.
// Zero fields keep their current value.
func WithRadarDefaults(d RadarDefaults) Option {
	return func(s *Service) {
		if d.Size > 0 {
			s.radar.Size = d.Size
		}
		if d.Levels > 0 {
			s.radar.Levels = d.Levels
		}
		if d.Margin > 0 {
			s.radar.Margin = d.Margin
		}
		if d.LabelOffset > 0 {
			s.radar.LabelOffset = d.LabelOffset
		}
	}
}

// WithOrphanPolicy sets how responses that belong to a competency but have no
// question definition are averaged.
func WithOrphanPolicy(p scoring.OrphanPolicy) Option {
	return func(s *Service) {
		s.orphans = p
	}
}

// WithDedupeSize sets how many submission ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock sets the time source for submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
