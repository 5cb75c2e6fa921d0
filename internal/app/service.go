// Package service provides the assessment service behind the HTTP API and
// the CLI: sessions, scoring, results, and submission.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/impactwon/checkin/internal/adapters/mq/queue"
	"github.com/impactwon/checkin/internal/adapters/mq/worker"
	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/adapters/sessionstore"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/dedupe"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/radar"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
	"github.com/impactwon/checkin/pkg/logger"
	"github.com/impactwon/checkin/pkg/metrics"
)

// DefaultCCEmail is copied on every report unless configured otherwise.
const DefaultCCEmail = "sven@impactwon.com"

const (
	defaultWorkerCount = 2
	defaultDedupeSize  = 10_000
	lockStripes        = 64
)

// SessionView is a session snapshot with its progress through the catalog.
type SessionView struct {
	session.Snapshot
	Progress session.Progress `json:"progress"`
}

// Service implements the assessment flow.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *catalog.Catalog
	aggregator *scoring.Aggregator
	store      repository.Store
	sessions   sessionstore.Store
	queue      queue.Queue
	queueSet   bool
	mailer     worker.Mailer
	pool       *worker.Pool
	deduper    dedupe.Deduper[model.Result]
	validate   *validator.Validate

	// Configuration
	ccEmail     string
	radar       RadarDefaults
	orphans     scoring.OrphanPolicy
	dedupeSize  int
	workerCount int
	now         func() time.Time

	// session mutations are serialized per id
	locks [lockStripes]sync.Mutex

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a Service. Unset collaborators default to in-memory ones.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:     catalog.Default(),
		ccEmail:     DefaultCCEmail,
		dedupeSize:  defaultDedupeSize,
		workerCount: defaultWorkerCount,
		now:         time.Now,
		validate:    validator.New(),
		radar: RadarDefaults{
			Size:        radar.DefaultSize,
			Levels:      radar.DefaultLevels,
			Margin:      radar.DefaultMargin,
			LabelOffset: radar.DefaultLabelOffset,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.sessions == nil {
		s.sessions = sessionstore.NewMemory()
	}
	if !s.queueSet {
		s.queue = queue.NewGoChannel(queue.WithLogger(s.logger.Named("queue")))
	}
	s.aggregator = scoring.NewAggregator(scoring.WithOrphanPolicy(s.orphans))
	s.deduper = dedupe.NewInMemoryDeduper[model.Result](dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Catalog returns the catalog in use.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Store returns the assessment store.
func (s *Service) Store() repository.Store { return s.store }

// Start starts the mail dispatch workers when the queue can be consumed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting assessment service...")

	if src, ok := s.queue.(worker.Source); ok {
		if s.mailer == nil {
			s.mailer = worker.NewLogMailer(s.logger.Named("mailer"))
		}
		s.pool = worker.NewPool(s.workerCount, src, s.mailer,
			worker.WithCatalog(s.catalog),
			worker.WithLogger(s.logger.Named("worker")),
		)
		if err := s.pool.Start(ctx); err != nil {
			return fmt.Errorf("start mail workers: %w", err)
		}
	}

	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("competencies", len(s.catalog.Competencies)),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("orphanPolicy", s.orphans.String()),
		logger.Bool("notifications", s.queue != nil),
	)
	return nil
}

// Stop shuts down the workers and closes every collaborator.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping assessment service...")

	var errs []error
	if s.pool != nil {
		errs = append(errs, s.pool.Shutdown(ctx))
	}
	if s.queue != nil {
		errs = append(errs, s.queue.Close())
	}
	errs = append(errs, s.sessions.Close(), s.store.Close())

	s.started = false
	s.logger.Info(ctx, "assessment service stopped")
	return errors.Join(errs...)
}

// StartSession opens a new assessment. user may be nil and set later.
func (s *Service) StartSession(ctx context.Context, user *session.UserInfo) (*SessionView, error) {
	sess := session.New(uuid.NewString())
	if user != nil {
		if err := s.validateUser(*user); err != nil {
			return nil, err
		}
		sess.SetUser(*user)
	}
	snap := sess.Snapshot()
	if err := s.sessions.Save(ctx, snap); err != nil {
		metrics.RecordErrorByComponent("service", "session_save")
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.RecordSessionStarted()
	s.logger.Debug(ctx, "session started", logger.String("session_id", snap.ID))
	return s.view(sess), nil
}

// GetSession returns a session and its progress.
func (s *Service) GetSession(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// SetUser records or replaces the respondent of a session.
func (s *Service) SetUser(ctx context.Context, id string, user session.UserInfo) (*SessionView, error) {
	if err := s.validateUser(user); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.SetUser(user)
		return nil
	})
}

// Answer validates and upserts responses. Nothing is recorded if any
// response is invalid.
func (s *Service) Answer(ctx context.Context, id string, responses ...scoring.Response) (*SessionView, error) {
	for _, r := range responses {
		if err := session.ValidateResponse(s.catalog, r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
	}
	view, err := s.mutate(ctx, id, func(sess *session.Session) error {
		for _, r := range responses {
			sess.Upsert(r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordResponses(len(responses))
	return view, nil
}

// SetExperience records the 1..5 experience rating.
func (s *Service) SetExperience(ctx context.Context, id string, rating int) (*SessionView, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		if err := sess.SetExperience(rating); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidExperience, err)
		}
		return nil
	})
}

// Abandon discards a session.
func (s *Service) Abandon(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	sess.Reset()
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	metrics.RecordSessionAbandoned()
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"competencies": len(s.catalog.Competencies),
		"questions":    len(s.catalog.QuestionIDs()),
		"dedupeSize":   s.deduper.Size(),
		"orphanPolicy": s.orphans.String(),
		"notify":       s.queue != nil,
	}
	if n, err := s.sessions.Count(ctx); err == nil {
		stats["sessionsActive"] = n
		metrics.UpdateSessionsActive(n)
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["assessmentsStored"] = n
	}
	if s.pool != nil {
		stats["workerCount"] = s.pool.Size()
		stats["emailsSent"] = s.pool.Stats().Sent()
		stats["emailsFailed"] = s.pool.Stats().Failed()
	}
	return stats
}

func (s *Service) validateUser(u session.UserInfo) error {
	if err := s.validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}
	return nil
}

func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Service) load(ctx context.Context, id string) (*session.Session, error) {
	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return session.Restore(snap), nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*session.Session) error) (*SessionView, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess.Snapshot()); err != nil {
		metrics.RecordErrorByComponent("service", "session_save")
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return s.view(sess), nil
}

func (s *Service) view(sess *session.Session) *SessionView {
	return &SessionView{Snapshot: sess.Snapshot(), Progress: sess.Progress(s.catalog)}
}
