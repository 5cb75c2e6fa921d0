// Package worker dispatches report e-mails for submitted assessments.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/impactwon/checkin/internal/adapters/mq/queue"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/pkg/logger"
	"github.com/impactwon/checkin/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Source is where workers receive deliveries from.
type Source interface {
	Dequeue(ctx context.Context) (<-chan queue.Delivery, error)
}

// Stats counts delivery outcomes.
type Stats struct {
	sent   atomic.Int64
	failed atomic.Int64
}

// Sent returns the number of e-mails handed to the mailer successfully.
func (s *Stats) Sent() int64 { return s.sent.Load() }

// Failed returns the number of events that could not be mailed.
func (s *Stats) Failed() int64 { return s.failed.Load() }

// Worker mails the events it reads from a delivery channel.
type Worker struct {
	mailer  Mailer
	catalog *catalog.Catalog
	name    string
	stats   *Stats

	done chan struct{}

	logger logger.Logger
}

// New creates a worker with configuration options.
func New(mailer Mailer, opts ...Option) *Worker {
	w := &Worker{
		mailer:  mailer,
		catalog: catalog.Default(),
		name:    "worker",
		stats:   &Stats{},
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run handles deliveries until the channel closes or ctx is cancelled.
// Every delivery is acked: a failed e-mail is logged and counted, not retried.
func (w *Worker) Run(ctx context.Context, deliveries <-chan queue.Delivery) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.process(ctx, d); err != nil {
				w.logger.Error(ctx, "error dispatching e-mail",
					logger.String("submission_id", d.Event.SubmissionID),
					logger.Error(err),
				)
			}
			d.Ack()
		}
	}
}

// Done is closed once Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) process(ctx context.Context, d queue.Delivery) error { //nolint:gocritic // hugeParam
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	email, err := BuildEmail(w.catalog, d.Event)
	if err != nil {
		w.fail("invalid_event")
		return err
	}
	if err := w.mailer.Send(ctx, email); err != nil {
		w.fail("send_failed")
		return fmt.Errorf("send report %s: %w", email.SubmissionID, err)
	}
	w.stats.sent.Add(1)
	metrics.RecordEmailSent()
	return nil
}

func (w *Worker) fail(kind string) {
	w.stats.failed.Add(1)
	metrics.RecordEmailFailed()
	metrics.RecordErrorByComponent("worker", kind)
}

// Pool runs several workers on one subscription.
type Pool struct {
	source  Source
	workers []*Worker
	stats   *Stats

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. Options are applied to every
// worker; names are assigned by the pool.
func NewPool(workerCount int, source Source, mailer Mailer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = min(defaultWorkerCount, runtime.NumCPU())
	}
	p := &Pool{
		source:  source,
		workers: make([]*Worker, workerCount),
		stats:   &Stats{},
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append(append([]Option(nil), opts...),
			WithName("worker-"+strconv.Itoa(i)),
			WithStats(p.stats),
		)
		p.workers[i] = New(mailer, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Stats returns the shared delivery counters.
func (p *Pool) Stats() *Stats { return p.stats }

// Start subscribes once and starts every worker on the shared channel.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrStopped
	}
	if p.started {
		return ErrStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	deliveries, err := p.source.Dequeue(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("start worker pool: %w", err)
	}
	p.started = true
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(ctx, deliveries)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
	return nil
}

// Shutdown stops the workers and waits for in-flight e-mails. A pool cannot
// be restarted.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	p.stopped = true
	p.cancel()
	p.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	defer metrics.UpdateWorkerActiveCount(0)
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	return nil
}
