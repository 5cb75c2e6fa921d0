package main

import (
	"context"
	"fmt"

	"github.com/impactwon/checkin/internal/adapters/mq/queue"
	"github.com/impactwon/checkin/internal/adapters/mq/worker"
	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/adapters/repository/postgres"
	"github.com/impactwon/checkin/internal/adapters/repository/sqlite"
	"github.com/impactwon/checkin/internal/adapters/sessionstore"
	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/config"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/pkg/logger"
)

// openStore opens the assessment store selected by cfg.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		return sqlite.Open(ctx, cfg.DatabaseDSN)
	case config.StorePostgres:
		return postgres.Open(ctx, cfg.DatabaseDSN)
	default:
		return repository.NewMemoryStore(), nil
	}
}

// openSessions opens the session store selected by cfg.
func openSessions(ctx context.Context, cfg *config.Config) (sessionstore.Store, error) {
	if cfg.SessionDriver == config.SessionRedis {
		return sessionstore.OpenRedis(ctx, cfg.RedisURL, sessionstore.WithTTL(cfg.SessionTTL))
	}
	return sessionstore.NewMemory(sessionstore.WithTTL(cfg.SessionTTL)), nil
}

// openQueue returns the submitted-event transport selected by cfg, or nil
// when notifications are off.
func openQueue(cfg *config.Config, log logger.Logger) (queue.Queue, error) {
	opts := []queue.Option{
		queue.WithTopic(cfg.NotificationTopic),
		queue.WithLogger(log.Named("queue")),
	}
	switch cfg.Notifier {
	case config.NotifierNone:
		return nil, nil
	case config.NotifierKafka:
		return queue.NewKafka(cfg.KafkaBrokers, opts...)
	default:
		return queue.NewGoChannel(opts...), nil
	}
}

// buildService wires every collaborator named by cfg into a Service. Offline
// commands pass offline to skip the stores and the queue.
func buildService(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, log logger.Logger, offline bool) (*service.Service, error) {
	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithCatalog(cat),
		service.WithCCEmail(cfg.CCEmail),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithOrphanPolicy(scoring.ParseOrphanPolicy(cfg.OrphanPolicy)),
		service.WithRadarDefaults(service.RadarDefaults{
			Size:        cfg.RadarSize,
			Levels:      cfg.RadarLevels,
			Margin:      cfg.RadarMargin,
			LabelOffset: cfg.RadarLabelOffset,
		}),
	}
	if offline {
		return service.New(append(opts, service.WithPublisher(nil))...), nil
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open %s sessions: %w", cfg.SessionDriver, err)
	}
	q, err := openQueue(cfg, log)
	if err != nil {
		_ = store.Close()
		_ = sessions.Close()
		return nil, fmt.Errorf("open %s notifier: %w", cfg.Notifier, err)
	}

	opts = append(opts,
		service.WithStore(store),
		service.WithSessionStore(sessions),
		service.WithPublisher(q),
		service.WithMailer(worker.NewLogMailer(log.Named("mailer"))),
		service.WithWorkerCount(cfg.MailWorkers),
	)
	return service.New(opts...), nil
}
