// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - Validation errors wrap ErrInvalidConfig; loading errors wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Backends selectable through configuration.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	SessionMemory = "memory"
	SessionRedis  = "redis"

	NotifierNone      = "none"
	NotifierGoChannel = "gochannel"
	NotifierKafka     = "kafka"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogFile points at a YAML competency catalog. Empty uses the built-in one.
	CatalogFile string `koanf:"catalog_file"`

	// CCEmail is copied on every report e-mail.
	CCEmail string `koanf:"cc_email"`

	// StoreDriver selects where submitted assessments are kept.
	StoreDriver string `koanf:"store_driver"`
	DatabaseDSN string `koanf:"database_dsn"`

	// SessionDriver selects where in-progress sessions live.
	SessionDriver string        `koanf:"session_driver"`
	RedisURL      string        `koanf:"redis_url"`
	SessionTTL    time.Duration `koanf:"session_ttl"`

	// Notifier selects the transport of the submitted event that triggers the e-mail.
	Notifier          string   `koanf:"notifier"`
	KafkaBrokers      []string `koanf:"kafka_brokers"`
	NotificationTopic string   `koanf:"notification_topic"`
	MailWorkers       int      `koanf:"mail_workers"`

	// DedupeSize bounds the number of remembered submission ids.
	DedupeSize int `koanf:"dedupe_size"`

	// Radar defaults used when a results request does not override them.
	RadarSize        float64 `koanf:"radar_size"`
	RadarLevels      int     `koanf:"radar_levels"`
	RadarMargin      float64 `koanf:"radar_margin"`
	RadarLabelOffset float64 `koanf:"radar_label_offset"`

	// OrphanPolicy is "zero" or "exclude".
	OrphanPolicy string `koanf:"orphan_policy"`

	CORSOrigins []string `koanf:"cors_origins"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		CCEmail:           "sven@impactwon.com",
		StoreDriver:       StoreMemory,
		SessionDriver:     SessionMemory,
		SessionTTL:        2 * time.Hour,
		Notifier:          NotifierGoChannel,
		NotificationTopic: "assessment.submitted",
		MailWorkers:       2,
		DedupeSize:        10_000,
		RadarSize:         350,
		RadarLevels:       5,
		RadarMargin:       60,
		RadarLabelOffset:  40,
		OrphanPolicy:      "zero",
		CORSOrigins:       []string{"*"},
		ShutdownTimeout:   10 * time.Second,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{"text", "json"}, c.LogFormat):
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case !slices.Contains([]string{StoreMemory, StoreSQLite, StorePostgres}, c.StoreDriver):
		return fmt.Errorf("%w: store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StorePostgres && c.DatabaseDSN == "":
		return fmt.Errorf("%w: database_dsn is required for postgres", ErrInvalidConfig)
	case !slices.Contains([]string{SessionMemory, SessionRedis}, c.SessionDriver):
		return fmt.Errorf("%w: session_driver %q", ErrInvalidConfig, c.SessionDriver)
	case c.SessionDriver == SessionRedis && c.RedisURL == "":
		return fmt.Errorf("%w: redis_url is required for redis sessions", ErrInvalidConfig)
	case !slices.Contains([]string{NotifierNone, NotifierGoChannel, NotifierKafka}, c.Notifier):
		return fmt.Errorf("%w: notifier %q", ErrInvalidConfig, c.Notifier)
	case c.Notifier == NotifierKafka && len(c.KafkaBrokers) == 0:
		return fmt.Errorf("%w: kafka_brokers is required for kafka", ErrInvalidConfig)
	case c.Notifier != NotifierNone && c.NotificationTopic == "":
		return fmt.Errorf("%w: notification_topic must not be empty", ErrInvalidConfig)
	case c.Notifier == NotifierGoChannel && c.MailWorkers < 1:
		return fmt.Errorf("%w: mail_workers must be at least 1", ErrInvalidConfig)
	case c.RadarLevels <= 0 || c.RadarSize <= 2*c.RadarMargin:
		return fmt.Errorf("%w: radar size %v, margin %v, levels %d", ErrInvalidConfig, c.RadarSize, c.RadarMargin, c.RadarLevels)
	case !slices.Contains([]string{"zero", "exclude"}, c.OrphanPolicy):
		return fmt.Errorf("%w: orphan_policy %q", ErrInvalidConfig, c.OrphanPolicy)
	}
	return nil
}
