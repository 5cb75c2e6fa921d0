package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/impactwon/checkin/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv(config.EnvDotFile, filepath.Join(t.TempDir(), "absent.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.Notifier, convey.ShouldEqual, config.NotifierGoChannel)
				convey.So(cfg.CCEmail, convey.ShouldEqual, "sven@impactwon.com")
				convey.So(cfg.RadarSize, convey.ShouldEqual, 350)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 2*time.Hour)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CHECKIN_ADDR", ":8080")
			_ = os.Setenv("CHECKIN_STORE_DRIVER", "sqlite")
			_ = os.Setenv("CHECKIN_DATABASE_DSN", "file::memory:")
			_ = os.Setenv("CHECKIN_MAIL_WORKERS", "4")
			_ = os.Setenv("CHECKIN_SESSION_TTL", "45m")
			_ = os.Setenv("CHECKIN_CORS_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.MailWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 45*time.Minute)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
log_format: json
radar_size: 400
orphan_policy: exclude
kafka_brokers: ["k1:9092"]
`)
			_ = os.Setenv(config.EnvConfig, tmpFile)
			_ = os.Setenv("CHECKIN_ADDR", ":8181")
			_ = os.Setenv("CHECKIN_NOTIFIER", "kafka")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.RadarSize, convey.ShouldEqual, 400)
				convey.So(cfg.OrphanPolicy, convey.ShouldEqual, "exclude")
				convey.So(cfg.Notifier, convey.ShouldEqual, "kafka")
				convey.So(cfg.KafkaBrokers, convey.ShouldResemble, []string{"k1:9092"})
			})
		})

		convey.Convey("When a .env file is present", func() {
			dot := filepath.Join(t.TempDir(), "test.env")
			convey.So(os.WriteFile(dot, []byte("CHECKIN_CC_EMAIL=ops@example.com\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv(config.EnvDotFile, dot)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables feed the env layer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CCEmail, convey.ShouldEqual, "ops@example.com")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv(config.EnvConfig, createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv(config.EnvConfig, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CHECKIN_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CHECKIN_MAIL_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "checkin-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
