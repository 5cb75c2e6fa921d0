package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/impactwon/checkin/internal/config"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/pkg/logger"
)

// cli carries what PersistentPreRunE resolved to the subcommands.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "checkin",
		Short:         "Competency check-in scoring service",
		Long:          "Scores competency self-assessments against a benchmark profile, stores them, and e-mails the report.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "YAML config file (overrides "+config.EnvConfig+")")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("catalog", "", "competency catalog YAML (overrides catalog_file)")

	root.AddCommand(
		newServeCmd(c),
		newScoreCmd(c),
		newCatalogCmd(c),
		newRadarCmd(c),
		newExportCmd(c),
		newLoadCmd(c),
	)
	return root
}

// setup loads configuration (defaults -> optional file -> env -> flags) and
// initializes logging on stderr so command output stays clean.
func (c *cli) setup(cmd *cobra.Command) error {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv(config.EnvConfig, p); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfig, err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		cfg.CatalogFile = p
	}

	logger.SetOutput(cmd.ErrOrStderr())
	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

// loadCatalog reads path, or returns the built-in catalog when path is empty.
func loadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	cat, err := catalog.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}
