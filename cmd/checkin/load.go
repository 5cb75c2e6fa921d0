package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/impactwon/checkin/internal/loadtest"
)

func newLoadCmd(_ *cli) *cobra.Command {
	cfg := &loadtest.Config{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Drive simulated respondents through a running server and verify what it stored",
		Example: `  checkin load --url http://localhost:9080 --sessions 500
  checkin load --sessions 50 --seed 7 --output respondents.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadtest.Run(cmd.Context(), cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"generated %d, completed %d, saved %d, emailed %d, failed %d, duplicates %d in %s\n",
					stats.Generated, stats.Completed, stats.Saved, stats.Emailed, stats.Failed, stats.Duplicates,
					stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Sessions, "sessions", 100, "number of respondents to simulate")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 0, "respondent generator seed (0 picks one)")
	f.StringVar(&cfg.OutputFile, "output", "", "write generated respondents to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log per-session failures and progress")
	return cmd
}
