package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/impactwon/checkin/internal/adapters/export"
	"github.com/impactwon/checkin/pkg/logger"
)

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored assessment to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			ctx := cmd.Context()

			cat, err := loadCatalog(ctx, c.cfg.CatalogFile)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, c.cfg)
			if err != nil {
				return fmt.Errorf("open %s store: %w", c.cfg.StoreDriver, err)
			}
			defer func() { _ = store.Close() }()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			n, err := export.New(cat).Export(ctx, store, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			c.log.Info(ctx, "export written", logger.String("file", out), logger.Int("rows", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d assessments written to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "assessments.xlsx", "output workbook")
	return cmd
}
