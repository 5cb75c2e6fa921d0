package main

import (
	"github.com/spf13/cobra"

	service "github.com/impactwon/checkin/internal/app"
)

func newRadarCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Print the radar chart geometry of a response file as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			size, _ := cmd.Flags().GetFloat64("size")
			levels, _ := cmd.Flags().GetInt("levels")

			responses, err := readResponses(path)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd.Context(), c.cfg.CatalogFile)
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), c.cfg, cat, c.log, true)
			if err != nil {
				return err
			}
			res, err := svc.Score(cmd.Context(), responses, service.RadarRequest{Size: size, Levels: levels})
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), map[string]any{
				"radar":            res.Radar,
				"userPolygon":      res.UserPolygon,
				"benchmarkPolygon": res.BenchmarkPolygon,
			})
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML or JSON file with a responses list")
	cmd.Flags().Float64("size", 0, "chart size in pixels (default radar_size)")
	cmd.Flags().Int("levels", 0, "number of grid rings (default radar_levels)")
	return cmd
}
