package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

var errNoFile = errors.New("--file is required")

// responseFile is the on-disk shape of a response set. JSON is read as YAML.
type responseFile struct {
	Responses []struct {
		QuestionID string `koanf:"questionId"`
		Rating     int    `koanf:"rating"`
	} `koanf:"responses"`
}

// readResponses loads a YAML or JSON response set.
func readResponses(path string) ([]scoring.Response, error) {
	if path == "" {
		return nil, errNoFile
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw responseFile
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]scoring.Response, 0, len(raw.Responses))
	for _, r := range raw.Responses {
		out = append(out, scoring.Response{QuestionID: r.QuestionID, Rating: r.Rating})
	}
	return out, nil
}

func newScoreCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a response file against the benchmark",
		Example: `  checkin score --file responses.yaml
  checkin score --file responses.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")

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
			res, err := svc.Score(cmd.Context(), responses, service.RadarRequest{})
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndented(cmd.OutOrStdout(), res)
			}
			renderScores(cmd.OutOrStdout(), res.Rows)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML or JSON file with a responses list")
	cmd.Flags().Bool("json", false, "print the full results as JSON")
	return cmd
}

// renderScores prints one row per competency with its coloured status.
func renderScores(w io.Writer, rows []benchmark.Row) {
	color.New(color.FgYellow, color.Bold).Fprintln(w, "Competency Check-in results")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Competency", "You", "Benchmark", "Status"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range rows {
		you := "-"
		if r.Answered {
			you = fmt.Sprintf("%.1f", r.UserScore)
		}
		table.Append([]string{r.Name, you, fmt.Sprintf("%.1f", r.BenchmarkScore), statusColor(r.Status)(r.Status.String())})
	}
	table.Render()
}

func statusColor(s benchmark.Status) func(a ...any) string {
	switch s {
	case benchmark.StatusAhead:
		return color.New(color.FgGreen).SprintFunc()
	case benchmark.StatusPriority:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case benchmark.StatusNotAnswered:
		return color.New(color.Faint).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
