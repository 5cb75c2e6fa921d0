package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/impactwon/checkin/internal/domain/catalog"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the competency catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			cat, err := loadCatalog(cmd.Context(), c.cfg.CatalogFile)
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndented(cmd.OutOrStdout(), cat)
			}
			renderCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the catalog as JSON")
	return cmd
}

func renderCatalog(w io.Writer, cat *catalog.Catalog) {
	heading := color.New(color.FgYellow, color.Bold)
	for _, comp := range cat.Competencies {
		heading.Fprintf(w, "\n%s (benchmark %.1f)\n", comp.Name, cat.Benchmark.Score(comp.ID))

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"ID", "Scale", "Question"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(true)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, q := range comp.Questions {
			table.Append([]string{q.ID, strconv.Itoa(int(q.Scale)), q.Text})
		}
		table.Render()
	}
	fmt.Fprintf(w, "\n%d competencies, %d questions\n", len(cat.Competencies), len(cat.QuestionIDs()))
}
