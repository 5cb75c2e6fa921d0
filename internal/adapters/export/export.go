// Package export renders stored assessments as an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/model"
)

// Sheet names.
const (
	SheetAssessments = "Assessments"
	SheetResponses   = "Responses"
)

// pageSize is how many rows are read from the store per query.
const pageSize = 500

// Lister pages through stored rows.
type Lister interface {
	List(ctx context.Context, limit, offset int) ([]model.Record, error)
}

// Exporter builds workbooks labelled and coloured against a catalog.
type Exporter struct {
	cat *catalog.Catalog
}

// New creates an exporter. A nil catalog uses the built-in one.
func New(cat *catalog.Catalog) *Exporter {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Exporter{cat: cat}
}

// Export reads every row from src and writes the workbook to w.
func (e *Exporter) Export(ctx context.Context, src Lister, w io.Writer) (int, error) {
	var all []model.Record
	for offset := 0; ; offset += pageSize {
		page, err := src.List(ctx, pageSize, offset)
		if err != nil {
			return 0, fmt.Errorf("export: %w", err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}
	return len(all), e.Write(w, all)
}

// Write renders records to w.
func (e *Exporter) Write(w io.Writer, records []model.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAssessments); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetResponses); err != nil {
		return err
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := e.writeAssessments(f, styles, records); err != nil {
		return err
	}
	if err := writeResponses(f, styles, records); err != nil {
		return err
	}
	return f.Write(w)
}

type styles struct {
	header int
	status map[benchmark.Status]int
}

func newStyles(f *excelize.File) (styles, error) {
	s := styles{status: make(map[benchmark.Status]int, 4)}
	var err error
	s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, err
	}
	for _, st := range []benchmark.Status{benchmark.StatusAhead, benchmark.StatusInLine, benchmark.StatusPriority, benchmark.StatusNotAnswered} {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{benchmark.ColorFor(st)}},
			NumFmt:    2,
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return s, err
		}
		s.status[st] = id
	}
	return s, nil
}

func (e *Exporter) writeAssessments(f *excelize.File, st styles, records []model.Record) error {
	header := []any{"Submitted At", "First Name", "Surname", "Email", "Mobile"}
	for _, c := range e.cat.Competencies {
		header = append(header, c.Name)
	}
	header = append(header, "Experience Rating", "Submission ID")
	if err := f.SetSheetRow(SheetAssessments, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetAssessments, "A1", last, st.header); err != nil {
		return err
	}

	const firstScoreCol = 6
	for i, r := range records {
		row := i + 2
		averages := r.Averages()
		values := []any{r.CreatedAt.UTC().Format(time.RFC3339), r.FirstName, r.Surname, r.Email, r.Mobile}
		for _, c := range e.cat.Competencies {
			values = append(values, averages[c.ID])
		}
		values = append(values, r.ExperienceRating, r.ID)

		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetAssessments, start, &values); err != nil {
			return err
		}
		for j, c := range e.cat.Competencies {
			cell, _ := excelize.CoordinatesToCellName(firstScoreCol+j, row)
			status := benchmark.StatusFor(averages, c.ID, e.cat.Benchmark.Score(c.ID))
			if err := f.SetCellStyle(SheetAssessments, cell, cell, st.status[status]); err != nil {
				return err
			}
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(SheetAssessments, "A", lastCol, 18)
}

func writeResponses(f *excelize.File, st styles, records []model.Record) error {
	header := []any{"Submission ID", "Question ID", "Rating"}
	if err := f.SetSheetRow(SheetResponses, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetResponses, "A1", "C1", st.header); err != nil {
		return err
	}
	row := 2
	for _, r := range records {
		for _, resp := range r.Responses {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []any{r.ID, resp.QuestionID, resp.Rating}
			if err := f.SetSheetRow(SheetResponses, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
