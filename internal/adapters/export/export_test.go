package export_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/impactwon/checkin/internal/adapters/export"
	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

func sample(id string) model.Record {
	return model.Record{
		ID:                   id,
		FirstName:            "Ada",
		Surname:              "Lovelace",
		Email:                "ada@example.com",
		BrandAdvocate:        4.5,
		Investigator:         3.0,
		TeamPlayer:           4.0,
		LeadershipEthics:     4.2,
		BusinessAcumen:       3.8,
		ProductsServices:     4.0,
		SalesPlanningSelling: 4.4,
		ExperienceRating:     4,
		Responses:            []scoring.Response{{QuestionID: "BA1", Rating: 5}, {QuestionID: "IN1", Rating: 3}},
		CreatedAt:            time.Date(2025, 4, 2, 15, 4, 5, 0, time.UTC),
	}
}

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWrite(t *testing.T) {
	cat := catalog.Default()
	var buf bytes.Buffer
	require.NoError(t, export.New(cat).Write(&buf, []model.Record{sample("x1")}))

	f := open(t, &buf)
	assert.Equal(t, []string{export.SheetAssessments, export.SheetResponses}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetAssessments)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Submitted At", rows[0][0])
	assert.Equal(t, cat.Competencies[0].Name, rows[0][5])
	assert.Equal(t, "Submission ID", rows[0][len(rows[0])-1])
	assert.Equal(t, "2025-04-02T15:04:05Z", rows[1][0])
	assert.Equal(t, "ada@example.com", rows[1][3])
	assert.Equal(t, "x1", rows[1][len(rows[1])-1])

	responses, err := f.GetRows(export.SheetResponses)
	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, []string{"x1", "IN1", "3"}, responses[2])
}

func TestWriteStylesScoresByStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.New(nil).Write(&buf, []model.Record{sample("c1")}))
	f := open(t, &buf)

	style := func(cell string) int {
		idx, err := f.GetCellStyle(export.SheetAssessments, cell)
		require.NoError(t, err)
		return idx
	}

	// F brand advocate ahead, G investigator priority, H team player in line,
	// L sales planning ahead, K products in line
	ahead, priority, inLine := style("F2"), style("G2"), style("H2")
	assert.NotEqual(t, ahead, priority)
	assert.NotEqual(t, ahead, inLine)
	assert.NotEqual(t, priority, inLine)
	assert.Equal(t, ahead, style("L2"))
	assert.Equal(t, inLine, style("K2"))

	s, err := f.GetStyle(priority)
	require.NoError(t, err)
	require.NotEmpty(t, s.Fill.Color)
	assert.Contains(t, strings.ToUpper(s.Fill.Color[0]), strings.TrimPrefix(benchmark.ColorFor(benchmark.StatusPriority), "#"))
}

func TestWriteLeavesUnansweredScoresNeutral(t *testing.T) {
	rec := sample("c2")
	rec.Investigator = 0

	var buf bytes.Buffer
	require.NoError(t, export.New(nil).Write(&buf, []model.Record{rec}))
	f := open(t, &buf)

	idx, err := f.GetCellStyle(export.SheetAssessments, "G2")
	require.NoError(t, err)
	s, err := f.GetStyle(idx)
	require.NoError(t, err)
	require.NotEmpty(t, s.Fill.Color)
	assert.Contains(t, strings.ToUpper(s.Fill.Color[0]), strings.TrimPrefix(benchmark.ColorNotAnswered, "#"))
}

func TestExportPagesThroughStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(ctx, sample(id)))
	}

	var buf bytes.Buffer
	n, err := export.New(nil).Export(ctx, store, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := open(t, &buf).GetRows(export.SheetAssessments)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

type brokenLister struct{}

func (brokenLister) List(context.Context, int, int) ([]model.Record, error) {
	return nil, errors.New("db down")
}

func TestExportListFailure(t *testing.T) {
	var buf bytes.Buffer
	_, err := export.New(nil).Export(context.Background(), brokenLister{}, &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
