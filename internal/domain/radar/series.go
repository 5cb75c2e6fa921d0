package radar

import (
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

// SeriesFrom builds the user series in catalog order. Missing averages are 0.
func SeriesFrom(cat *catalog.Catalog, averages scoring.Averages) []ChartPoint {
	out := make([]ChartPoint, len(cat.Competencies))
	for i, c := range cat.Competencies {
		out[i] = ChartPoint{Label: c.Name, Value: averages[c.ID]}
	}
	return out
}

// BenchmarkSeries builds the benchmark series in catalog order.
func BenchmarkSeries(cat *catalog.Catalog) []ChartPoint {
	out := make([]ChartPoint, len(cat.Competencies))
	for i, c := range cat.Competencies {
		out[i] = ChartPoint{Label: c.Name, Value: cat.Benchmark.Score(c.ID)}
	}
	return out
}

// UserPolygon returns the user polygon closed back to its first vertex.
func (l *Layout) UserPolygon() []Point { return Closed(l.User) }

// BenchmarkPolygon returns the benchmark polygon closed back to its first vertex.
func (l *Layout) BenchmarkPolygon() []Point { return Closed(l.Benchmark) }
