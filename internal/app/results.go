package service

import (
	"context"
	"fmt"
	"time"

	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/radar"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
	"github.com/impactwon/checkin/pkg/metrics"
)

// RadarRequest overrides the radar defaults. Zero fields use the defaults.
type RadarRequest struct {
	Size   float64 `json:"size,omitempty" validate:"omitempty,gt=0"`
	Levels int     `json:"levels,omitempty" validate:"omitempty,min=1,max=20"`
}

// Results is the scored view of a response set.
type Results struct {
	Averages         scoring.Averages         `json:"averages"`
	Benchmark        catalog.BenchmarkProfile `json:"benchmark"`
	Rows             []benchmark.Row          `json:"rows"`
	Radar            *radar.Layout            `json:"radar"`
	UserPolygon      string                   `json:"userPolygon"`
	BenchmarkPolygon string                   `json:"benchmarkPolygon"`
	Progress         *session.Progress        `json:"progress,omitempty"`
}

// Score scores a raw response set without a session. Responses to unknown
// questions belong to no competency and are ignored; ratings outside a known
// question's scale are rejected.
func (s *Service) Score(ctx context.Context, responses []scoring.Response, req RadarRequest) (*Results, error) {
	for _, r := range responses {
		q, _, ok := s.catalog.Question(r.QuestionID)
		if ok && (r.Rating < 1 || r.Rating > int(q.Scale)) {
			return nil, fmt.Errorf("%w: %s rated %d on a %d-point scale", ErrInvalidResponse, r.QuestionID, r.Rating, q.Scale)
		}
	}
	return s.score(ctx, responses, req)
}

// Results scores the responses of a session and reports its progress.
func (s *Service) Results(ctx context.Context, id string, req RadarRequest) (*Results, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.score(ctx, sess.Responses(), req)
	if err != nil {
		return nil, err
	}
	p := sess.Progress(s.catalog)
	res.Progress = &p
	return res, nil
}

func (s *Service) score(_ context.Context, responses []scoring.Response, req RadarRequest) (*Results, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	averages, err := s.aggregator.AverageForAll(s.catalog.Competencies, responses)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	layout, err := s.layout(averages, req)
	if err != nil {
		return nil, err
	}
	return &Results{
		Averages:         averages,
		Benchmark:        s.catalog.Benchmark,
		Rows:             benchmark.Compare(s.catalog, averages),
		Radar:            layout,
		UserPolygon:      radar.PointsAttr(layout.UserPolygon()),
		BenchmarkPolygon: radar.PointsAttr(layout.BenchmarkPolygon()),
	}, nil
}

func (s *Service) layout(averages scoring.Averages, req RadarRequest) (*radar.Layout, error) {
	size, levels := s.radar.Size, s.radar.Levels
	if req.Size != 0 {
		size = req.Size
	}
	if req.Levels != 0 {
		levels = req.Levels
	}
	layout, err := radar.Compute(
		radar.SeriesFrom(s.catalog, averages),
		radar.BenchmarkSeries(s.catalog),
		radar.DefaultMaxValue, size, levels,
		radar.WithMargin(s.radar.Margin),
		radar.WithLabelOffset(s.radar.LabelOffset),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRadar, err)
	}
	return layout, nil
}
