package service

import (
	"context"
	"fmt"
	"io"

	"github.com/impactwon/checkin/internal/adapters/export"
	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/pkg/logger"
)

// ListAssessments pages through stored assessments, oldest first.
func (s *Service) ListAssessments(ctx context.Context, limit, offset int) ([]model.Record, error) {
	if err := repository.CheckPage(limit, offset); err != nil {
		return nil, err
	}
	return s.store.List(ctx, limit, offset)
}

// GetAssessment returns one stored assessment.
func (s *Service) GetAssessment(ctx context.Context, id string) (model.Record, error) {
	return s.store.Get(ctx, id)
}

// ExportAssessments writes every stored assessment to w as an xlsx workbook.
func (s *Service) ExportAssessments(ctx context.Context, w io.Writer) (int, error) {
	n, err := export.New(s.catalog).Export(ctx, s.store, w)
	if err != nil {
		return 0, fmt.Errorf("export assessments: %w", err)
	}
	s.logger.Info(ctx, "assessments exported", logger.Int("rows", n))
	return n, nil
}
