package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/pkg/logger"
	"github.com/impactwon/checkin/pkg/metrics"
)

// SubmitRequest carries the optional parts of a submission.
type SubmitRequest struct {
	// SubmissionID makes retries idempotent. Generated when empty.
	SubmissionID     string `json:"submissionId,omitempty" validate:"omitempty,max=64"`
	ChartImageBase64 string `json:"chartImageBase64,omitempty" validate:"omitempty,base64"`

	// SendOnSaveFailure still triggers the e-mail when storing fails.
	SendOnSaveFailure bool `json:"sendOnSaveFailure,omitempty"`
}

// Submit stores the assessment of a session and triggers the report e-mail.
// Each step is attempted once. The session is deleted once the e-mail step
// has been attempted; a failed save that does not proceed to e-mail keeps the
// session so the respondent can try again.
func (s *Service) Submit(ctx context.Context, id string, req SubmitRequest) (*model.Result, error) {
	if req.SubmissionID != "" {
		if prev, ok := s.deduper.Lookup(ctx, req.SubmissionID); ok {
			metrics.RecordSubmission(metrics.OutcomeDuplicate)
			prev.Duplicate = true
			return &prev, nil
		}
	}

	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user := sess.User()
	if user == nil {
		return nil, ErrMissingUser
	}
	exp := sess.Experience()
	if exp == nil {
		return nil, ErrMissingExperience
	}
	if p := sess.Progress(s.catalog); p.NextStep >= 0 {
		return nil, fmt.Errorf("%w: %d of %d answered", ErrIncompleteResponses, p.Answered, p.Total)
	}

	subID := req.SubmissionID
	if subID == "" {
		subID = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, subID) {
		if prev, ok := s.deduper.Lookup(ctx, subID); ok {
			metrics.RecordSubmission(metrics.OutcomeDuplicate)
			prev.Duplicate = true
			return &prev, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrSubmissionInFlight, subID)
	}

	responses := sess.Responses()
	averages, err := s.aggregator.AverageForAll(s.catalog.Competencies, responses)
	if err != nil {
		s.deduper.Unrecord(ctx, subID)
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	payload := model.Payload{
		SubmissionID:       subID,
		UserInfo:           *user,
		CompetencyAverages: averages,
		BenchmarkProfile:   s.catalog.Benchmark,
		ExperienceRating:   *exp,
		ChartImageBase64:   req.ChartImageBase64,
		Responses:          responses,
		SubmittedAt:        s.now().UTC(),
	}
	for cid, avg := range averages {
		if averages.Answered(cid) {
			metrics.RecordCompetencyScore(cid, avg)
		}
	}

	result := model.Result{SubmissionID: subID, Recipients: s.recipients(user.Email)}
	log := s.logger.With(logger.String("submission_id", subID), logger.String("session_id", id))

	var problems []string
	if err := s.store.Insert(ctx, model.RecordFrom(payload)); err != nil {
		log.Error(ctx, "failed to save assessment", logger.Error(err))
		problems = append(problems, "assessment could not be saved: "+err.Error())
		if !req.SendOnSaveFailure {
			// nothing happened yet: let the respondent retry with the same id
			s.deduper.Unrecord(ctx, subID)
			result.Error = strings.Join(problems, "; ")
			metrics.RecordSubmission(metrics.OutcomeFailed)
			return &result, nil
		}
	} else {
		result.Saved = true
	}

	if err := s.publish(ctx, payload, result); err != nil {
		log.Error(ctx, "failed to trigger report e-mail", logger.Error(err))
		problems = append(problems, "the e-mail could not be sent: "+err.Error())
	} else {
		result.Emailed = true
	}

	result.Success = result.Saved && result.Emailed
	result.Error = strings.Join(problems, "; ")
	if !result.Emailed {
		result.Recipients = nil
	}
	s.deduper.Complete(ctx, subID, result)
	metrics.RecordSubmission(outcome(result))

	sess.Reset()
	if err := s.sessions.Delete(ctx, id); err != nil {
		log.Warn(ctx, "failed to delete submitted session", logger.Error(err))
	}
	log.Info(ctx, "assessment submitted",
		logger.Bool("saved", result.Saved),
		logger.Bool("emailed", result.Emailed),
		logger.Int("responses", len(responses)),
	)
	return &result, nil
}

func (s *Service) publish(ctx context.Context, p model.Payload, r model.Result) error { //nolint:gocritic // hugeParam
	if s.queue == nil {
		return ErrNotificationsOff
	}
	return s.queue.Enqueue(ctx, model.SubmittedEvent{
		SubmissionID: p.SubmissionID,
		Recipients:   r.Recipients,
		Saved:        r.Saved,
		Payload:      p,
	})
}

func (s *Service) recipients(userEmail string) []string {
	out := []string{userEmail}
	if s.ccEmail != "" && !strings.EqualFold(s.ccEmail, userEmail) {
		out = append(out, s.ccEmail)
	}
	return out
}

func outcome(r model.Result) string { //nolint:gocritic // hugeParam
	switch {
	case r.Saved && r.Emailed:
		return metrics.OutcomeComplete
	case r.Saved:
		return metrics.OutcomeSavedOnly
	case r.Emailed:
		return metrics.OutcomeEmailOnly
	default:
		return metrics.OutcomeFailed
	}
}
