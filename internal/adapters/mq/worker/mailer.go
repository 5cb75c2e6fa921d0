package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/impactwon/checkin/internal/domain/benchmark"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/pkg/logger"
)

// Email is the report handed to a Mailer. Rendering it is up to the mailer.
type Email struct {
	SubmissionID     string
	To               string
	CC               []string
	Subject          string
	FirstName        string
	Surname          string
	Rows             []benchmark.Row
	ExperienceRating int
	ChartImageBase64 string
	Saved            bool
}

// Mailer delivers report e-mails.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// BuildEmail turns a submitted event into a report. The first recipient is
// the addressee and the rest are copied.
func BuildEmail(cat *catalog.Catalog, ev model.SubmittedEvent) (Email, error) { //nolint:gocritic // hugeParam: events are passed by value across the queue
	if len(ev.Recipients) == 0 || strings.TrimSpace(ev.Recipients[0]) == "" {
		return Email{}, fmt.Errorf("%w: %s", ErrNoRecipients, ev.SubmissionID)
	}
	p := ev.Payload
	return Email{
		SubmissionID:     ev.SubmissionID,
		To:               ev.Recipients[0],
		CC:               append([]string(nil), ev.Recipients[1:]...),
		Subject:          fmt.Sprintf("Competency Check-in results: %s %s", p.UserInfo.FirstName, p.UserInfo.Surname),
		FirstName:        p.UserInfo.FirstName,
		Surname:          p.UserInfo.Surname,
		Rows:             benchmark.Compare(cat, p.CompetencyAverages),
		ExperienceRating: p.ExperienceRating,
		ChartImageBase64: p.ChartImageBase64,
		Saved:            ev.Saved,
	}, nil
}

// LogMailer writes e-mails to the log instead of sending them.
type LogMailer struct {
	log logger.Logger
}

// NewLogMailer creates a mailer that logs through l.
func NewLogMailer(l logger.Logger) *LogMailer {
	if l == nil {
		l = logger.Get().Named("mailer")
	}
	return &LogMailer{log: l}
}

func (m *LogMailer) Send(ctx context.Context, e Email) error { //nolint:gocritic // hugeParam
	fields := []logger.Field{
		logger.String("submission_id", e.SubmissionID),
		logger.String("to", e.To),
		logger.String("cc", strings.Join(e.CC, ",")),
		logger.String("subject", e.Subject),
		logger.Int("experience_rating", e.ExperienceRating),
		logger.Bool("chart_attached", e.ChartImageBase64 != ""),
		logger.Bool("saved", e.Saved),
	}
	for _, r := range e.Rows {
		fields = append(fields, logger.String(r.CompetencyID, fmt.Sprintf("%.2f/%.1f %s", r.UserScore, r.BenchmarkScore, r.Status)))
	}
	m.log.Info(ctx, "report e-mail", fields...)
	return nil
}
