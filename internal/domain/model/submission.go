// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
)

// Payload is everything a submission hands to storage and notification.
// ChartImageBase64 is optional; clients that cannot capture the chart omit it.
type Payload struct {
	SubmissionID       string                   `json:"submissionId"`
	UserInfo           session.UserInfo         `json:"userInfo"`
	CompetencyAverages scoring.Averages         `json:"competencyAverages"`
	BenchmarkProfile   catalog.BenchmarkProfile `json:"benchmarkProfile"`
	ExperienceRating   int                      `json:"experienceRating"`
	ChartImageBase64   string                   `json:"chartImageBase64,omitempty"`
	Responses          []scoring.Response       `json:"responses"`
	SubmittedAt        time.Time                `json:"submittedAt"`
}

// Result reports the outcome of a submission.
type Result struct {
	SubmissionID string   `json:"submissionId"`
	Success      bool     `json:"success"`
	Saved        bool     `json:"saved"`
	Emailed      bool     `json:"emailed"`
	Duplicate    bool     `json:"duplicate,omitempty"`
	Error        string   `json:"error,omitempty"`
	Recipients   []string `json:"recipients,omitempty"`
}

// Record is one stored assessment row.
type Record struct {
	ID                   string             `json:"id"`
	FirstName            string             `json:"first_name"`
	Surname              string             `json:"surname"`
	Email                string             `json:"email"`
	Mobile               string             `json:"mobile,omitempty"`
	BrandAdvocate        float64            `json:"brand_advocate"`
	Investigator         float64            `json:"investigator"`
	TeamPlayer           float64            `json:"team_player"`
	LeadershipEthics     float64            `json:"leadership_ethics"`
	BusinessAcumen       float64            `json:"business_acumen"`
	ProductsServices     float64            `json:"products_services"`
	SalesPlanningSelling float64            `json:"sales_planning_selling"`
	ExperienceRating     int                `json:"experience_rating"`
	Responses            []scoring.Response `json:"responses"`
	CreatedAt            time.Time          `json:"created_at"`
}

// RecordFrom flattens a payload into a row. Competencies outside the built-in
// seven are kept only in the responses.
func RecordFrom(p Payload) Record {
	a := p.CompetencyAverages
	return Record{
		ID:                   p.SubmissionID,
		FirstName:            p.UserInfo.FirstName,
		Surname:              p.UserInfo.Surname,
		Email:                p.UserInfo.Email,
		Mobile:               p.UserInfo.Mobile,
		BrandAdvocate:        a[catalog.BrandAdvocate],
		Investigator:         a[catalog.Investigator],
		TeamPlayer:           a[catalog.TeamPlayer],
		LeadershipEthics:     a[catalog.LeadershipEthics],
		BusinessAcumen:       a[catalog.BusinessAcumen],
		ProductsServices:     a[catalog.ProductsServices],
		SalesPlanningSelling: a[catalog.SalesPlanningSelling],
		ExperienceRating:     p.ExperienceRating,
		Responses:            append([]scoring.Response(nil), p.Responses...),
		CreatedAt:            p.SubmittedAt,
	}
}

// Averages returns the seven competency columns keyed by competency id.
func (r Record) Averages() scoring.Averages {
	return scoring.Averages{
		catalog.BrandAdvocate:        r.BrandAdvocate,
		catalog.Investigator:         r.Investigator,
		catalog.TeamPlayer:           r.TeamPlayer,
		catalog.LeadershipEthics:     r.LeadershipEthics,
		catalog.BusinessAcumen:       r.BusinessAcumen,
		catalog.ProductsServices:     r.ProductsServices,
		catalog.SalesPlanningSelling: r.SalesPlanningSelling,
	}
}

// SubmittedEvent is published after a submission to trigger the report e-mail.
type SubmittedEvent struct {
	SubmissionID string   `json:"submissionId"`
	Recipients   []string `json:"recipients"`
	Saved        bool     `json:"saved"`
	Payload      Payload  `json:"payload"`
}
