package session

import (
	"time"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

// Snapshot is a serialisable copy of a session.
type Snapshot struct {
	ID               string             `json:"id"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	User             *UserInfo          `json:"user,omitempty"`
	Responses        []scoring.Response `json:"responses"`
	ExperienceRating *int               `json:"experienceRating,omitempty"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ID:        s.id,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		Responses: s.responsesLocked(),
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.experience != nil {
		v := *s.experience
		snap.ExperienceRating = &v
	}
	return snap
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot) *Session {
	s := New(snap.ID)
	if !snap.CreatedAt.IsZero() {
		s.createdAt = snap.CreatedAt
	}
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
	if snap.User != nil {
		u := *snap.User
		s.user = &u
	}
	for _, r := range snap.Responses {
		if _, ok := s.responses[r.QuestionID]; !ok {
			s.order = append(s.order, r.QuestionID)
		}
		s.responses[r.QuestionID] = r.Rating
	}
	if snap.ExperienceRating != nil {
		v := *snap.ExperienceRating
		s.experience = &v
	}
	return s
}

// CompetencyProgress counts answers within one competency.
type CompetencyProgress struct {
	CompetencyID string `json:"competencyId"`
	Answered     int    `json:"answered"`
	Total        int    `json:"total"`
}

// Complete reports whether every question of the competency is answered.
func (p CompetencyProgress) Complete() bool { return p.Answered >= p.Total }

// Progress summarises how far through the catalog a session is.
type Progress struct {
	Competencies []CompetencyProgress `json:"competencies"`
	Answered     int                  `json:"answered"`
	Total        int                  `json:"total"`

	// NextStep is the index of the first incomplete competency, or -1 when done.
	NextStep int `json:"nextStep"`
}

// Progress computes per competency and overall completion against cat.
func (s *Session) Progress(cat *catalog.Catalog) Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := Progress{NextStep: -1, Competencies: make([]CompetencyProgress, 0, len(cat.Competencies))}
	for i, c := range cat.Competencies {
		cp := CompetencyProgress{CompetencyID: c.ID, Total: len(c.Questions)}
		for _, q := range c.Questions {
			if _, ok := s.responses[q.ID]; ok {
				cp.Answered++
			}
		}
		if !cp.Complete() && p.NextStep < 0 {
			p.NextStep = i
		}
		p.Answered += cp.Answered
		p.Total += cp.Total
		p.Competencies = append(p.Competencies, cp)
	}
	return p
}
