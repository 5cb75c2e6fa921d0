// Package session holds the in-progress answers of one respondent.
//
// A Session is passed explicitly to whatever collects answers; nothing here
// is global. Reset marks the end of an assessment, whether submitted or
// abandoned.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

// Experience rating bounds.
const (
	MinExperience = 1
	MaxExperience = 5
)

// UserInfo identifies the respondent.
type UserInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Mobile    string `json:"mobile,omitempty"`
}

// Session is the mutable answer set of one assessment.
type Session struct {
	mu         sync.RWMutex
	id         string
	createdAt  time.Time
	updatedAt  time.Time
	user       *UserInfo
	order      []string
	responses  map[string]int
	experience *int
	now        func() time.Time
}

// New creates an empty session.
func New(id string) *Session {
	s := &Session{id: id, now: time.Now, responses: make(map[string]int)}
	s.createdAt = s.now().UTC()
	s.updatedAt = s.createdAt
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// SetUser records the respondent.
func (s *Session) SetUser(u UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.touch()
}

// User returns a copy of the respondent, or nil before registration.
func (s *Session) User() *UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Upsert records r, replacing any earlier answer to the same question.
// A replaced answer keeps its original position.
func (s *Session) Upsert(r scoring.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[r.QuestionID]; !ok {
		s.order = append(s.order, r.QuestionID)
	}
	s.responses[r.QuestionID] = r.Rating
	s.touch()
}

// Responses returns a copy of the answers in first-answered order.
func (s *Session) Responses() []scoring.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responsesLocked()
}

func (s *Session) responsesLocked() []scoring.Response {
	out := make([]scoring.Response, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, scoring.Response{QuestionID: id, Rating: s.responses[id]})
	}
	return out
}

// SetExperience records the satisfaction rating.
func (s *Session) SetExperience(rating int) error {
	if rating < MinExperience || rating > MaxExperience {
		return fmt.Errorf("%w: got %d", ErrInvalidExperience, rating)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experience = &rating
	s.touch()
	return nil
}

// Experience returns the satisfaction rating, or nil when unset.
func (s *Session) Experience() *int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.experience == nil {
		return nil
	}
	v := *s.experience
	return &v
}

// Reset clears the respondent, the answers and the experience rating.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.order = nil
	s.responses = make(map[string]int)
	s.experience = nil
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = s.now().UTC()
}

// ValidateResponse checks r against the catalog.
func ValidateResponse(cat *catalog.Catalog, r scoring.Response) error {
	q, _, ok := cat.Question(r.QuestionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, r.QuestionID)
	}
	if r.Rating < 1 || r.Rating > int(q.Scale) {
		return fmt.Errorf("%w: %s rated %d on a %d-point scale", ErrRatingOutOfRange, r.QuestionID, r.Rating, q.Scale)
	}
	return nil
}
