// Package catalog holds the competency questionnaire configuration: the
// competencies, their questions and the benchmark profile they are compared
// against. A Catalog is built once at startup and never mutated afterwards.
package catalog

import (
	"fmt"
)

// Scale is the number of selectable levels of a question.
type Scale int

// Valid rating scales.
const (
	Scale3 Scale = 3
	Scale5 Scale = 5
)

// DefaultBenchmarkScore is used for competencies missing from a BenchmarkProfile.
const DefaultBenchmarkScore = 4.0

// MinCompetencies is the smallest number of competencies that still yields a radar polygon.
const MinCompetencies = 3

// Valid reports whether s is one of the supported scales.
func (s Scale) Valid() bool {
	return s == Scale3 || s == Scale5
}

// Question is a single rated item.
type Question struct {
	ID     string         `json:"id"`
	Text   string         `json:"text"`
	Scale  Scale          `json:"scale"`
	Levels map[int]string `json:"levels,omitempty"`
}

// Competency groups an ordered list of questions under a display name.
type Competency struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Question returns the question with the given id if it belongs to c.
func (c Competency) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Has reports whether question id belongs to c.
func (c Competency) Has(id string) bool {
	_, ok := c.Question(id)
	return ok
}

// BenchmarkProfile maps competency ids to a reference score on the 5-point scale.
type BenchmarkProfile map[string]float64

// Score returns the benchmark for id, or DefaultBenchmarkScore when unset.
func (b BenchmarkProfile) Score(id string) float64 {
	if v, ok := b[id]; ok {
		return v
	}
	return DefaultBenchmarkScore
}

// Catalog is the full questionnaire configuration.
type Catalog struct {
	Competencies []Competency     `json:"competencies"`
	Benchmark    BenchmarkProfile `json:"benchmark"`

	byQuestion map[string]questionRef
}

type questionRef struct {
	question     Question
	competencyID string
}

// New builds a catalog and indexes its questions. It does not validate.
func New(competencies []Competency, benchmark BenchmarkProfile) *Catalog {
	c := &Catalog{
		Competencies: competencies,
		Benchmark:    benchmark,
	}
	if c.Benchmark == nil {
		c.Benchmark = BenchmarkProfile{}
	}
	c.index()
	return c
}

func (c *Catalog) index() {
	c.byQuestion = make(map[string]questionRef)
	for _, comp := range c.Competencies {
		for _, q := range comp.Questions {
			if _, dup := c.byQuestion[q.ID]; dup {
				continue
			}
			c.byQuestion[q.ID] = questionRef{question: q, competencyID: comp.ID}
		}
	}
}

// Competency returns the competency with the given id.
func (c *Catalog) Competency(id string) (Competency, bool) {
	for _, comp := range c.Competencies {
		if comp.ID == id {
			return comp, true
		}
	}
	return Competency{}, false
}

// Question returns the question with the given id and the id of its competency.
func (c *Catalog) Question(id string) (Question, string, bool) {
	ref, ok := c.byQuestion[id]
	if !ok {
		return Question{}, "", false
	}
	return ref.question, ref.competencyID, true
}

// QuestionIDs returns every question id in catalog order.
func (c *Catalog) QuestionIDs() []string {
	ids := make([]string, 0, len(c.byQuestion))
	for _, comp := range c.Competencies {
		for _, q := range comp.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Labels returns the competency display names in catalog order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.Competencies))
	for i, comp := range c.Competencies {
		labels[i] = comp.Name
	}
	return labels
}

// Validate checks the configuration invariants.
func (c *Catalog) Validate() error {
	if len(c.Competencies) < MinCompetencies {
		return fmt.Errorf("%w: got %d", ErrDegenerateAxisCount, len(c.Competencies))
	}

	compIDs := make(map[string]struct{}, len(c.Competencies))
	questionIDs := make(map[string]string)
	for _, comp := range c.Competencies {
		if comp.ID == "" {
			return fmt.Errorf("%w: competency %q", ErrEmptyID, comp.Name)
		}
		if _, dup := compIDs[comp.ID]; dup {
			return fmt.Errorf("%w: competency %s", ErrDuplicateID, comp.ID)
		}
		compIDs[comp.ID] = struct{}{}

		for _, q := range comp.Questions {
			if q.ID == "" {
				return fmt.Errorf("%w: question in competency %s", ErrEmptyID, comp.ID)
			}
			if owner, dup := questionIDs[q.ID]; dup {
				return fmt.Errorf("%w: question %s in %s and %s", ErrDuplicateID, q.ID, owner, comp.ID)
			}
			questionIDs[q.ID] = comp.ID

			if !q.Scale.Valid() {
				return fmt.Errorf("%w: question %s declares %d", ErrInvalidScale, q.ID, q.Scale)
			}
			for level := range q.Levels {
				if level < 1 || level > int(q.Scale) {
					return fmt.Errorf("%w: question %s level %d", ErrInvalidLevel, q.ID, level)
				}
			}
		}
	}
	return nil
}
