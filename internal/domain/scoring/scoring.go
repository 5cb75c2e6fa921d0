// Package scoring normalizes raw ratings onto the common 5-point scale and
// reduces them to per-competency averages.
package scoring

import (
	"fmt"

	"github.com/impactwon/checkin/internal/domain/catalog"
)

// Response is a single answered question.
type Response struct {
	QuestionID string `json:"questionId" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
}

// Averages maps competency ids to their mean normalized rating.
// A value of 0 means the competency has no responses yet.
type Averages map[string]float64

// Answered reports whether the competency has rating data to compare.
// It reads the 0 sentinel, so a competency whose responses are all orphans
// counted as zero is unanswered too: none of them carries a rating.
func (a Averages) Answered(id string) bool {
	return a[id] != 0
}

// Normalize maps rating from its native scale onto the 5-point scale.
func Normalize(rating int, from catalog.Scale) (float64, error) {
	switch from {
	case catalog.Scale5:
		return float64(rating), nil
	case catalog.Scale3:
		return float64(1 + (rating-1)*2), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidScale, from)
	}
}

// Aggregator computes competency averages.
type Aggregator struct {
	orphans OrphanPolicy
	member  MembershipFunc
}

// NewAggregator creates an aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		orphans: OrphanCountAsZero,
		member:  func(c catalog.Competency, id string) bool { return c.Has(id) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OrphanPolicy returns the configured policy.
func (a *Aggregator) OrphanPolicy() OrphanPolicy { return a.orphans }

// AverageFor returns the mean normalized rating of the responses that belong to c,
// or 0 when none do.
func (a *Aggregator) AverageFor(c catalog.Competency, responses []Response) (float64, error) {
	var (
		sum   float64
		count int
	)
	for _, r := range responses {
		if !a.member(c, r.QuestionID) {
			continue
		}
		q, ok := c.Question(r.QuestionID)
		if !ok {
			if a.orphans == OrphanExclude {
				continue
			}
			count++
			continue
		}
		v, err := Normalize(r.Rating, q.Scale)
		if err != nil {
			return 0, fmt.Errorf("question %s: %w", q.ID, err)
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

// AverageForAll computes AverageFor independently for every competency.
func (a *Aggregator) AverageForAll(cs []catalog.Competency, responses []Response) (Averages, error) {
	out := make(Averages, len(cs))
	for _, c := range cs {
		avg, err := a.AverageFor(c, responses)
		if err != nil {
			return nil, fmt.Errorf("competency %s: %w", c.ID, err)
		}
		out[c.ID] = avg
	}
	return out, nil
}

var defaultAggregator = NewAggregator()

// AverageFor uses the default aggregator.
func AverageFor(c catalog.Competency, responses []Response) (float64, error) {
	return defaultAggregator.AverageFor(c, responses)
}

// AverageForAll uses the default aggregator.
func AverageForAll(cs []catalog.Competency, responses []Response) (Averages, error) {
	return defaultAggregator.AverageForAll(cs, responses)
}
