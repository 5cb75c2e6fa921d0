// Package benchmark classifies competency averages against the benchmark profile.
package benchmark

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

// Threshold is the distance from the benchmark at which a score leaves the neutral band.
const Threshold = 0.3

// deltas are rounded to this precision so that 4.3-4.0 compares equal to 0.3.
const precision = 1e9

// Status is the qualitative comparison of a score with its benchmark.
type Status int

const (
	StatusInLine Status = iota
	StatusAhead
	StatusPriority
	// StatusNotAnswered marks a competency without responses. Classify never returns it.
	StatusNotAnswered
)

var statusText = map[Status]string{
	StatusAhead:       "Ahead of benchmark",
	StatusInLine:      "In line with benchmark",
	StatusPriority:    "Priority development area",
	StatusNotAnswered: "Not answered",
}

// Status colours.
const (
	ColorAhead       = "#A6E0C5"
	ColorInLine      = "#C1E6FF"
	ColorPriority    = "#FF810C"
	ColorNotAnswered = NeutralLevelColor
)

func (s Status) String() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return statusText[StatusInLine]
}

// MarshalJSON encodes the display text.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the display text.
func (s *Status) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return err
	}
	for k, v := range statusText {
		if v == text {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Classify compares a user score with a benchmark score. Both boundaries are inclusive.
func Classify(userScore, benchmarkScore float64) Status {
	delta := math.Round((userScore-benchmarkScore)*precision) / precision
	switch {
	case delta >= Threshold:
		return StatusAhead
	case delta <= -Threshold:
		return StatusPriority
	default:
		return StatusInLine
	}
}

// StatusFor classifies the average of competency id. The 0 sentinel of an
// unanswered competency yields StatusNotAnswered instead of a comparison.
func StatusFor(averages scoring.Averages, id string, benchmarkScore float64) Status {
	if !averages.Answered(id) {
		return StatusNotAnswered
	}
	return Classify(averages[id], benchmarkScore)
}

// ColorFor returns the indicator colour of a status.
func ColorFor(s Status) string {
	switch s {
	case StatusAhead:
		return ColorAhead
	case StatusPriority:
		return ColorPriority
	case StatusNotAnswered:
		return ColorNotAnswered
	default:
		return ColorInLine
	}
}

var levelColors = [...]string{"#FF810C", "#FFB366", "#C1E6FF", "#7FD1AE", "#A6E0C5"}

// NeutralLevelColor is returned for levels outside 1..5.
const NeutralLevelColor = "#E0E0E0"

// LevelColor returns the colour of rating level 1..5.
func LevelColor(level int) string {
	if level < 1 || level > len(levelColors) {
		return NeutralLevelColor
	}
	return levelColors[level-1]
}

// Row is the comparison of one competency.
type Row struct {
	CompetencyID   string  `json:"competencyId"`
	Name           string  `json:"name"`
	UserScore      float64 `json:"userScore"`
	BenchmarkScore float64 `json:"benchmarkScore"`
	Status         Status  `json:"status"`
	Color          string  `json:"color"`
	Answered       bool    `json:"answered"`
}

// Compare builds one row per competency in catalog order.
func Compare(cat *catalog.Catalog, averages scoring.Averages) []Row {
	rows := make([]Row, 0, len(cat.Competencies))
	for _, c := range cat.Competencies {
		user := averages[c.ID]
		bench := cat.Benchmark.Score(c.ID)
		status := StatusFor(averages, c.ID, bench)
		rows = append(rows, Row{
			CompetencyID:   c.ID,
			Name:           c.Name,
			UserScore:      user,
			BenchmarkScore: bench,
			Status:         status,
			Color:          ColorFor(status),
			Answered:       averages.Answered(c.ID),
		})
	}
	return rows
}
