// Package loadtest drives complete check-in sessions against a running
// server and verifies what it stored.
package loadtest

import (
	"errors"
	"time"

	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
)

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid load test config")
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrVerification  = errors.New("verification failed")
	ErrRequest       = errors.New("request failed")
)

// Config holds configuration for a run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Sessions   int           // Number of respondents to simulate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed of the respondent generator; 0 picks one
	OutputFile string        // Where generated respondents are written; empty skips
	Verbose    bool
}

// Validate checks the config.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url must not be empty"))
	case c.Sessions < 1:
		return errors.Join(ErrInvalidConfig, errors.New("sessions must be at least 1"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be at least 1"))
	case c.Timeout <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("timeout must be positive"))
	}
	return nil
}

// Respondent is one simulated person and the answers they will give.
type Respondent struct {
	SubmissionID string             `json:"submissionId"`
	Persona      string             `json:"persona"`
	User         session.UserInfo   `json:"user"`
	Responses    []scoring.Response `json:"responses"`
	Experience   int                `json:"experience"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Completed  int
	Saved      int
	Emailed    int
	Failed     int
	Duplicates int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
