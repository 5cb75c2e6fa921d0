package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/pkg/logger"
)

const outputFilePermission = 0o600

type sessionView struct {
	ID string `json:"id"`
}

type submitResult struct {
	SubmissionID string `json:"submissionId"`
	Saved        bool   `json:"saved"`
	Emailed      bool   `json:"emailed"`
	Duplicate    bool   `json:"duplicate"`
	Error        string `json:"error"`
}

// outcome is what one simulated respondent achieved.
type outcome struct {
	respondent Respondent
	result     submitResult
	err        error
}

// Run simulates cfg.Sessions respondents and verifies the stored results.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	var cat catalog.Catalog
	if err := c.do(ctx, http.MethodGet, "/competencies", nil, &cat); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	respondents := newGenerator(&cat, seed).respondents(cfg.Sessions)
	stats.Generated = len(respondents)
	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", seed))

	if cfg.OutputFile != "" {
		if err := saveRespondents(cfg.OutputFile, respondents); err != nil {
			log.Warn(ctx, "failed to save respondents", logger.Error(err))
		}
	}

	outcomes := runSessions(ctx, c, cfg, respondents, log)
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			stats.Failed++
			if cfg.Verbose {
				log.Warn(ctx, "session failed", logger.String("email", o.respondent.User.Email), logger.Error(o.err))
			}
		default:
			stats.Completed++
			if o.result.Saved {
				stats.Saved++
			}
			if o.result.Emailed {
				stats.Emailed++
			}
		}
	}

	dups, err := verify(ctx, c, outcomes, stats)
	stats.Duplicates = dups
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "load test finished",
		logger.Int("completed", stats.Completed),
		logger.Int("saved", stats.Saved),
		logger.Int("emailed", stats.Emailed),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
	return stats, err
}

// runSessions fans respondents out to cfg.Workers workers.
func runSessions(ctx context.Context, c *client, cfg *Config, respondents []Respondent, log logger.Logger) []outcome {
	outcomes := make([]outcome, len(respondents))
	jobs := make(chan int, cfg.Workers*2)
	var done atomic.Int64
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := runSession(ctx, c, respondents[i])
				outcomes[i] = outcome{respondent: respondents[i], result: res, err: err}
				if n := done.Add(1); cfg.Verbose && n%100 == 0 {
					log.Info(ctx, "progress", logger.Int("done", int(n)), logger.Int("total", len(respondents)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range respondents {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	for i := range outcomes {
		if outcomes[i].respondent.SubmissionID == "" {
			outcomes[i] = outcome{respondent: respondents[i], err: ctx.Err()}
		}
	}
	return outcomes
}

// runSession walks one respondent through the check-in the way the UI does:
// a few answers per request, then the experience rating, the results, and
// the submission.
func runSession(ctx context.Context, c *client, r Respondent) (submitResult, error) {
	var res submitResult
	var view sessionView
	if err := c.do(ctx, http.MethodPost, "/sessions", map[string]any{"user": r.User}, &view); err != nil {
		return res, err
	}
	base := "/sessions/" + view.ID

	for _, page := range pages(r.Responses) {
		if err := c.do(ctx, http.MethodPut, base+"/responses", map[string]any{"responses": page}, nil); err != nil {
			return res, err
		}
	}
	if err := c.do(ctx, http.MethodPut, base+"/experience", map[string]int{"rating": r.Experience}, nil); err != nil {
		return res, err
	}
	if err := c.do(ctx, http.MethodGet, base+"/results", nil, nil); err != nil {
		return res, err
	}
	if err := c.do(ctx, http.MethodPost, base+"/submit", map[string]string{"submissionId": r.SubmissionID}, &res); err != nil {
		return res, err
	}
	return res, nil
}

// pages splits responses into runs of at most pageSize answers.
func pages(responses []scoring.Response) [][]scoring.Response {
	const pageSize = 5
	var out [][]scoring.Response
	for len(responses) > 0 {
		n := min(pageSize, len(responses))
		out = append(out, responses[:n])
		responses = responses[n:]
	}
	return out
}

func saveRespondents(path string, respondents []Respondent) error {
	data, err := json.MarshalIndent(respondents, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal respondents: %w", err)
	}
	if err := os.WriteFile(path, data, outputFilePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
