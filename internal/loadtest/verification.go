package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/impactwon/checkin/internal/domain/model"
)

// maxSampled bounds how many stored assessments are read back.
const maxSampled = 10

// verify checks that saved submissions can be read back as submitted and
// that replaying a submission id is reported as a duplicate. It returns the
// number of duplicates observed.
func verify(ctx context.Context, c *client, outcomes []outcome, stats *Stats) (int, error) {
	var errs []error
	sampled, dups := 0, 0

	for _, o := range outcomes {
		if o.err != nil || !o.result.Saved || sampled == maxSampled {
			continue
		}
		sampled++
		var rec model.Record
		if err := c.do(ctx, http.MethodGet, "/assessments/"+o.respondent.SubmissionID, nil, &rec); err != nil {
			errs = append(errs, err)
			continue
		}
		if rec.Email != o.respondent.User.Email || rec.ExperienceRating != o.respondent.Experience {
			errs = append(errs, fmt.Errorf("%w: assessment %s stored as %s/%d, submitted %s/%d", ErrVerification,
				rec.ID, rec.Email, rec.ExperienceRating, o.respondent.User.Email, o.respondent.Experience))
		}
		if len(rec.Responses) != len(o.respondent.Responses) {
			errs = append(errs, fmt.Errorf("%w: assessment %s has %d responses, submitted %d", ErrVerification,
				rec.ID, len(rec.Responses), len(o.respondent.Responses)))
		}

		// the session is gone, so only the submission id can answer this
		var replay submitResult
		body := map[string]string{"submissionId": o.respondent.SubmissionID}
		if err := c.do(ctx, http.MethodPost, "/sessions/replay/submit", body, &replay); err != nil {
			errs = append(errs, err)
			continue
		}
		if !replay.Duplicate {
			errs = append(errs, fmt.Errorf("%w: replay of %s was not a duplicate", ErrVerification, o.respondent.SubmissionID))
			continue
		}
		dups++
	}

	var st struct {
		AssessmentsStored int `json:"assessmentsStored"`
	}
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &st); err != nil {
		errs = append(errs, err)
	} else if st.AssessmentsStored < stats.Saved {
		errs = append(errs, fmt.Errorf("%w: %d assessments stored, %d saved", ErrVerification, st.AssessmentsStored, stats.Saved))
	}
	return dups, errors.Join(errs...)
}
