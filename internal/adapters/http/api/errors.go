package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/impactwon/checkin/internal/adapters/repository"
	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/domain/session"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrValidation = errors.New("validation failed")
	ErrExport     = errors.New("export failed")
)

// Error records the handler operation and the kind of an API failure.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind reports a failure of kind in op with no underlying cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap annotates err with op only. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// classify picks the status and code reported for err.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrValidation),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrInvalidResponse),
		errors.Is(err, service.ErrInvalidExperience),
		errors.Is(err, service.ErrInvalidRadar),
		errors.Is(err, session.ErrInvalidExperience):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrMissingUser),
		errors.Is(err, service.ErrMissingExperience),
		errors.Is(err, service.ErrIncompleteResponses):
		return http.StatusConflict, "incomplete_session"
	case errors.Is(err, service.ErrSubmissionInFlight):
		return http.StatusConflict, "in_flight"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
