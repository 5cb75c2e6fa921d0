package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
)

type startSessionRequest struct {
	User *session.UserInfo `json:"user,omitempty"`
}

type answerRequest struct {
	Responses []scoring.Response `json:"responses" validate:"required,min=1,dive"`
}

type experienceRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// SessionsHandler handles the assessment lifecycle of one respondent.
type SessionsHandler struct {
	deps     SessionDependencies
	validate *validator.Validate
}

// NewSessionsHandler creates a sessions handler.
func NewSessionsHandler(deps SessionDependencies, v *validator.Validate) *SessionsHandler {
	return &SessionsHandler{deps: deps, validate: v}
}

// HandleStart handles POST /sessions. The user block is optional.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req startSessionRequest
	if err := decode(w, r, h.validate, &req, true); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	view, err := h.deps.StartSession(r.Context(), req.User)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_session", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSetUser handles PUT /sessions/{id}/user.
func (h *SessionsHandler) HandleSetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_user"
	var user session.UserInfo
	if err := decode(w, r, h.validate, &user, false); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	view, err := h.deps.SetUser(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleAnswer handles PUT /sessions/{id}/responses.
func (h *SessionsHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.answer"
	var req answerRequest
	if err := decode(w, r, h.validate, &req, false); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	view, err := h.deps.Answer(r.Context(), chi.URLParam(r, "id"), req.Responses...)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSetExperience handles PUT /sessions/{id}/experience.
func (h *SessionsHandler) HandleSetExperience(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_experience"
	var req experienceRequest
	if err := decode(w, r, h.validate, &req, false); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	view, err := h.deps.SetExperience(r.Context(), chi.URLParam(r, "id"), req.Rating)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleResults handles GET /sessions/{id}/results?size=&levels=.
func (h *SessionsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.results"
	req, err := radarQuery(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeFailure(w, WrapKind(op, ErrValidation, err))
		return
	}
	res, err := h.deps.Results(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSubmit handles POST /sessions/{id}/submit. The body is optional.
// A submission whose steps ran reports 200 even when one of them failed;
// the result body says which.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	var req service.SubmitRequest
	if err := decode(w, r, h.validate, &req, true); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	res, err := h.deps.Submit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAbandon handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Abandon(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, Wrap("api.abandon", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func radarQuery(r *http.Request) (service.RadarRequest, error) {
	var req service.RadarRequest
	q := r.URL.Query()
	if v := q.Get("size"); v != "" {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("size %q: %w", v, err)
		}
		req.Size = size
	}
	if v := q.Get("levels"); v != "" {
		levels, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("levels %q: %w", v, err)
		}
		req.Levels = levels
	}
	return req, nil
}
