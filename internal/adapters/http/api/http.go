// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
	"github.com/impactwon/checkin/pkg/logger"
)

// maxBodyBytes caps request bodies. A submission carries a base64 chart image.
const maxBodyBytes = 8 << 20

// SessionDependencies drive a respondent through one assessment.
type SessionDependencies interface {
	StartSession(ctx context.Context, user *session.UserInfo) (*service.SessionView, error)
	GetSession(ctx context.Context, id string) (*service.SessionView, error)
	SetUser(ctx context.Context, id string, user session.UserInfo) (*service.SessionView, error)
	Answer(ctx context.Context, id string, responses ...scoring.Response) (*service.SessionView, error)
	SetExperience(ctx context.Context, id string, rating int) (*service.SessionView, error)
	Results(ctx context.Context, id string, req service.RadarRequest) (*service.Results, error)
	Submit(ctx context.Context, id string, req service.SubmitRequest) (*model.Result, error)
	Abandon(ctx context.Context, id string) error
}

// AssessmentDependencies read what has been submitted.
type AssessmentDependencies interface {
	ListAssessments(ctx context.Context, limit, offset int) ([]model.Record, error)
	GetAssessment(ctx context.Context, id string) (model.Record, error)
	ExportAssessments(ctx context.Context, w io.Writer) (int, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	AssessmentDependencies
	StatsProvider

	Catalog() *catalog.Catalog
	Score(ctx context.Context, responses []scoring.Response, req service.RadarRequest) (*service.Results, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	catalogHandler    *CatalogHandler
	sessionsHandler   *SessionsHandler
	assessmentHandler *AssessmentsHandler
	corsOrigins       []string
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = append([]string(nil), origins...)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	v := validator.New()
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		catalogHandler:    NewCatalogHandler(deps, v),
		sessionsHandler:   NewSessionsHandler(deps, v),
		assessmentHandler: NewAssessmentsHandler(deps),
		corsOrigins:       []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a chi router with every route and the shared middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware)
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/competencies", s.catalogHandler.HandleGetCatalog)
	r.Post("/scores", s.catalogHandler.HandleScore)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.sessionsHandler.HandleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.sessionsHandler.HandleGet)
			r.Delete("/", s.sessionsHandler.HandleAbandon)
			r.Put("/user", s.sessionsHandler.HandleSetUser)
			r.Put("/responses", s.sessionsHandler.HandleAnswer)
			r.Put("/experience", s.sessionsHandler.HandleSetExperience)
			r.Get("/results", s.sessionsHandler.HandleResults)
			r.Post("/submit", s.sessionsHandler.HandleSubmit)
		})
	})

	r.Route("/assessments", func(r chi.Router) {
		r.Get("/", s.assessmentHandler.HandleList)
		r.Get("/export.xlsx", s.assessmentHandler.HandleExport)
		r.Get("/{id}", s.assessmentHandler.HandleGet)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before the header is sent, so a value that cannot be
// encoded is reported as a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Get().Error(context.Background(), "failed to encode response",
			logger.Int("status", status), logger.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "response could not be encoded"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and code and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when optional is set and leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := v.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
