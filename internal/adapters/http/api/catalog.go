package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/impactwon/checkin/internal/app"
	"github.com/impactwon/checkin/internal/domain/catalog"
	"github.com/impactwon/checkin/internal/domain/scoring"
)

// CatalogDependencies expose the questionnaire and stateless scoring.
type CatalogDependencies interface {
	Catalog() *catalog.Catalog
	Score(ctx context.Context, responses []scoring.Response, req service.RadarRequest) (*service.Results, error)
}

// scoreRequest is the body of POST /scores.
type scoreRequest struct {
	Responses []scoring.Response `json:"responses" validate:"dive"`
	service.RadarRequest
}

// CatalogHandler serves the catalog and scores raw response sets.
type CatalogHandler struct {
	deps     CatalogDependencies
	validate *validator.Validate
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(deps CatalogDependencies, v *validator.Validate) *CatalogHandler {
	return &CatalogHandler{deps: deps, validate: v}
}

// HandleGetCatalog handles GET /competencies.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog())
}

// HandleScore handles POST /scores.
func (h *CatalogHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decode(w, r, h.validate, &req, false); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	res, err := h.deps.Score(r.Context(), req.Responses, req.RadarRequest)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
