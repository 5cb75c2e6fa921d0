package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/impactwon/checkin/internal/domain/model"
)

const (
	defaultPageLimit = 50
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AssessmentsHandler reads and exports stored assessments.
type AssessmentsHandler struct {
	deps AssessmentDependencies
	now  func() time.Time
}

// NewAssessmentsHandler creates an assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, now: time.Now}
}

// HandleList handles GET /assessments?limit=&offset=.
func (h *AssessmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_assessments"
	limit, offset, err := pageQuery(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	records, err := h.deps.ListAssessments(r.Context(), limit, offset)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":  records,
		"limit":  limit,
		"offset": offset,
	})
}

// HandleGet handles GET /assessments/{id}.
func (h *AssessmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.GetAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_assessment", err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleExport handles GET /assessments/export.xlsx. The workbook is built
// in memory so a failure can still be reported as JSON.
func (h *AssessmentsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	var buf bytes.Buffer
	if _, err := h.deps.ExportAssessments(r.Context(), &buf); err != nil {
		writeFailure(w, WrapKind(op, ErrExport, err))
		return
	}
	name := fmt.Sprintf("assessments-%s.xlsx", h.now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func pageQuery(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageLimit
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("limit %q: %w", v, err)
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("offset %q: %w", v, err)
		}
	}
	return limit, offset, nil
}
