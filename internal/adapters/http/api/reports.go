package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/domain/model"
)

// ReportDependencies store and fetch analysis reports.
type ReportDependencies interface {
	SaveReport(ctx context.Context, in model.ReportInput) (model.StoredReport, error)
	AnalyzeAndSave(ctx context.Context, name, fileName string, distanceKm float64, t csvio.Table) (model.StoredReport, error)
	Report(ctx context.Context, id string) (model.StoredReport, error)
	Reports(ctx context.Context) ([]model.ReportSummary, error)
}

// ReportsHandler handles report requests.
type ReportsHandler struct {
	deps ReportDependencies
	body bodyReader
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies, body bodyReader) *ReportsHandler {
	return &ReportsHandler{deps: deps, body: body}
}

// HandleSave handles POST /reports with a JSON report body.
func (h *ReportsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_report"
	data, err := h.body.read(w, r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	var in model.ReportInput
	if err := json.Unmarshal(data, &in); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	saved, err := h.deps.SaveReport(r.Context(), in)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// HandleSaveCSV handles POST /reports/csv?nombre=&distance_km=&file_name= requests.
func (h *ReportsHandler) HandleSaveCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_report_csv"
	km, err := floatParam(r, "distance_km")
	if err != nil {
		writeFailure(w, err)
		return
	}
	t, err := h.body.table(w, r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	q := r.URL.Query()
	saved, err := h.deps.AnalyzeAndSave(r.Context(), strings.TrimSpace(q.Get("nombre")), q.Get("file_name"), km, t)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// HandleList handles GET /reports requests.
func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Reports(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.list_reports", err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /reports/{id} requests.
func (h *ReportsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_report", err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
