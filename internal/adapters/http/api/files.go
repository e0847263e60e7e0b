package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
)

// Output formats of POST /normalize.
const (
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// FileDependencies normalize and analyze uploaded files without storing them.
type FileDependencies interface {
	Normalize(ctx context.Context, p normalize.Profile, distanceKm float64, t csvio.Table) (normalize.Batch, error)
	Analyze(ctx context.Context, distanceKm float64, t csvio.Table) (model.Report, normalize.Batch, error)
}

// FilesHandler handles the stateless file endpoints.
type FilesHandler struct {
	deps FileDependencies
	body bodyReader
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(deps FileDependencies, body bodyReader) *FilesHandler {
	return &FilesHandler{deps: deps, body: body}
}

type normalizeResponse struct {
	Kept    int            `json:"kept"`
	Blank   int            `json:"blank"`
	Omitted int            `json:"omitted"`
	Rows    []model.Record `json:"rows"`
}

// HandleNormalize handles POST /normalize?distance_km=&profile=&format= requests.
func (h *FilesHandler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	const op = "api.normalize"
	q := r.URL.Query()

	profile := normalize.ReportProfile
	if name := strings.TrimSpace(q.Get("profile")); name != "" {
		p, ok := normalize.ProfileByName(name)
		if !ok {
			writeFailure(w, WrapKind(op, ErrBadRequest, errors.New("unknown profile "+name)))
			return
		}
		profile = p
	}
	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatCSV, FormatParquet:
	default:
		writeFailure(w, WrapKind(op, ErrBadRequest, errors.New("unknown format "+format)))
		return
	}
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
	b, err := h.deps.Normalize(r.Context(), profile, km, t)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}

	switch format {
	case FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="normalized.csv"`)
		if err := csvio.WriteCSV(w, b.Records); err != nil {
			writeFailure(w, Wrap(op, err))
		}
	case FormatParquet:
		data, err := csvio.MarshalParquet(b.Records)
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.apache.parquet")
		w.Header().Set("Content-Disposition", `attachment; filename="normalized.parquet"`)
		_, _ = w.Write(data)
	default:
		writeJSON(w, http.StatusOK, normalizeResponse{Kept: b.Kept, Blank: b.Blank, Omitted: b.Omitted, Rows: b.Records})
	}
}

// HandleAnalyze handles POST /analyze?distance_km= requests.
func (h *FilesHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
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
	report, _, err := h.deps.Analyze(r.Context(), km, t)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
