// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/adapters/repository"
	"github.com/okian/ritmo/internal/domain/model"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FileDependencies
	ReportDependencies
	RaceDependencies
	LeaderboardDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	filesHandler       *FilesHandler
	reportsHandler     *ReportsHandler
	racesHandler       *RacesHandler
	leaderboardHandler *LeaderboardHandler
}

// Option configures a Server.
type Option func(*options)

type options struct {
	maxUploadBytes int64
}

// WithMaxUploadBytes caps the size of request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&o)
	}
	body := bodyReader{limit: o.maxUploadBytes}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		filesHandler:       NewFilesHandler(deps, body),
		reportsHandler:     NewReportsHandler(deps, body),
		racesHandler:       NewRacesHandler(deps, body),
		leaderboardHandler: NewLeaderboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /normalize", MetricsMiddleware(s.filesHandler.HandleNormalize, "normalize"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.filesHandler.HandleAnalyze, "analyze"))

	mux.HandleFunc("GET /reports", MetricsMiddleware(s.reportsHandler.HandleList, "reports"))
	mux.HandleFunc("POST /reports", MetricsMiddleware(s.reportsHandler.HandleSave, "reports"))
	mux.HandleFunc("POST /reports/csv", MetricsMiddleware(s.reportsHandler.HandleSaveCSV, "reports_csv"))
	mux.HandleFunc("GET /reports/{id}", MetricsMiddleware(s.reportsHandler.HandleGet, "report"))

	mux.HandleFunc("POST /races/results", MetricsMiddleware(s.racesHandler.HandleIngest, "race_results"))
	mux.HandleFunc("GET /races", MetricsMiddleware(s.racesHandler.HandleList, "races"))
	mux.HandleFunc("GET /races/{id}/analysis", MetricsMiddleware(s.racesHandler.HandleOverview, "race_analysis"))
	mux.HandleFunc("GET /races/{id}/pace-ranges", MetricsMiddleware(s.racesHandler.HandlePaceRanges, "race_pace_ranges"))
	mux.HandleFunc("GET /races/{id}/categories", MetricsMiddleware(s.racesHandler.HandleCategories, "race_categories"))
	mux.HandleFunc("GET /races/{id}/top-gender", MetricsMiddleware(s.leaderboardHandler.HandleTopGender, "race_top_gender"))
	mux.HandleFunc("GET /races/{id}/top-category", MetricsMiddleware(s.leaderboardHandler.HandleTopCategory, "race_top_category"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ingestFailure is the error body of an upload where no row was stored.
type ingestFailure struct {
	errorResponse
	Omitted int `json:"omitidos"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status code and error body.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, csvio.ErrNoHeaders), errors.Is(err, csvio.ErrMalformed):
		return http.StatusBadRequest, "invalid_csv"
	case errors.Is(err, model.ErrDuplicateUpload):
		return http.StatusConflict, "duplicate_upload"
	case errors.Is(err, model.ErrNothingInserted):
		return http.StatusBadRequest, "no_valid_results"
	case errors.Is(err, model.ErrReportVersion):
		return http.StatusBadRequest, "unsupported_schema_version"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidDistance),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, repository.ErrEmptyName):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// bodyReader reads request bodies up to a fixed limit.
type bodyReader struct {
	limit int64
}

func (b bodyReader) read(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, b.limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind("api.read_body", ErrPayloadTooLarge, err)
		}
		return nil, WrapKind("api.read_body", ErrBadRequest, err)
	}
	return data, nil
}

func (b bodyReader) table(w http.ResponseWriter, r *http.Request) (csvio.Table, error) {
	data, err := b.read(w, r)
	if err != nil {
		return csvio.Table{}, err
	}
	return csvio.Read(bytes.NewReader(data))
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, WrapKind("api.query", ErrBadRequest, errors.New("invalid "+name))
	}
	return v, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapKind("api.query", ErrBadRequest, errors.New("invalid "+name))
	}
	return v, nil
}

func raceID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, WrapKind("api.race_id", ErrBadRequest, errors.New("invalid race id"))
	}
	return id, nil
}
