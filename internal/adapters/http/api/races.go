package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/ritmo/internal/domain/model"
)

// RaceDependencies ingest results and analyze stored races.
type RaceDependencies interface {
	Ingest(ctx context.Context, race model.Race, content []byte) (model.IngestResult, error)
	Races(ctx context.Context) ([]model.Race, error)
	RaceOverview(ctx context.Context, raceID int64) (model.RaceOverview, error)
	PaceShares(ctx context.Context, raceID int64) (model.PaceShares, error)
	CategoryPaces(ctx context.Context, raceID int64) ([]model.CategoryPace, error)
}

// RacesHandler handles race requests.
type RacesHandler struct {
	deps RaceDependencies
	body bodyReader
}

// NewRacesHandler creates a new races handler.
func NewRacesHandler(deps RaceDependencies, body bodyReader) *RacesHandler {
	return &RacesHandler{deps: deps, body: body}
}

// HandleIngest handles POST /races/results?nombre=&fecha=&distancia=&ascenso_total= requests.
// The body is the raw results CSV.
func (h *RacesHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest_results"
	q := r.URL.Query()
	race := model.Race{Name: strings.TrimSpace(q.Get("nombre")), Date: strings.TrimSpace(q.Get("fecha"))}
	if race.Name == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, errors.New("missing nombre")))
		return
	}
	var err error
	if race.DistanceKm, err = floatParam(r, "distancia"); err != nil {
		writeFailure(w, err)
		return
	}
	if race.AscentM, err = floatParam(r, "ascenso_total"); err != nil {
		writeFailure(w, err)
		return
	}
	content, err := h.body.read(w, r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	res, err := h.deps.Ingest(r.Context(), race, content)
	if errors.Is(err, model.ErrNothingInserted) {
		err = Wrap(op, err)
		status, code := classify(err)
		writeJSON(w, status, ingestFailure{
			errorResponse: errorResponse{Code: code, Message: err.Error()},
			Omitted:       res.Omitted,
		})
		return
	}
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleList handles GET /races requests.
func (h *RacesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	races, err := h.deps.Races(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.list_races", err))
		return
	}
	writeJSON(w, http.StatusOK, races)
}

// HandleOverview handles GET /races/{id}/analysis requests.
func (h *RacesHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	serveRace(w, r, "api.race_analysis", h.deps.RaceOverview)
}

// HandlePaceRanges handles GET /races/{id}/pace-ranges requests.
func (h *RacesHandler) HandlePaceRanges(w http.ResponseWriter, r *http.Request) {
	serveRace(w, r, "api.race_pace_ranges", h.deps.PaceShares)
}

// HandleCategories handles GET /races/{id}/categories requests.
func (h *RacesHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	serveRace(w, r, "api.race_categories", h.deps.CategoryPaces)
}

func serveRace[T any](w http.ResponseWriter, r *http.Request, op string, get func(context.Context, int64) (T, error)) {
	id, err := raceID(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	v, err := get(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
