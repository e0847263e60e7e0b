package api

import (
	"context"
	"net/http"

	"github.com/okian/ritmo/internal/domain/model"
)

// LeaderboardDependencies defines the interface for race rankings.
type LeaderboardDependencies interface {
	TopByGender(ctx context.Context, raceID int64, n int) (model.GenderTop, error)
	TopByCategory(ctx context.Context, raceID int64, n int) ([]model.Ranked, error)
}

// LeaderboardHandler handles ranking requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleTopGender handles GET /races/{id}/top-gender?limit=N requests.
func (h *LeaderboardHandler) HandleTopGender(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.top_gender", func(ctx context.Context, id int64, n int) (any, error) {
		return h.deps.TopByGender(ctx, id, n)
	})
}

// HandleTopCategory handles GET /races/{id}/top-category?limit=N requests.
func (h *LeaderboardHandler) HandleTopCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.top_category", func(ctx context.Context, id int64, n int) (any, error) {
		return h.deps.TopByCategory(ctx, id, n)
	})
}

func (h *LeaderboardHandler) serve(w http.ResponseWriter, r *http.Request, op string, top func(context.Context, int64, int) (any, error)) {
	id, err := raceID(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	// Zero selects the configured default; the service caps large values.
	n, err := intParam(r, "limit")
	if err != nil {
		writeFailure(w, err)
		return
	}
	entries, err := top(r.Context(), id, n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
