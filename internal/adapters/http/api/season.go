package api

import (
	"context"
	"net/http"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/types"
)

// SeasonDependencies defines the season lookup.
type SeasonDependencies interface {
	Seasons(ctx context.Context, programIDs, teamIDs []string) ([]model.Season, error)
}

// SeasonHandler handles /api/seasons requests.
type SeasonHandler struct {
	deps SeasonDependencies
}

// NewSeasonHandler creates a new season handler.
func NewSeasonHandler(deps SeasonDependencies) *SeasonHandler {
	return &SeasonHandler{deps: deps}
}

// HandleSeasons handles GET /api/seasons?programIds=&teamIds=. Both filters
// are optional and accept repeated or comma-separated ids.
func (h *SeasonHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	seasons, err := h.deps.Seasons(r.Context(),
		queryList(r, "programIds", "program[]"),
		queryList(r, "teamIds", "team[]"),
	)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewList(seasons))
}
