package api

import (
	"context"
	"net/http"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/types"
	"github.com/okian/robonalysis/pkg/logger"
)

// EventDependencies defines the event-scoped operations.
type EventDependencies interface {
	EventMatches(ctx context.Context, eventID string) ([]model.Match, error)
	EventStandings(ctx context.Context, eventID string, limit int) (model.EventStandings, error)
}

// EventHandler handles /api/event requests.
type EventHandler struct {
	deps   EventDependencies
	logger logger.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(deps EventDependencies, l logger.Logger) *EventHandler {
	return &EventHandler{deps: deps, logger: l}
}

func eventID(r *http.Request) (string, error) {
	id := query(r, "eventId", "event_id", "id")
	if id == "" {
		return "", badRequest("missing eventId")
	}
	return id, nil
}

// HandleEventMatches handles GET /api/event/matches?eventId=.
func (h *EventHandler) HandleEventMatches(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := eventID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	matches, err := h.deps.EventMatches(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewList(matches))
}

// HandleEventStandings handles GET /api/event/standings?eventId=&limit=.
// limit keeps the top rows; absent or 0 returns the whole table.
func (h *EventHandler) HandleEventStandings(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := eventID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, err)
		return
	}
	if limit < 0 {
		respondError(w, badRequest("limit must not be negative"))
		return
	}
	st, err := h.deps.EventStandings(r.Context(), id, limit)
	if err != nil {
		h.logger.Warn(r.Context(), "event standings failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("event_id", id),
			logger.Error(err),
		)
		respondError(w, err)
		return
	}
	if st.Standings == nil {
		st.Standings = []model.Standing{}
	}
	writeJSON(w, http.StatusOK, st)
}
