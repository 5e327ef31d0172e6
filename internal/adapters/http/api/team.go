package api

import (
	"context"
	"net/http"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/types"
	"github.com/okian/robonalysis/pkg/logger"
)

// TeamDependencies defines the team-scoped operations.
type TeamDependencies interface {
	Team(ctx context.Context, id, number string) ([]model.Team, error)
	TeamMatches(ctx context.Context, teamID string) ([]model.Match, error)
	ComputeMatchContext(ctx context.Context, teamID string) (*model.MatchContext, error)
	TeamEvents(ctx context.Context, teamID string, limit int) ([]model.Event, error)
	TeamRankings(ctx context.Context, teamID, seasonID string) (map[string]model.EventRank, error)
	TeamPerformance(ctx context.Context, teamID string) (model.Performance, error)
	TeamSkills(ctx context.Context, teamID string, eventIDs []string) (model.TeamSkills, error)
	TeamAwards(ctx context.Context, teamID string, eventIDs []string) ([]model.Award, error)
}

// TeamHandler handles /api/team requests.
type TeamHandler struct {
	deps   TeamDependencies
	logger logger.Logger
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies, l logger.Logger) *TeamHandler {
	return &TeamHandler{deps: deps, logger: l}
}

func teamID(r *http.Request) (string, error) {
	id := query(r, "teamId", "team_id", "id")
	if id == "" {
		return "", badRequest("missing teamId")
	}
	return id, nil
}

// HandleTeam handles GET /api/team?teamId= or ?number=.
func (h *TeamHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, number := query(r, "teamId", "team_id", "id"), query(r, "number")
	if id == "" && number == "" {
		respondError(w, badRequest("missing teamId or number"))
		return
	}
	teams, err := h.deps.Team(r.Context(), id, number)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewList(teams))
}

// HandleTeamMatches handles GET /api/team/matches?teamId=.
func (h *TeamHandler) HandleTeamMatches(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	matches, err := h.deps.TeamMatches(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewList(matches))
}

// HandleMatchContext handles GET /api/team/matches/context?teamId=.
func (h *TeamHandler) HandleMatchContext(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	mc, err := h.deps.ComputeMatchContext(r.Context(), id)
	if err != nil {
		h.logger.Warn(r.Context(), "match context failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("team_id", id),
			logger.Error(err),
		)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewContextResponse(mc))
}

// HandleTeamEvents handles GET /api/team/events?teamId=&limit=.
func (h *TeamHandler) HandleTeamEvents(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
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
	events, err := h.deps.TeamEvents(r.Context(), id, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewList(events))
}

// HandleTeamRankings handles GET /api/team/rankings?teamId=&seasonId=.
func (h *TeamHandler) HandleTeamRankings(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ranks, err := h.deps.TeamRankings(r.Context(), id, query(r, "seasonId", "season_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if ranks == nil {
		ranks = map[string]model.EventRank{}
	}
	writeJSON(w, http.StatusOK, types.RankingsResponse{Data: ranks})
}

// HandleTeamPerformance handles GET /api/team/performance?teamId=.
func (h *TeamHandler) HandleTeamPerformance(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	perf, err := h.deps.TeamPerformance(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

// HandleTeamSkills handles GET /api/team/skills?teamId=&eventIds=.
// Event ids may be repeated or comma-separated.
func (h *TeamHandler) HandleTeamSkills(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	skills, err := h.deps.TeamSkills(r.Context(), id, queryList(r, "eventIds", "event[]"))
	if err != nil {
		respondError(w, err)
		return
	}
	if skills.Rows == nil {
		skills.Rows = []model.SkillRow{}
	}
	if skills.Events == nil {
		skills.Events = []model.EventSkills{}
	}
	writeJSON(w, http.StatusOK, skills)
}

// HandleTeamAwards handles GET /api/team/awards?teamId=&eventIds=.
func (h *TeamHandler) HandleTeamAwards(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	id, err := teamID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	awards, err := h.deps.TeamAwards(r.Context(), id, queryList(r, "eventIds", "event[]"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewList(awards))
}
