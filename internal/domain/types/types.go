// Package types contains the request and response shapes shared by the HTTP
// API and the MCP tools.
package types

import "github.com/okian/robonalysis/internal/domain/model"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// List wraps a collection in the {data: [...]} envelope.
type List[T any] struct {
	Data []T `json:"data"`
}

// NewList builds a List and never returns a null data array.
func NewList[T any](items []T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Data: items}
}

// ContextResponse is the body of GET /api/team/matches/context.
type ContextResponse struct {
	TeamID    string                         `json:"teamId"`
	Matches   []model.Match                  `json:"matches"`
	Context   map[string]model.ContextRecord `json:"context"`
	Degraded  []string                       `json:"degraded"`
	Standings map[string][]model.Standing    `json:"standings"`
	Ranks     map[string]model.Standing      `json:"ranks"`
}

// NewContextResponse converts a computed match context, replacing nil
// collections with empty ones.
func NewContextResponse(mc *model.MatchContext) ContextResponse {
	resp := ContextResponse{
		TeamID:    mc.TeamID,
		Matches:   mc.Matches,
		Context:   mc.Context,
		Degraded:  mc.Degraded,
		Standings: mc.Standings,
		Ranks:     mc.Ranks,
	}
	if resp.Matches == nil {
		resp.Matches = []model.Match{}
	}
	if resp.Context == nil {
		resp.Context = map[string]model.ContextRecord{}
	}
	if resp.Degraded == nil {
		resp.Degraded = []string{}
	}
	if resp.Standings == nil {
		resp.Standings = map[string][]model.Standing{}
	}
	if resp.Ranks == nil {
		resp.Ranks = map[string]model.Standing{}
	}
	return resp
}

// RankingsResponse maps event id to the best ranking row for that event.
type RankingsResponse struct {
	Data map[string]model.EventRank `json:"data"`
}

// UnlockRequest is the body of POST /api/unlock.
type UnlockRequest struct {
	Passcode string `json:"passcode"`
}

// UnlockResponse acknowledges a successful unlock.
type UnlockResponse struct {
	OK bool `json:"ok"`
}
