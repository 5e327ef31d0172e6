package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	ErrMissingTeamID  = errors.New("team id is required")
	ErrMissingEventID = errors.New("event id is required")
	ErrMissingLookup  = errors.New("team id or number is required")
	ErrNoUpstream     = errors.New("no upstream client configured")
)

// ComputationError reports that the primary team's own matches could not be
// fetched, so no context can be produced.
type ComputationError struct {
	TeamID string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("compute match context for team %s: %v", e.TeamID, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
