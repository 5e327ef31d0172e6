// Package cache provides the short-lived response cache for upstream
// resources. The cache is an optimization only; a miss or a failing backend
// changes latency, never results.
package cache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

// Sentinel kinds for cache errors.
var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrBackend     = errors.New("cache backend failed")
	ErrUnsupported = errors.New("unsupported cache backend")
)

// Cache stores opaque values under resource keys for a bounded time.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge drops expired entries and returns how many were removed.
	Purge(ctx context.Context) (int, error)
	// Name identifies the backend in logs and metrics.
	Name() string
	// Close releases backend resources.
	Close() error
}

// TeamMatchesKey is the key for a team's normalized match list.
func TeamMatchesKey(teamID string) string { return "team:" + teamID + ":matches" }

// EventMatchesKey is the key for an event's normalized match list.
func EventMatchesKey(eventID string) string { return "event:" + eventID + ":matches" }

// TeamKey is the key for a team lookup by id or number.
func TeamKey(id, number string) string { return "team:" + id + ":number:" + number }

// TeamEventsKey is the key for a team's event list.
func TeamEventsKey(teamID string) string { return "team:" + teamID + ":events" }

// TeamRankingsKey is the key for a team's ranking rows in a season.
func TeamRankingsKey(teamID, seasonID string) string {
	return "team:" + teamID + ":rankings:" + seasonID
}

// TeamSkillsKey is the key for a team's skills rows filtered by eventIDs.
func TeamSkillsKey(teamID string, eventIDs []string) string {
	return "team:" + teamID + ":skills:" + idSet(eventIDs)
}

// TeamAwardsKey is the key for a team's awards filtered by eventIDs.
func TeamAwardsKey(teamID string, eventIDs []string) string {
	return "team:" + teamID + ":awards:" + idSet(eventIDs)
}

// SeasonsKey is the key for a season list filtered by program and team.
func SeasonsKey(programIDs, teamIDs []string) string {
	return "seasons:program:" + idSet(programIDs) + ":team:" + idSet(teamIDs)
}

// idSet renders ids order-independently so equal filters share a key.
func idSet(ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ",")
}
