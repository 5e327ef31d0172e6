// Package sequence orders matches for the ledger and for display.
package sequence

import (
	"cmp"
	"slices"

	"github.com/okian/robonalysis/internal/domain/model"
)

// Timeline is the ordered match sequence of one event.
type Timeline struct {
	EventID string
	Matches []model.Match
}

// Ascending returns a copy sorted by EffectiveTime, oldest first. Equal times
// keep their input order. This is the only order the ledger accepts.
func Ascending(matches []model.Match) []model.Match {
	out := slices.Clone(matches)
	slices.SortStableFunc(out, func(a, b model.Match) int {
		return cmp.Compare(a.EffectiveTime, b.EffectiveTime)
	})
	return out
}

// NewestFirst returns a copy sorted by EffectiveTime, newest first, for
// display. Equal times keep their input order.
func NewestFirst(matches []model.Match) []model.Match {
	out := slices.Clone(matches)
	slices.SortStableFunc(out, func(a, b model.Match) int {
		return cmp.Compare(b.EffectiveTime, a.EffectiveTime)
	})
	return out
}

// GroupByEvent partitions matches by event id, preserving input order within
// each group. Matches without an event id are dropped. Groups are returned in
// first-seen order.
func GroupByEvent(matches []model.Match) []Timeline {
	index := make(map[string]int)
	var groups []Timeline
	for _, m := range matches {
		if m.EventID == "" {
			continue
		}
		i, ok := index[m.EventID]
		if !ok {
			i = len(groups)
			index[m.EventID] = i
			groups = append(groups, Timeline{EventID: m.EventID})
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}
	return groups
}

// Timelines groups matches by event and sorts each group ascending.
func Timelines(matches []model.Match) []Timeline {
	groups := GroupByEvent(matches)
	for i := range groups {
		groups[i].Matches = Ascending(groups[i].Matches)
	}
	return groups
}

// EventIDs lists the distinct event ids in first-seen order.
func EventIDs(matches []model.Match) []string {
	groups := GroupByEvent(matches)
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.EventID)
	}
	return ids
}
