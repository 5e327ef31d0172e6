// Package repository ranks per-event SP totals into standings.
package repository

import (
	"sort"

	"github.com/okian/robonalysis/internal/domain/ledger"
	"github.com/okian/robonalysis/internal/domain/model"
)

// Board is an immutable SP table for one event.
//
// Ordering: SP DESC, then team id ASC (deterministic). Teams with equal SP
// share a rank and the next rank skips accordingly (1, 1, 3).
type Board struct {
	eventID string
	rows    []model.Standing
	byID    map[string]int
}

// NewBoard ranks the totals of one replayed event.
func NewBoard(eventID string, totals []ledger.TeamSP) *Board {
	type keyed struct {
		fp  scoreFP
		row model.Standing
	}
	ks := make([]keyed, 0, len(totals))
	for _, t := range totals {
		ks = append(ks, keyed{
			fp:  toFixedPoint(t.SP),
			row: model.Standing{TeamID: t.TeamID, Name: t.Name, SP: t.SP, Matches: t.Matches},
		})
	}
	sort.Slice(ks, func(i, j int) bool {
		return less(ks[i].fp, ks[i].row.TeamID, ks[j].fp, ks[j].row.TeamID)
	})

	b := &Board{
		eventID: eventID,
		rows:    make([]model.Standing, len(ks)),
		byID:    make(map[string]int, len(ks)),
	}
	for i, k := range ks {
		k.row.Rank = i + 1
		if i > 0 && k.fp == ks[i-1].fp {
			k.row.Rank = b.rows[i-1].Rank
		}
		b.rows[i] = k.row
		b.byID[k.row.TeamID] = i
	}
	return b
}

// EventID returns the event the board ranks.
func (b *Board) EventID() string { return b.eventID }

// Standings returns a copy of every row in rank order.
func (b *Board) Standings() []model.Standing {
	out := make([]model.Standing, len(b.rows))
	copy(out, b.rows)
	return out
}

// Rank returns the row for teamID, or ErrNotFound.
func (b *Board) Rank(teamID string) (model.Standing, error) {
	i, ok := b.byID[teamID]
	if !ok {
		return model.Standing{}, ErrNotFound
	}
	return b.rows[i], nil
}

// TopN returns the first n rows. n must be positive.
func (b *Board) TopN(n int) ([]model.Standing, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	if n > len(b.rows) {
		n = len(b.rows)
	}
	out := make([]model.Standing, n)
	copy(out, b.rows[:n])
	return out, nil
}

// Count returns the number of ranked teams.
func (b *Board) Count() int { return len(b.rows) }
