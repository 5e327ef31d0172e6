// Package dedupe collapses repeated match records to one per identity.
package dedupe

import (
	"github.com/okian/robonalysis/internal/domain/model"
)

// Set merges match records by identity, keeping the most recent record for
// each. Records with equal recency replace earlier ones, so ties are decided
// by the order records are added. Set is not safe for concurrent use.
type Set struct {
	index   map[string]int
	matches []model.Match
	recency func(model.Match) int64
}

// NewSet creates an empty Set.
func NewSet(opts ...Option) *Set {
	s := &Set{
		index:   make(map[string]int),
		recency: effectiveTime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add merges m into the set. It returns true when m was stored, either as a
// new identity or as a replacement for an older record.
func (s *Set) Add(m model.Match) bool {
	i, exists := s.index[m.ID]
	if !exists {
		s.index[m.ID] = len(s.matches)
		s.matches = append(s.matches, m)
		return true
	}
	if s.recency(m) >= s.recency(s.matches[i]) {
		s.matches[i] = m
		return true
	}
	return false
}

// AddAll merges every record in order.
func (s *Set) AddAll(matches []model.Match) {
	for _, m := range matches {
		s.Add(m)
	}
}

// Matches returns one record per identity in first-seen identity order.
func (s *Set) Matches() []model.Match {
	out := make([]model.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// Len returns the number of distinct identities.
func (s *Set) Len() int {
	return len(s.matches)
}

// Latest deduplicates matches in a single left-to-right scan.
func Latest(matches []model.Match, opts ...Option) []model.Match {
	s := NewSet(opts...)
	s.AddAll(matches)
	return s.Matches()
}

func effectiveTime(m model.Match) int64 {
	return m.EffectiveTime
}
