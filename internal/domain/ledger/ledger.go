// Package ledger replays an event timeline and accumulates strength points.
//
// A Ledger holds the SP of every team seen in one event. Each Apply reads the
// current SP of both alliances (SOS), then credits the lower alliance score
// to every team on the field. The snapshot for a match therefore never
// includes that match's own outcome.
//
// A Ledger is single-use per event and not safe for concurrent use; replays
// of different events share nothing and may run in parallel.
package ledger

import (
	"math"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/sequence"
)

// Step is the ledger's view of one rated match.
type Step struct {
	MatchID string
	EventID string
	Red     model.AllianceContext
	Blue    model.AllianceContext
	// Gain is nil when either alliance score is missing.
	Gain *float64
}

// TeamSP is a team's running total after a replay.
type TeamSP struct {
	TeamID  string
	Name    string
	SP      float64
	Matches int
}

// Ledger is the per-event SP state machine.
type Ledger struct {
	sp      map[string]float64
	played  map[string]int
	names   map[string]string
	order   []string
	steps   []Step
	skipped int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		sp:     make(map[string]float64),
		played: make(map[string]int),
		names:  make(map[string]string),
	}
}

// SP returns the current total for teamID; unseen teams are 0.
func (l *Ledger) SP(teamID string) float64 {
	return l.sp[teamID]
}

// Apply rates one match. ok is false when the match lacks a red and a blue
// alliance; such matches leave the state untouched.
func (l *Ledger) Apply(m model.Match) (Step, bool) {
	red, blue, ok := m.Sides()
	if !ok {
		l.skipped++
		return Step{}, false
	}

	step := Step{
		MatchID: m.ID,
		EventID: m.EventID,
		Red:     l.snapshot(red),
		Blue:    l.snapshot(blue),
	}
	if red.Score != nil && blue.Score != nil {
		gain := math.Min(*red.Score, *blue.Score)
		step.Gain = &gain
	}

	// An id listed more than once in a match, on either side, is credited once.
	credited := make(map[string]struct{}, len(red.Teams)+len(blue.Teams))
	for _, a := range [2]model.Alliance{red, blue} {
		for _, t := range a.Teams {
			if _, dup := credited[t.ID]; dup {
				continue
			}
			credited[t.ID] = struct{}{}
			l.register(t)
			l.played[t.ID]++
			if step.Gain != nil {
				l.sp[t.ID] += *step.Gain
			}
		}
	}

	l.steps = append(l.steps, step)
	return step, true
}

// Steps returns the rated steps in processing order.
func (l *Ledger) Steps() []Step {
	out := make([]Step, len(l.steps))
	copy(out, l.steps)
	return out
}

// Skipped returns how many matches could not be rated.
func (l *Ledger) Skipped() int {
	return l.skipped
}

// Totals returns every team's SP in first-seen order.
func (l *Ledger) Totals() []TeamSP {
	out := make([]TeamSP, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, TeamSP{
			TeamID:  id,
			Name:    l.names[id],
			SP:      l.sp[id],
			Matches: l.played[id],
		})
	}
	return out
}

func (l *Ledger) snapshot(a model.Alliance) model.AllianceContext {
	ctx := model.AllianceContext{Members: make([]model.MemberSP, 0, len(a.Teams))}
	if len(a.Teams) == 0 {
		return ctx
	}
	var sos float64
	for _, t := range a.Teams {
		prior := l.sp[t.ID]
		sos += prior
		ctx.Members = append(ctx.Members, model.MemberSP{TeamID: t.ID, PriorSP: prior})
	}
	ctx.SOS = &sos
	return ctx
}

func (l *Ledger) register(t model.TeamRef) {
	if _, seen := l.played[t.ID]; !seen {
		l.order = append(l.order, t.ID)
	}
	if t.Name != "" {
		l.names[t.ID] = t.Name
	}
}

// Result is the outcome of replaying one event timeline.
type Result struct {
	EventID string
	Steps   []Step
	Totals  []TeamSP
	Skipped int
}

// Replay runs a fresh ledger over an ascending timeline. The caller must
// supply the timeline in sequence.Ascending order.
func Replay(t sequence.Timeline) Result {
	l := New()
	for _, m := range t.Matches {
		l.Apply(m)
	}
	return Result{
		EventID: t.EventID,
		Steps:   l.steps,
		Totals:  l.Totals(),
		Skipped: l.skipped,
	}
}
