package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/robonalysis/internal/adapters/upstream"
	"github.com/okian/robonalysis/internal/domain/model"
)

// fakeUpstream serves canned raw pages and counts calls per resource.
type fakeUpstream struct {
	mu       sync.Mutex
	team     map[string][]*model.RawMatch
	event    map[string][]*model.RawMatch
	eventErr map[string]error
	teamErr  error
	teams    []model.Team
	events   []model.Event
	rankings []model.RankingRow
	skills   []model.SkillRow
	awards   []model.Award
	seasons  []model.Season
	filters  map[string][]string
	calls    map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		team:     make(map[string][]*model.RawMatch),
		event:    make(map[string][]*model.RawMatch),
		eventErr: make(map[string]error),
		filters:  make(map[string][]string),
		calls:    make(map[string]int),
	}
}

func (f *fakeUpstream) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeUpstream) FetchMatches(ctx context.Context, scope upstream.Scope) ([]*model.RawMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scope.TeamID != "" {
		f.calls["team:"+scope.TeamID]++
		if f.teamErr != nil {
			return nil, f.teamErr
		}
		return f.team[scope.TeamID], nil
	}
	f.calls["event:"+scope.EventID]++
	if err := f.eventErr[scope.EventID]; err != nil {
		return nil, err
	}
	return f.event[scope.EventID], nil
}

func (f *fakeUpstream) FetchTeam(ctx context.Context, id, number string) ([]model.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["lookup"]++
	return f.teams, nil
}

func (f *fakeUpstream) FetchTeamEvents(ctx context.Context, teamID string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["events:"+teamID]++
	return f.events, nil
}

func (f *fakeUpstream) FetchTeamRankings(ctx context.Context, teamID, seasonID string) ([]model.RankingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["rankings:"+teamID]++
	return f.rankings, nil
}

func (f *fakeUpstream) FetchTeamSkills(ctx context.Context, teamID string, eventIDs []string) ([]model.SkillRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["skills:"+teamID]++
	f.filters["skills"] = eventIDs
	return f.skills, nil
}

func (f *fakeUpstream) FetchTeamAwards(ctx context.Context, teamID string, eventIDs []string) ([]model.Award, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["awards:"+teamID]++
	f.filters["awards"] = eventIDs
	return f.awards, nil
}

func (f *fakeUpstream) FetchSeasons(ctx context.Context, programIDs, teamIDs []string) ([]model.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["seasons"]++
	f.filters["program"] = programIDs
	f.filters["team"] = teamIDs
	return f.seasons, nil
}

func refs(ids ...string) []model.RawTeamRef {
	out := make([]model.RawTeamRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.RawTeamRef{Team: &model.RawTeam{ID: model.FlexID(id), Name: "team " + id}})
	}
	return out
}

// rawMatch builds a two-alliance upstream record started at minute min.
func rawMatch(id, eventID string, minute int, redScore, blueScore float64, red, blue []string) *model.RawMatch {
	return &model.RawMatch{
		ID:      model.FlexID(id),
		Started: fmt.Sprintf("2024-03-01T10:%02d:00Z", minute),
		Event:   &model.RawRef{ID: model.FlexID(eventID), Name: "event " + eventID},
		Alliances: []model.RawAlliance{
			{Color: "red", Score: model.Some(redScore), Teams: refs(red...)},
			{Color: "blue", Score: model.Some(blueScore), Teams: refs(blue...)},
		},
	}
}

// seedScenario loads event E (A's three matches plus a bystander match x)
// and event F, where only A's own match m4 is known.
func seedScenario(f *fakeUpstream) {
	m1 := rawMatch("m1", "E", 1, 10, 20, []string{"A", "B"}, []string{"C", "D"})
	m2 := rawMatch("m2", "E", 2, 15, 5, []string{"A", "C"}, []string{"B", "D"})
	x := rawMatch("x", "E", 3, 20, 25, []string{"D", "B"}, []string{"C", "G"})
	m3 := rawMatch("m3", "E", 4, 30, 30, []string{"A", "D"}, []string{"B", "C"})
	m4 := rawMatch("m4", "F", 5, 8, 12, []string{"A", "B"}, []string{"C", "D"})

	f.team["A"] = []*model.RawMatch{m4, m3, m2, m1, nil}
	f.event["E"] = []*model.RawMatch{m1, m2, x, m3}
	f.event["F"] = []*model.RawMatch{m4}
}
