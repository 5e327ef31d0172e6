package probe

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/types"
)

// VerifyContext checks a match-context response for internal consistency.
func VerifyContext(resp types.ContextResponse) []Violation {
	var out []Violation
	add := func(key, format string, args ...any) {
		out = append(out, Violation{Resource: "context:" + resp.TeamID, Key: key, Detail: fmt.Sprintf(format, args...)})
	}

	matches := make(map[string]model.Match, len(resp.Matches))
	events := make(map[string]struct{})
	for i, m := range resp.Matches {
		matches[m.ID] = m
		if m.EventID != "" {
			events[m.EventID] = struct{}{}
		}
		if i > 0 && m.EffectiveTime > resp.Matches[i-1].EffectiveTime {
			add(m.ID, "matches not newest first at index %d", i)
		}
	}

	for key, rec := range resp.Context {
		if rec.MatchID != key {
			add(key, "record keyed %q carries match id %q", key, rec.MatchID)
		}
		m, ok := matches[key]
		if !ok {
			add(key, "record has no match in the team's match list")
		} else if !m.HasTeam(resp.TeamID) {
			add(key, "record for a match the team did not play")
		}
		if rec.Gain != nil && *rec.Gain < 0 {
			add(key, "negative gain %v", *rec.Gain)
		}
		checkAlliance(add, key, "red", rec.Red)
		checkAlliance(add, key, "blue", rec.Blue)
		checkPrimary(add, key, resp.TeamID, rec)
	}

	for _, id := range resp.Degraded {
		if _, ok := events[id]; !ok {
			add(id, "degraded event is not among the team's events")
		}
	}
	for eventID, rows := range resp.Standings {
		for _, v := range VerifyStandings(model.EventStandings{EventID: eventID, Teams: len(rows), Standings: rows}) {
			v.Resource = "context:" + resp.TeamID
			out = append(out, v)
		}
	}
	for eventID, own := range resp.Ranks {
		i := slices.IndexFunc(resp.Standings[eventID], func(s model.Standing) bool { return s.TeamID == resp.TeamID })
		switch {
		case i < 0:
			add(eventID, "rank reported for an event without the team's standing")
		case resp.Standings[eventID][i] != own:
			add(eventID, "rank row %+v differs from standings row %+v", own, resp.Standings[eventID][i])
		}
	}
	return out
}

func checkAlliance(add func(string, string, ...any), key, color string, a model.AllianceContext) {
	if len(a.Members) == 0 {
		if a.SOS != nil {
			add(key, "%s alliance has SOS %v but no members", color, *a.SOS)
		}
		return
	}
	if a.SOS == nil {
		add(key, "%s alliance has members but null SOS", color)
		return
	}
	var sum float64
	for _, m := range a.Members {
		sum += m.PriorSP
	}
	if math.Abs(sum-*a.SOS) > sosTolerance {
		add(key, "%s SOS %v differs from member sum %v", color, *a.SOS, sum)
	}
}

func checkPrimary(add func(string, string, ...any), key, teamID string, rec model.ContextRecord) {
	var members []model.MemberSP
	switch rec.PrimaryColor {
	case model.ColorRed:
		members = rec.Red.Members
	case model.ColorBlue:
		members = rec.Blue.Members
	default:
		return
	}
	i := slices.IndexFunc(members, func(m model.MemberSP) bool { return m.TeamID == teamID })
	if i < 0 {
		add(key, "team missing from its %s alliance", rec.PrimaryColor)
		return
	}
	if members[i].PriorSP != rec.PrimarySP {
		add(key, "primarySP %v differs from member priorSP %v", rec.PrimarySP, members[i].PriorSP)
	}
}

// VerifyStandings checks ordering and competition ranking of an SP table.
func VerifyStandings(st model.EventStandings) []Violation {
	var out []Violation
	add := func(key, format string, args ...any) {
		out = append(out, Violation{Resource: "standings:" + st.EventID, Key: key, Detail: fmt.Sprintf(format, args...)})
	}

	if st.Teams < len(st.Standings) {
		add("teams", "team count %d below %d rows", st.Teams, len(st.Standings))
	}

	for i, row := range st.Standings {
		want := i + 1
		if i > 0 {
			prev := st.Standings[i-1]
			if row.SP > prev.SP {
				add(row.TeamID, "SP %v above previous row %v", row.SP, prev.SP)
			}
			if row.SP == prev.SP {
				want = prev.Rank
			}
		}
		if row.Rank != want {
			add(row.TeamID, "rank %d, want %d", row.Rank, want)
		}
	}
	return out
}
