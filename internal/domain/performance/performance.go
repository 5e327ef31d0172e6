// Package performance derives win/loss summaries and best rankings for a team.
package performance

import (
	"math"

	"github.com/okian/robonalysis/internal/domain/model"
)

// Summarize computes the team's record over matches. A match counts when the
// team is on one of its alliances. Missing scores count as 0 and the opponent
// score is the highest score among the other alliances.
func Summarize(teamID string, matches []model.Match) model.Performance {
	p := model.Performance{TeamID: teamID}
	var ownSum, oppSum float64

	for _, m := range matches {
		own, opp, found := 0.0, 0.0, false
		for _, a := range m.Alliances {
			s := scoreOrZero(a.Score)
			if a.HasTeam(teamID) {
				own, found = s, true
				continue
			}
			opp = math.Max(opp, s)
		}
		if !found {
			continue
		}

		p.Played++
		ownSum += own
		oppSum += opp
		switch {
		case own > opp:
			p.Wins++
		case own == opp:
			p.Ties++
		default:
			p.Losses++
		}
	}

	if p.Played > 0 {
		n := float64(p.Played)
		p.WinRate = float64(p.Wins) / n
		p.OwnAvg = ownSum / n
		p.OppAvg = oppSum / n
		p.DiffAvg = p.OwnAvg - p.OppAvg
	}
	return p
}

// BestRanks reduces ranking rows to one per event, keeping the row with the
// lowest positive rank. The first row seen for an event is kept until a row
// with a usable rank replaces it. Rows without an event id are ignored.
func BestRanks(rows []model.RankingRow) map[string]model.EventRank {
	best := make(map[string]model.RankingRow)
	for _, r := range rows {
		if r.Event == nil || r.Event.ID == "" {
			continue
		}
		eid := r.Event.ID.String()
		prev, seen := best[eid]
		if !seen || (usableRank(r.Rank) && r.Rank.Value <= rankOrInf(prev.Rank)) {
			best[eid] = r
		}
	}

	out := make(map[string]model.EventRank, len(best))
	for eid, r := range best {
		out[eid] = model.EventRank{
			Rank:          r.Rank.Ptr(),
			Wins:          r.Wins.Ptr(),
			Losses:        r.Losses.Ptr(),
			Ties:          r.Ties.Ptr(),
			WP:            r.WP.Ptr(),
			AP:            r.AP.Ptr(),
			SP:            r.SP.Ptr(),
			HighScore:     r.HighScore.Ptr(),
			AveragePoints: r.AveragePoints.Ptr(),
			TotalPoints:   r.TotalPoints.Ptr(),
		}
	}
	return out
}

func usableRank(r model.OptFloat) bool {
	return r.Valid && r.Value > 0 && !math.IsInf(r.Value, 0) && !math.IsNaN(r.Value)
}

func rankOrInf(r model.OptFloat) float64 {
	if !usableRank(r) {
		return math.Inf(1)
	}
	return r.Value
}

func scoreOrZero(s *float64) float64 {
	if s == nil {
		return 0
	}
	return *s
}
