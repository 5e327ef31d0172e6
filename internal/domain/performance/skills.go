package performance

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/okian/robonalysis/internal/domain/model"
)

// SortSkills orders rows newest season first, then event id descending, then
// rank ascending. Missing season and event ids sort last; a missing rank sorts
// after every present one. The input is not modified.
func SortSkills(rows []model.SkillRow) []model.SkillRow {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b model.SkillRow) int {
		if c := cmp.Compare(refNum(b.Season), refNum(a.Season)); c != 0 {
			return c
		}
		if c := cmp.Compare(refNum(b.Event), refNum(a.Event)); c != 0 {
			return c
		}
		return cmp.Compare(rankOrInf(a.Rank), rankOrInf(b.Rank))
	})
	return out
}

// ReduceSkills folds rows into one entry per event. The rank is taken from
// the first row that carries one, driver and programming keep their best
// score, and the total is their sum. Rows without a numeric event id are
// ignored. Entries are ordered by event id descending, then rank ascending.
func ReduceSkills(rows []model.SkillRow) []model.EventSkills {
	byEvent := make(map[string]*model.EventSkills)
	order := make([]string, 0)
	for _, r := range rows {
		if _, ok := eventNum(r.Event); !ok {
			continue
		}
		eid := r.Event.ID.String()
		e, seen := byEvent[eid]
		if !seen {
			e = &model.EventSkills{EventID: eid, EventName: r.Event.Name}
			byEvent[eid] = e
			order = append(order, eid)
		}
		if e.Rank == nil {
			e.Rank = r.Rank.Ptr()
		}

		run := model.SkillScore{Attempts: r.Attempts.Ptr()}
		if r.Score.Valid {
			run.Score = r.Score.Value
		}
		switch strings.ToLower(r.Type) {
		case model.SkillDriver:
			if e.Driver == nil || run.Score > e.Driver.Score {
				e.Driver = &run
			}
		case model.SkillProgramming:
			if e.Programming == nil || run.Score > e.Programming.Score {
				e.Programming = &run
			}
		}
	}

	out := make([]model.EventSkills, 0, len(order))
	for _, eid := range order {
		e := byEvent[eid]
		if e.Driver != nil {
			e.Total += e.Driver.Score
		}
		if e.Programming != nil {
			e.Total += e.Programming.Score
		}
		out = append(out, *e)
	}
	slices.SortStableFunc(out, func(a, b model.EventSkills) int {
		ea, _ := model.FlexID(a.EventID).Float()
		eb, _ := model.FlexID(b.EventID).Float()
		if c := cmp.Compare(eb, ea); c != 0 {
			return c
		}
		return cmp.Compare(ptrOrInf(a.Rank), ptrOrInf(b.Rank))
	})
	return out
}

// SummarizeSkills aggregates reduced entries. Averages for driver and
// programming only count events where that run type was recorded; the best
// rank is the smallest finite rank, nil when there is none.
func SummarizeSkills(events []model.EventSkills) model.SkillsSummary {
	s := model.SkillsSummary{Events: len(events)}
	if len(events) == 0 {
		return s
	}

	var totalSum, driverSum, progSum float64
	var drivers, progs int
	for _, e := range events {
		totalSum += e.Total
		s.BestTotal = math.Max(s.BestTotal, e.Total)
		if e.Driver != nil {
			drivers++
			driverSum += e.Driver.Score
			if drivers == 1 || e.Driver.Score > s.BestDriver {
				s.BestDriver = e.Driver.Score
			}
		}
		if e.Programming != nil {
			progs++
			progSum += e.Programming.Score
			if progs == 1 || e.Programming.Score > s.BestProg {
				s.BestProg = e.Programming.Score
			}
		}
		if e.Rank != nil && !math.IsInf(*e.Rank, 0) && !math.IsNaN(*e.Rank) {
			if s.BestRank == nil || *e.Rank < *s.BestRank {
				r := *e.Rank
				s.BestRank = &r
			}
		}
	}

	s.AvgTotal = totalSum / float64(len(events))
	if drivers > 0 {
		s.AvgDriver = driverSum / float64(drivers)
	}
	if progs > 0 {
		s.AvgProg = progSum / float64(progs)
	}
	return s
}

// SortAwards orders awards by event id descending, then display order
// ascending, then title. Missing orders sort last. The input is not modified.
func SortAwards(awards []model.Award) []model.Award {
	out := slices.Clone(awards)
	slices.SortStableFunc(out, func(a, b model.Award) int {
		if c := cmp.Compare(refNum(b.Event), refNum(a.Event)); c != 0 {
			return c
		}
		if c := cmp.Compare(orderOrInf(a.Order), orderOrInf(b.Order)); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out
}

func eventNum(ref *model.RawRef) (float64, bool) {
	if ref == nil {
		return 0, false
	}
	return ref.ID.Float()
}

// refNum is the numeric id of ref, -1 when it is missing or not a number.
func refNum(ref *model.RawRef) float64 {
	if v, ok := eventNum(ref); ok {
		return v
	}
	return -1
}

func orderOrInf(o model.OptFloat) float64 {
	if !o.Valid {
		return math.Inf(1)
	}
	return o.Value
}

func ptrOrInf(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}
