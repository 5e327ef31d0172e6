// Package normalize maps raw upstream match records onto model.Match.
//
// The normalizer is the only place that knows about upstream aliases; the
// rest of the engine works on the tagged model types.
package normalize

import (
	"strings"
	"time"

	"github.com/okian/robonalysis/internal/domain/model"
)

// Placeholders used when building a composite identity.
const (
	missingEvent    = "ev"
	missingRound    = "r"
	missingMatchNum = "n"
	missingInstance = "i"
)

// Match converts one raw record. ok is false when raw is nil.
func Match(raw *model.RawMatch) (model.Match, bool) {
	if raw == nil {
		return model.Match{}, false
	}

	m := model.Match{
		ID:            Identity(raw),
		EffectiveTime: EffectiveTime(raw.Started, raw.Scheduled, raw.UpdatedAt),
		Name:          raw.Name,
		Round:         raw.Round.String(),
		MatchNum:      raw.MatchNum.String(),
		Instance:      raw.Instance.String(),
		Field:         raw.Field.String(),
		Scheduled:     raw.Scheduled,
		Started:       raw.Started,
		UpdatedAt:     raw.UpdatedAt,
		Alliances:     make([]model.Alliance, 0, len(raw.Alliances)),
	}
	if raw.Event != nil {
		m.EventID = raw.Event.ID.String()
		m.EventName = raw.Event.Name
	}
	if raw.Division != nil {
		m.DivisionName = raw.Division.Name
	}

	for _, ra := range raw.Alliances {
		m.Alliances = append(m.Alliances, alliance(ra))
	}
	return m, true
}

// All converts a batch, dropping nil records.
func All(raws []*model.RawMatch) []model.Match {
	out := make([]model.Match, 0, len(raws))
	for _, raw := range raws {
		if m, ok := Match(raw); ok {
			out = append(out, m)
		}
	}
	return out
}

// Identity returns the upstream id, or a composite of event, round, match
// number and instance when the id is absent.
func Identity(raw *model.RawMatch) string {
	if id := raw.ID.String(); id != "" {
		return id
	}
	eventID := ""
	if raw.Event != nil {
		eventID = raw.Event.ID.String()
	}
	return strings.Join([]string{
		orDefault(eventID, missingEvent),
		orDefault(raw.Round.String(), missingRound),
		orDefault(raw.MatchNum.String(), missingMatchNum),
		orDefault(raw.Instance.String(), missingInstance),
	}, "-")
}

// EffectiveTime returns the first parseable timestamp in preference order as
// unix milliseconds, or 0 when none parse.
func EffectiveTime(candidates ...string) int64 {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if t, ok := parseTime(c); ok {
			return t.UnixMilli()
		}
	}
	return 0
}

// TeamID resolves a member id from team.id, team_id or id, in that order.
func TeamID(ref model.RawTeamRef) string {
	if ref.Team != nil {
		if id := ref.Team.ID.String(); id != "" {
			return id
		}
	}
	if id := ref.TeamID.String(); id != "" {
		return id
	}
	return ref.ID.String()
}

func alliance(ra model.RawAlliance) model.Alliance {
	a := model.Alliance{
		Color: color(ra.Color),
		Score: ra.Score.Ptr(),
		Teams: make([]model.TeamRef, 0, len(ra.Teams)),
	}
	for _, ref := range ra.Teams {
		id := TeamID(ref)
		if id == "" {
			continue
		}
		tr := model.TeamRef{ID: id}
		if ref.Team != nil {
			tr.Name = ref.Team.Name
		}
		a.Teams = append(a.Teams, tr)
	}
	return a
}

func color(s string) model.Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(model.ColorRed):
		return model.ColorRed
	case string(model.ColorBlue):
		return model.ColorBlue
	default:
		return ""
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
