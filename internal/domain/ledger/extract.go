package ledger

import (
	"github.com/okian/robonalysis/internal/domain/model"
)

// Extract returns context records for the steps the primary team played,
// keyed by match identity.
func Extract(primaryTeamID string, steps []Step) map[string]model.ContextRecord {
	out := make(map[string]model.ContextRecord)
	ExtractInto(out, primaryTeamID, steps)
	return out
}

// ExtractInto adds the primary team's context records to dst.
func ExtractInto(dst map[string]model.ContextRecord, primaryTeamID string, steps []Step) {
	for _, s := range steps {
		color, prior, ok := locate(primaryTeamID, s)
		if !ok {
			continue
		}
		dst[s.MatchID] = model.ContextRecord{
			MatchID:      s.MatchID,
			EventID:      s.EventID,
			PrimaryColor: color,
			PrimarySP:    prior,
			Gain:         s.Gain,
			Red:          s.Red,
			Blue:         s.Blue,
		}
	}
}

func locate(teamID string, s Step) (model.Color, float64, bool) {
	for _, m := range s.Red.Members {
		if m.TeamID == teamID {
			return model.ColorRed, m.PriorSP, true
		}
	}
	for _, m := range s.Blue.Members {
		if m.TeamID == teamID {
			return model.ColorBlue, m.PriorSP, true
		}
	}
	return "", 0, false
}
