package model

// Color tags an alliance side.
type Color string

// Alliance colors.
const (
	ColorRed  Color = "red"
	ColorBlue Color = "blue"
)

// TeamRef is a normalized alliance member.
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Alliance is one normalized side of a match. A nil Score means the match
// has not been played (or the score is unknown), which is distinct from 0.
type Alliance struct {
	Color Color     `json:"color"`
	Score *float64  `json:"score"`
	Teams []TeamRef `json:"teams"`
}

// TeamIDs returns the member ids in alliance order.
func (a Alliance) TeamIDs() []string {
	ids := make([]string, 0, len(a.Teams))
	for _, t := range a.Teams {
		ids = append(ids, t.ID)
	}
	return ids
}

// HasTeam reports whether id is a member of the alliance.
func (a Alliance) HasTeam(id string) bool {
	for _, t := range a.Teams {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Match is the canonical shape of one contest.
type Match struct {
	// ID is the stable identity across duplicate fetches.
	ID string `json:"id"`
	// EffectiveTime is unix milliseconds; 0 when no timestamp was usable.
	EffectiveTime int64 `json:"effectiveTime"`

	EventID      string `json:"eventId,omitempty"`
	EventName    string `json:"eventName,omitempty"`
	DivisionName string `json:"divisionName,omitempty"`
	Name         string `json:"name,omitempty"`
	Round        string `json:"round,omitempty"`
	MatchNum     string `json:"matchnum,omitempty"`
	Instance     string `json:"instance,omitempty"`
	Field        string `json:"field,omitempty"`
	Scheduled    string `json:"scheduled,omitempty"`
	Started      string `json:"started,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`

	Alliances []Alliance `json:"alliances"`
}

// HasTeam reports whether id appears on any alliance.
func (m Match) HasTeam(id string) bool {
	for _, a := range m.Alliances {
		if a.HasTeam(id) {
			return true
		}
	}
	return false
}

// Sides resolves the red and blue alliances. Tagged colors win; untagged
// alliances fill the remaining sides by position. ok is false when the match
// does not have two distinguishable alliances.
func (m Match) Sides() (red, blue Alliance, ok bool) {
	var haveRed, haveBlue bool
	var untagged []Alliance
	for _, a := range m.Alliances {
		switch {
		case a.Color == ColorRed && !haveRed:
			red, haveRed = a, true
		case a.Color == ColorBlue && !haveBlue:
			blue, haveBlue = a, true
		case a.Color != ColorRed && a.Color != ColorBlue:
			untagged = append(untagged, a)
		}
	}
	for _, a := range untagged {
		switch {
		case !haveRed:
			red, haveRed = a, true
		case !haveBlue:
			blue, haveBlue = a, true
		}
	}
	return red, blue, haveRed && haveBlue
}
