package model

// MemberSP is an alliance member's SP immediately before a match.
type MemberSP struct {
	TeamID  string  `json:"teamId"`
	PriorSP float64 `json:"priorSP"`
}

// AllianceContext is one alliance's view of the ledger before a match.
// SOS is nil when the alliance had no identifiable teams.
type AllianceContext struct {
	SOS     *float64   `json:"sos"`
	Members []MemberSP `json:"members"`
}

// ContextRecord is the snapshot taken for a match the primary team played.
type ContextRecord struct {
	MatchID      string          `json:"matchId"`
	EventID      string          `json:"eventId"`
	PrimaryColor Color           `json:"primaryColor,omitempty"`
	PrimarySP    float64         `json:"primarySP"`
	Gain         *float64        `json:"gain"`
	Red          AllianceContext `json:"red"`
	Blue         AllianceContext `json:"blue"`
}

// Standing is a team's final SP within one event.
type Standing struct {
	Rank    int     `json:"rank"`
	TeamID  string  `json:"teamId"`
	Name    string  `json:"name,omitempty"`
	SP      float64 `json:"sp"`
	Matches int     `json:"matches"`
}

// EventStandings is the SP table for one event. Teams counts every ranked
// team even when Standings is cut to the top rows.
type EventStandings struct {
	EventID   string     `json:"eventId"`
	Degraded  bool       `json:"degraded"`
	Teams     int        `json:"teams"`
	Standings []Standing `json:"standings"`
}

// MatchContext is the result of a match-context computation for one team.
type MatchContext struct {
	TeamID string `json:"teamId"`
	// Matches are the primary team's matches, newest first.
	Matches []Match `json:"matches"`
	// Context is keyed by match identity.
	Context map[string]ContextRecord `json:"context"`
	// Degraded lists events replayed from the primary team's matches only.
	Degraded []string `json:"degraded"`
	// Standings is keyed by event id.
	Standings map[string][]Standing `json:"standings"`
	// Ranks holds the primary team's own row, keyed by event id.
	Ranks map[string]Standing `json:"ranks"`
}
