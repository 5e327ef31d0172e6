package model

// Skills run types the reduction understands. Other types are kept in the
// raw rows but do not count toward totals.
const (
	SkillDriver      = "driver"
	SkillProgramming = "programming"
)

// SkillRow is the upstream skills record for one run type at one event.
type SkillRow struct {
	ID       FlexID   `json:"id,omitempty"`
	Type     string   `json:"type,omitempty"`
	Rank     OptFloat `json:"rank"`
	Score    OptFloat `json:"score"`
	Attempts OptFloat `json:"attempts"`
	Event    *RawRef  `json:"event,omitempty"`
	Season   *RawRef  `json:"season,omitempty"`
	Team     *RawRef  `json:"team,omitempty"`
}

// SkillScore is the best run of one type at an event.
type SkillScore struct {
	Score    float64  `json:"score"`
	Attempts *float64 `json:"attempts,omitempty"`
}

// EventSkills folds an event's skills rows into one entry.
type EventSkills struct {
	EventID     string      `json:"eventId"`
	EventName   string      `json:"eventName,omitempty"`
	Rank        *float64    `json:"rank"`
	Driver      *SkillScore `json:"driver,omitempty"`
	Programming *SkillScore `json:"programming,omitempty"`
	Total       float64     `json:"total"`
}

// SkillsSummary aggregates a team's per-event skills entries.
type SkillsSummary struct {
	Events     int      `json:"events"`
	BestTotal  float64  `json:"bestTotal"`
	AvgTotal   float64  `json:"avgTotal"`
	BestDriver float64  `json:"bestDriver"`
	AvgDriver  float64  `json:"avgDriver"`
	BestProg   float64  `json:"bestProg"`
	AvgProg    float64  `json:"avgProg"`
	BestRank   *float64 `json:"bestRank"`
}

// TeamSkills is the skills view of one team.
type TeamSkills struct {
	TeamID  string        `json:"teamId"`
	Rows    []SkillRow    `json:"data"`
	Events  []EventSkills `json:"events"`
	Summary SkillsSummary `json:"summary"`
}

// AwardWinner is a team credited with an award.
type AwardWinner struct {
	Team     *RawRef `json:"team,omitempty"`
	Division *RawRef `json:"division,omitempty"`
}

// Award is the upstream award record.
type Award struct {
	ID                FlexID        `json:"id,omitempty"`
	Title             string        `json:"title,omitempty"`
	Order             OptFloat      `json:"order"`
	Designation       FlexID        `json:"designation,omitempty"`
	Classification    FlexID        `json:"classification,omitempty"`
	Event             *RawRef       `json:"event,omitempty"`
	TeamWinners       []AwardWinner `json:"teamWinners,omitempty"`
	IndividualWinners []string      `json:"individualWinners,omitempty"`
}

// Season is the upstream season record.
type Season struct {
	ID         FlexID   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Program    *RawRef  `json:"program,omitempty"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	YearsStart OptFloat `json:"years_start"`
	YearsEnd   OptFloat `json:"years_end"`
}
