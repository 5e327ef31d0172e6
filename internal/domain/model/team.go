package model

// Location is the upstream location object, trimmed to what is displayed.
type Location struct {
	Venue    string `json:"venue,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// Team is the upstream team record.
type Team struct {
	ID           FlexID    `json:"id"`
	Number       FlexID    `json:"number,omitempty"`
	TeamName     string    `json:"team_name,omitempty"`
	Organization string    `json:"organization,omitempty"`
	RobotName    string    `json:"robot_name,omitempty"`
	Grade        string    `json:"grade,omitempty"`
	Location     *Location `json:"location,omitempty"`
	Program      *RawRef   `json:"program,omitempty"`
}

// Event is the upstream event record.
type Event struct {
	ID        FlexID    `json:"id"`
	SKU       string    `json:"sku,omitempty"`
	Name      string    `json:"name,omitempty"`
	Start     string    `json:"start,omitempty"`
	End       string    `json:"end,omitempty"`
	Level     string    `json:"level,omitempty"`
	EventType string    `json:"event_type,omitempty"`
	Ongoing   *bool     `json:"ongoing,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Divisions []RawRef  `json:"divisions,omitempty"`
	Season    *RawRef   `json:"season,omitempty"`
}

// RankingRow is the upstream ranking record. Numeric fields may arrive as
// strings or null.
type RankingRow struct {
	Rank          OptFloat `json:"rank"`
	Wins          OptFloat `json:"wins"`
	Losses        OptFloat `json:"losses"`
	Ties          OptFloat `json:"ties"`
	WP            OptFloat `json:"wp"`
	AP            OptFloat `json:"ap"`
	SP            OptFloat `json:"sp"`
	HighScore     OptFloat `json:"high_score"`
	TotalPoints   OptFloat `json:"total_points"`
	AveragePoints OptFloat `json:"average_points"`
	Event         *RawRef  `json:"event,omitempty"`
	Division      *RawRef  `json:"division,omitempty"`
	Team          *RawRef  `json:"team,omitempty"`
}

// EventRank is the best ranking row kept for one event.
type EventRank struct {
	Rank          *float64 `json:"rank"`
	Wins          *float64 `json:"wins"`
	Losses        *float64 `json:"losses"`
	Ties          *float64 `json:"ties"`
	WP            *float64 `json:"wp"`
	AP            *float64 `json:"ap"`
	SP            *float64 `json:"sp"`
	HighScore     *float64 `json:"high_score"`
	AveragePoints *float64 `json:"average_points"`
	TotalPoints   *float64 `json:"total_points"`
}

// Performance summarizes a team's results over a set of matches.
type Performance struct {
	TeamID  string  `json:"teamId"`
	Played  int     `json:"played"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Ties    int     `json:"ties"`
	WinRate float64 `json:"winRate"`
	OwnAvg  float64 `json:"ownAvg"`
	OppAvg  float64 `json:"oppAvg"`
	DiffAvg float64 `json:"diffAvg"`
}
