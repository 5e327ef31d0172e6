package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	TeamIDs    []string      // Primary teams to request context for
	Passcode   string        // Unlock passcode when the API is gated
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Report file; empty disables saving
	Verbose    bool          // Log every request
}

// Violation is one broken invariant found in a response.
type Violation struct {
	Resource string `json:"resource"`
	Key      string `json:"key,omitempty"`
	Detail   string `json:"detail"`
}

// Stats holds probe statistics.
type Stats struct {
	TeamsRequested    int           `json:"teamsRequested"`
	TeamsSucceeded    int           `json:"teamsSucceeded"`
	TeamsFailed       int           `json:"teamsFailed"`
	ContextRecords    int           `json:"contextRecords"`
	DegradedEvents    int           `json:"degradedEvents"`
	EventsRequested   int           `json:"eventsRequested"`
	EventsSucceeded   int           `json:"eventsSucceeded"`
	EventsFailed      int           `json:"eventsFailed"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           time.Time     `json:"endTime"`
	Duration          time.Duration `json:"duration"`
	ContextLatencyAvg time.Duration `json:"contextLatencyAvg"`
}

// Report is the outcome of a probe run.
type Report struct {
	Stats      Stats       `json:"stats"`
	Violations []Violation `json:"violations"`
	Failures   []string    `json:"failures"`
}
