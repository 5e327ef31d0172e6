package probe

import (
	"errors"
	"fmt"
)

// Sentinel kinds for probe errors.
var (
	ErrNoTeams    = errors.New("no team ids to probe")
	ErrUnhealthy  = errors.New("service health check failed")
	ErrUnlock     = errors.New("unlock failed")
	ErrViolations = errors.New("invariant violations found")
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("GET %s: %d %s: %s", e.Path, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("GET %s: %d", e.Path, e.Status)
}
