package upstream

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream errors.
var (
	ErrNoData       = errors.New("upstream returned no data")
	ErrTruncated    = errors.New("pagination truncated")
	ErrDecode       = errors.New("decode upstream payload")
	ErrRequest      = errors.New("upstream request failed")
	ErrMissingScope = errors.New("missing team or event id")
)

// UpstreamError is returned when a page fetch does not succeed. It carries
// the upstream HTTP status and message.
type UpstreamError struct {
	Status  int
	Message string
	URL     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}
