package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/robonalysis/internal/app"
	"github.com/okian/robonalysis/internal/adapters/repository"
	"github.com/okian/robonalysis/internal/adapters/upstream"
	"github.com/okian/robonalysis/pkg/metrics"
)

// Sentinel kinds for API errors.
var (
	ErrServe         = errors.New("http serve failed")
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("server passcode not configured")
	ErrInvalidCode   = errors.New("invalid passcode")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// respondError maps err to a status and writes the error envelope. Upstream
// failures keep the upstream status code.
func respondError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		metrics.RecordErrorByComponent("api", code)
	}
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrMissingTeamID),
		errors.Is(err, service.ErrMissingEventID),
		errors.Is(err, service.ErrMissingLookup),
		errors.Is(err, upstream.ErrMissingScope),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCode):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, service.ErrNoUpstream):
		return http.StatusServiceUnavailable, "unavailable"
	}

	if status := upstream.StatusOf(err); status >= http.StatusBadRequest {
		return status, "upstream_error"
	}
	if errors.Is(err, upstream.ErrRequest) || errors.Is(err, upstream.ErrDecode) || errors.Is(err, upstream.ErrNoData) {
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal_error"
}
