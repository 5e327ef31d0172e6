// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/robonalysis/internal/domain/types"
	"github.com/okian/robonalysis/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TeamDependencies
	EventDependencies
	SeasonDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	unlockHandler *UnlockHandler
	teamHandler   *TeamHandler
	eventHandler  *EventHandler
	seasonHandler *SeasonHandler
	sessions      *Sessions

	passcode   string
	sessionTTL time.Duration
	logger     logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithPasscode gates /api behind an unlock session when non-empty.
func WithPasscode(passcode string) Option {
	return func(s *Server) {
		s.passcode = passcode
	}
}

// WithSessionTTL sets the lifetime of unlock sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		sessionTTL: defaultSessionTTL,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sessions = NewSessions(s.sessionTTL)
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.unlockHandler = NewUnlockHandler(s.passcode, s.sessions)
	s.teamHandler = NewTeamHandler(deps, s.logger)
	s.eventHandler = NewEventHandler(deps, s.logger)
	s.seasonHandler = NewSeasonHandler(deps)
	return s
}

// Sessions exposes the unlock session store.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	gate := func(next http.HandlerFunc) http.HandlerFunc {
		return RequireSession(s.passcode, s.sessions, next)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/unlock", MetricsMiddleware(s.unlockHandler.HandleUnlock, "unlock"))

	mux.HandleFunc("/api/team", MetricsMiddleware(gate(s.teamHandler.HandleTeam), "team"))
	mux.HandleFunc("/api/team/matches", MetricsMiddleware(gate(s.teamHandler.HandleTeamMatches), "team_matches"))
	mux.HandleFunc("/api/team/matches/context", MetricsMiddleware(gate(s.teamHandler.HandleMatchContext), "match_context"))
	mux.HandleFunc("/api/team/events", MetricsMiddleware(gate(s.teamHandler.HandleTeamEvents), "team_events"))
	mux.HandleFunc("/api/team/rankings", MetricsMiddleware(gate(s.teamHandler.HandleTeamRankings), "team_rankings"))
	mux.HandleFunc("/api/team/performance", MetricsMiddleware(gate(s.teamHandler.HandleTeamPerformance), "team_performance"))
	mux.HandleFunc("/api/team/skills", MetricsMiddleware(gate(s.teamHandler.HandleTeamSkills), "team_skills"))
	mux.HandleFunc("/api/team/awards", MetricsMiddleware(gate(s.teamHandler.HandleTeamAwards), "team_awards"))

	mux.HandleFunc("/api/event/matches", MetricsMiddleware(gate(s.eventHandler.HandleEventMatches), "event_matches"))
	mux.HandleFunc("/api/event/standings", MetricsMiddleware(gate(s.eventHandler.HandleEventStandings), "event_standings"))

	mux.HandleFunc("/api/seasons", MetricsMiddleware(gate(s.seasonHandler.HandleSeasons), "seasons"))
}

// Handler returns mux wrapped with request ids and access logging.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return RequestID(AccessLog(s.logger, mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

// requireGET answers 405 for anything but GET and HEAD.
func requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}

// query returns the first non-empty value among the given parameter names.
func query(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v
		}
	}
	return ""
}

// queryList collects every value of the given parameter names, splitting
// comma-separated values and dropping blanks.
func queryList(r *http.Request, names ...string) []string {
	q := r.URL.Query()
	var out []string
	for _, n := range names {
		for _, v := range q[n] {
			for _, piece := range strings.Split(v, ",") {
				if piece = strings.TrimSpace(piece); piece != "" {
					out = append(out, piece)
				}
			}
		}
	}
	return out
}

// queryInt parses an optional integer parameter; absent means def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s must be an integer", name)
	}
	return n, nil
}
