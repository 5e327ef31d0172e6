// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the MCP tools.
//
// The central operation is ComputeMatchContext: fetch the primary team's
// matches, fetch every event they span, replay each event through a fresh
// ledger and extract the pre-match snapshot for every match the primary team
// played. Upstream fetches within one call are sequential; replays run on the
// worker pool when it is started and inline otherwise.
package service

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/robonalysis/internal/adapters/cache"
	eventqueue "github.com/okian/robonalysis/internal/adapters/mq/queue"
	workerpool "github.com/okian/robonalysis/internal/adapters/mq/worker"
	"github.com/okian/robonalysis/internal/adapters/repository"
	"github.com/okian/robonalysis/internal/adapters/upstream"
	"github.com/okian/robonalysis/internal/domain/dedupe"
	"github.com/okian/robonalysis/internal/domain/ledger"
	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/normalize"
	"github.com/okian/robonalysis/internal/domain/performance"
	"github.com/okian/robonalysis/internal/domain/sequence"
	"github.com/okian/robonalysis/pkg/logger"
	"github.com/okian/robonalysis/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultCacheTTL       = 15 * time.Minute
	defaultQueueSize      = 1024
	defaultMaxEventsLimit = 250
)

// Upstream is the part of the events API client the service uses.
type Upstream interface {
	FetchMatches(ctx context.Context, scope upstream.Scope) ([]*model.RawMatch, error)
	FetchTeam(ctx context.Context, id, number string) ([]model.Team, error)
	FetchTeamEvents(ctx context.Context, teamID string) ([]model.Event, error)
	FetchTeamRankings(ctx context.Context, teamID, seasonID string) ([]model.RankingRow, error)
	FetchTeamSkills(ctx context.Context, teamID string, eventIDs []string) ([]model.SkillRow, error)
	FetchTeamAwards(ctx context.Context, teamID string, eventIDs []string) ([]model.Award, error)
	FetchSeasons(ctx context.Context, programIDs, teamIDs []string) ([]model.Season, error)
}

// Service implements the API dependencies for match-context analysis.
type Service struct {
	mu sync.RWMutex

	// Core components
	upstream Upstream
	cache    cache.Cache
	queue    *eventqueue.InMemoryQueue
	pool     *workerpool.Pool
	janitor  *cache.Janitor

	// Configuration
	cacheTTL       time.Duration
	purgeSchedule  string
	workerCount    int
	queueSize      int
	maxEventsLimit int

	// State
	started      bool
	computations atomic.Int64
	degraded     atomic.Int64
	inline       atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTL:       defaultCacheTTL,
		workerCount:    runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		maxEventsLimit: defaultMaxEventsLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	return s
}

// Start initializes the replay pool and the cache janitor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting match-context service...")

	if s.cache != nil && s.purgeSchedule != "" {
		j, err := cache.NewJanitor(s.cache, s.purgeSchedule, s.logger.Named("janitor"))
		if err != nil {
			return err
		}
		j.Start()
		s.janitor = j
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.WithLogger(s.logger.Named("replay")))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "match-context service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("cache", s.cacheName()),
	)

	return nil
}

// Stop drains the replay pool and stops the janitor.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping match-context service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}
	if s.janitor != nil {
		s.janitor.Stop(ctx)
		s.janitor = nil
	}

	s.pool = nil
	s.queue = nil
	s.started = false
	s.logger.Info(ctx, "match-context service stopped")
	return err
}

// ComputeMatchContext builds the per-match SP context for teamID.
//
// A failure to fetch the team's own matches fails the whole computation with
// *ComputationError. A failure to fetch one of its events degrades only that
// event: it is replayed from the team's own matches and listed in Degraded.
func (s *Service) ComputeMatchContext(ctx context.Context, teamID string) (*model.MatchContext, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, ErrMissingTeamID
	}

	start := time.Now()
	primary, err := s.TeamMatches(ctx, teamID)
	if err != nil {
		metrics.RecordComputationError()
		return nil, &ComputationError{TeamID: teamID, Err: err}
	}

	mc := &model.MatchContext{
		TeamID:    teamID,
		Matches:   primary,
		Context:   make(map[string]model.ContextRecord),
		Degraded:  []string{},
		Standings: make(map[string][]model.Standing),
		Ranks:     make(map[string]model.Standing),
	}

	for _, tl := range sequence.GroupByEvent(primary) {
		timeline, degraded, err := s.eventTimeline(ctx, tl)
		if err != nil {
			metrics.RecordComputationError()
			return nil, err
		}

		res, err := s.replay(ctx, timeline)
		if err != nil {
			metrics.RecordComputationError()
			return nil, err
		}

		ledger.ExtractInto(mc.Context, teamID, res.Steps)
		board := repository.NewBoard(tl.EventID, res.Totals)
		mc.Standings[board.EventID()] = board.Standings()
		if own, err := board.Rank(teamID); err == nil {
			mc.Ranks[board.EventID()] = own
		}
		if degraded {
			mc.Degraded = append(mc.Degraded, tl.EventID)
		}
	}

	s.computations.Add(1)
	metrics.RecordComputation(float64(time.Since(start).Milliseconds()))
	s.logger.Debug(ctx, "match context computed",
		logger.String("team_id", teamID),
		logger.Int("matches", len(mc.Matches)),
		logger.Int("records", len(mc.Context)),
		logger.Int("degraded", len(mc.Degraded)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return mc, nil
}

// eventTimeline returns the ascending timeline for one of the primary team's
// events. own holds the primary team's matches for that event and is used
// when the event fetch fails for any reason other than cancellation.
func (s *Service) eventTimeline(ctx context.Context, own sequence.Timeline) (sequence.Timeline, bool, error) {
	matches, err := s.EventMatches(ctx, own.EventID)
	if err == nil {
		return sequence.Timeline{EventID: own.EventID, Matches: matches}, false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return sequence.Timeline{}, false, ctxErr
	}

	s.degraded.Add(1)
	metrics.RecordDegradedEvent()
	metrics.RecordErrorByComponent("service", "event_degraded")
	s.logger.Warn(ctx, "event fetch failed, replaying primary team matches only",
		logger.String("event_id", own.EventID),
		logger.Int("matches", len(own.Matches)),
		logger.Error(err),
	)
	return sequence.Timeline{EventID: own.EventID, Matches: sequence.Ascending(own.Matches)}, true, nil
}

// replay runs t on the pool, falling back to the caller's goroutine when the
// pool is not started or the queue is full.
func (s *Service) replay(ctx context.Context, t sequence.Timeline) (ledger.Result, error) {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	if pool != nil {
		res, err := pool.Replay(ctx, t)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, workerpool.ErrRejected) {
			return ledger.Result{}, err
		}
		s.logger.Debug(ctx, "replay queue rejected job, running inline", logger.String("event_id", t.EventID))
	}

	s.inline.Add(1)
	start := time.Now()
	res := ledger.Replay(t)
	metrics.RecordReplayLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordLedgerSteps(len(res.Steps), res.Skipped)
	return res, nil
}

// TeamMatches returns the team's deduplicated matches, newest first.
func (s *Service) TeamMatches(ctx context.Context, teamID string) ([]model.Match, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, ErrMissingTeamID
	}
	return s.matches(ctx, cache.TeamMatchesKey(teamID), upstream.TeamScope(teamID), sequence.NewestFirst)
}

// EventMatches returns the event's deduplicated matches in ascending time.
func (s *Service) EventMatches(ctx context.Context, eventID string) ([]model.Match, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrMissingEventID
	}
	return s.matches(ctx, cache.EventMatchesKey(eventID), upstream.EventScope(eventID), sequence.Ascending)
}

func (s *Service) matches(ctx context.Context, key string, scope upstream.Scope, order func([]model.Match) []model.Match) ([]model.Match, error) {
	if cached, ok := cache.Load[[]model.Match](ctx, s.cache, key); ok {
		return cached, nil
	}
	if s.upstream == nil {
		return nil, ErrNoUpstream
	}

	raws, err := s.upstream.FetchMatches(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := order(dedupe.Latest(normalize.All(raws)))
	s.store(ctx, key, out)
	return out, nil
}

// EventStandings replays one event and ranks its final SP totals. A positive
// limit keeps only the top rows; 0 keeps all of them and a negative limit
// fails with repository.ErrInvalidLimit.
func (s *Service) EventStandings(ctx context.Context, eventID string, limit int) (model.EventStandings, error) {
	if limit < 0 {
		return model.EventStandings{}, repository.ErrInvalidLimit
	}
	matches, err := s.EventMatches(ctx, eventID)
	if err != nil {
		return model.EventStandings{}, err
	}
	eventID = strings.TrimSpace(eventID)
	res, err := s.replay(ctx, sequence.Timeline{EventID: eventID, Matches: matches})
	if err != nil {
		return model.EventStandings{}, err
	}

	board := repository.NewBoard(eventID, res.Totals)
	out := model.EventStandings{EventID: board.EventID(), Teams: board.Count()}
	if limit == 0 {
		out.Standings = board.Standings()
		return out, nil
	}
	out.Standings, err = board.TopN(limit)
	return out, err
}

// TeamPerformance summarizes the team's win/loss record over its matches.
func (s *Service) TeamPerformance(ctx context.Context, teamID string) (model.Performance, error) {
	matches, err := s.TeamMatches(ctx, teamID)
	if err != nil {
		return model.Performance{}, err
	}
	return performance.Summarize(strings.TrimSpace(teamID), matches), nil
}

// Team looks a team up by id, or by number when id is empty.
func (s *Service) Team(ctx context.Context, id, number string) ([]model.Team, error) {
	id, number = strings.TrimSpace(id), strings.TrimSpace(number)
	if id == "" && number == "" {
		return nil, ErrMissingLookup
	}
	key := cache.TeamKey(id, number)
	if cached, ok := cache.Load[[]model.Team](ctx, s.cache, key); ok {
		return cached, nil
	}
	if s.upstream == nil {
		return nil, ErrNoUpstream
	}
	teams, err := s.upstream.FetchTeam(ctx, id, number)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, teams)
	return teams, nil
}

// TeamEvents returns up to limit of the team's events, newest start first.
// limit is clamped to 1..MaxEventsLimit. The full event list is fetched and
// cached once per team; limit only trims the response.
func (s *Service) TeamEvents(ctx context.Context, teamID string, limit int) ([]model.Event, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, ErrMissingTeamID
	}
	limit = s.ClampEventsLimit(limit)

	key := cache.TeamEventsKey(teamID)
	events, ok := cache.Load[[]model.Event](ctx, s.cache, key)
	if !ok {
		if s.upstream == nil {
			return nil, ErrNoUpstream
		}
		var err error
		events, err = s.upstream.FetchTeamEvents(ctx, teamID)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, events)
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b model.Event) int {
		ta, tb := normalize.EffectiveTime(a.Start), normalize.EffectiveTime(b.Start)
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		default:
			return 0
		}
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// ClampEventsLimit maps limit into 1..MaxEventsLimit; non-positive means the max.
func (s *Service) ClampEventsLimit(limit int) int {
	if limit < 1 || limit > s.maxEventsLimit {
		return s.maxEventsLimit
	}
	return limit
}

// TeamRankings returns the best ranking row per event for the team.
func (s *Service) TeamRankings(ctx context.Context, teamID, seasonID string) (map[string]model.EventRank, error) {
	teamID, seasonID = strings.TrimSpace(teamID), strings.TrimSpace(seasonID)
	if teamID == "" {
		return nil, ErrMissingTeamID
	}

	key := cache.TeamRankingsKey(teamID, seasonID)
	rows, ok := cache.Load[[]model.RankingRow](ctx, s.cache, key)
	if !ok {
		if s.upstream == nil {
			return nil, ErrNoUpstream
		}
		var err error
		rows, err = s.upstream.FetchTeamRankings(ctx, teamID, seasonID)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, rows)
	}
	return performance.BestRanks(rows), nil
}

// TeamSkills returns the team's skills rows, optionally limited to eventIDs,
// together with the per-event reduction and its summary.
func (s *Service) TeamSkills(ctx context.Context, teamID string, eventIDs []string) (model.TeamSkills, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return model.TeamSkills{}, ErrMissingTeamID
	}

	key := cache.TeamSkillsKey(teamID, eventIDs)
	rows, ok := cache.Load[[]model.SkillRow](ctx, s.cache, key)
	if !ok {
		if s.upstream == nil {
			return model.TeamSkills{}, ErrNoUpstream
		}
		var err error
		rows, err = s.upstream.FetchTeamSkills(ctx, teamID, eventIDs)
		if err != nil {
			return model.TeamSkills{}, err
		}
		s.store(ctx, key, rows)
	}

	sorted := performance.SortSkills(rows)
	events := performance.ReduceSkills(sorted)
	return model.TeamSkills{
		TeamID:  teamID,
		Rows:    sorted,
		Events:  events,
		Summary: performance.SummarizeSkills(events),
	}, nil
}

// TeamAwards returns the team's awards, optionally limited to eventIDs,
// newest event first.
func (s *Service) TeamAwards(ctx context.Context, teamID string, eventIDs []string) ([]model.Award, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, ErrMissingTeamID
	}

	key := cache.TeamAwardsKey(teamID, eventIDs)
	awards, ok := cache.Load[[]model.Award](ctx, s.cache, key)
	if !ok {
		if s.upstream == nil {
			return nil, ErrNoUpstream
		}
		var err error
		awards, err = s.upstream.FetchTeamAwards(ctx, teamID, eventIDs)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, awards)
	}
	return performance.SortAwards(awards), nil
}

// Seasons returns seasons newest year first, optionally filtered by program
// and by participating teams.
func (s *Service) Seasons(ctx context.Context, programIDs, teamIDs []string) ([]model.Season, error) {
	key := cache.SeasonsKey(programIDs, teamIDs)
	if cached, ok := cache.Load[[]model.Season](ctx, s.cache, key); ok {
		return cached, nil
	}
	if s.upstream == nil {
		return nil, ErrNoUpstream
	}
	seasons, err := s.upstream.FetchSeasons(ctx, programIDs, teamIDs)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, seasons)
	return seasons, nil
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if err := cache.Store(ctx, s.cache, key, v, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache store failed",
			logger.String("key", key),
			logger.String("backend", s.cacheName()),
			logger.Error(err),
		)
	}
}

func (s *Service) cacheName() string {
	if s.cache == nil {
		return "none"
	}
	return s.cache.Name()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"cacheBackend":   s.cacheName(),
		"computations":   s.computations.Load(),
		"degradedEvents": s.degraded.Load(),
		"inlineReplays":  s.inline.Load(),
	}

	if sized, ok := s.cache.(interface{ Len() int }); ok {
		stats["cacheEntries"] = sized.Len()
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["replays"] = s.pool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
