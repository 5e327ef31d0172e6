package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/okian/robonalysis/internal/domain/types"
	"github.com/okian/robonalysis/pkg/logger"
)

// Run probes a running service: it requests the match context of every
// configured team, then the standings of every event those teams attended,
// and checks each response. It returns ErrViolations when any check fails.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if len(config.TeamIDs) == 0 {
		return nil, ErrNoTeams
	}
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	log := logger.Get().Named("probe")
	report := &Report{Stats: Stats{StartTime: time.Now()}}

	log.Info(ctx, "starting probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("teams", len(config.TeamIDs)),
		logger.Int("workers", workers),
		logger.Duration("timeout", timeout),
		logger.Bool("gated", config.Passcode != ""))

	client := NewHTTPClient(config.BaseURL, timeout)

	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	if config.Passcode != "" {
		if err := client.Unlock(ctx, config.Passcode); err != nil {
			return nil, err
		}
	}

	events := probeTeams(ctx, client, config, workers, report, log)
	probeEvents(ctx, client, config, events, workers, report, log)

	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)

	if config.OutputFile != "" {
		if err := SaveReport(config.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved", logger.String("file", config.OutputFile))
		}
	}

	displayFinalStats(ctx, log, report)

	if len(report.Violations) > 0 {
		return report, fmt.Errorf("%w: %d", ErrViolations, len(report.Violations))
	}
	return report, nil
}

// probeTeams requests every team's context and returns the sorted set of
// event ids seen.
func probeTeams(ctx context.Context, client *HTTPClient, config *Config, workers int, report *Report, log logger.Logger) []string {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		latency time.Duration
		events  = make(map[string]struct{})
		teams   = make(chan string, workers*2)
	)
	report.Stats.TeamsRequested = len(config.TeamIDs)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range teams {
				start := time.Now()
				resp, err := client.MatchContext(ctx, id)
				took := time.Since(start)

				mu.Lock()
				if err != nil {
					report.Stats.TeamsFailed++
					report.Failures = append(report.Failures, err.Error())
					mu.Unlock()
					log.Warn(ctx, "context request failed", logger.String("team", id), logger.Error(err))
					continue
				}
				report.Stats.TeamsSucceeded++
				report.Stats.ContextRecords += len(resp.Context)
				report.Stats.DegradedEvents += len(resp.Degraded)
				report.Violations = append(report.Violations, VerifyContext(resp)...)
				latency += took
				collectEvents(resp, events)
				mu.Unlock()

				if config.Verbose {
					log.Info(ctx, "context verified",
						logger.String("team", id),
						logger.Int("matches", len(resp.Matches)),
						logger.Int("records", len(resp.Context)),
						logger.Duration("took", took))
				}
			}
		}()
	}

	func() {
		defer close(teams)
		for _, id := range config.TeamIDs {
			select {
			case <-ctx.Done():
				return
			case teams <- id:
			}
		}
	}()
	wg.Wait()

	if n := report.Stats.TeamsSucceeded; n > 0 {
		report.Stats.ContextLatencyAvg = latency / time.Duration(n)
	}

	out := make([]string, 0, len(events))
	for id := range events {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func collectEvents(resp types.ContextResponse, into map[string]struct{}) {
	for _, m := range resp.Matches {
		if m.EventID != "" {
			into[m.EventID] = struct{}{}
		}
	}
}

// probeEvents requests and checks the standings of each event.
func probeEvents(ctx context.Context, client *HTTPClient, config *Config, events []string, workers int, report *Report, log logger.Logger) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		ids = make(chan string, workers*2)
	)
	report.Stats.EventsRequested = len(events)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				st, err := client.EventStandings(ctx, id)

				mu.Lock()
				if err != nil {
					report.Stats.EventsFailed++
					report.Failures = append(report.Failures, err.Error())
				} else {
					report.Stats.EventsSucceeded++
					report.Violations = append(report.Violations, VerifyStandings(st)...)
				}
				mu.Unlock()

				if err != nil {
					log.Warn(ctx, "standings request failed", logger.String("event", id), logger.Error(err))
				} else if config.Verbose {
					log.Info(ctx, "standings verified",
						logger.String("event", id),
						logger.Int("teams", len(st.Standings)),
						logger.Bool("degraded", st.Degraded))
				}
			}
		}()
	}

	func() {
		defer close(ids)
		for _, id := range events {
			select {
			case <-ctx.Done():
				return
			case ids <- id:
			}
		}
	}()
	wg.Wait()
}

// SaveReport writes the report as indented JSON, creating parent directories.
func SaveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(body, '\n'), reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the final probe statistics and every violation.
func displayFinalStats(ctx context.Context, log logger.Logger, report *Report) {
	s := report.Stats
	for _, v := range report.Violations {
		log.Error(ctx, "invariant violated",
			logger.String("resource", v.Resource),
			logger.String("key", v.Key),
			logger.String("detail", v.Detail))
	}
	log.Info(ctx, "final statistics",
		logger.Int("teamsSucceeded", s.TeamsSucceeded),
		logger.Int("teamsFailed", s.TeamsFailed),
		logger.Int("contextRecords", s.ContextRecords),
		logger.Int("degradedEvents", s.DegradedEvents),
		logger.Int("eventsSucceeded", s.EventsSucceeded),
		logger.Int("eventsFailed", s.EventsFailed),
		logger.Int("violations", len(report.Violations)),
		logger.Duration("contextLatencyAvg", s.ContextLatencyAvg),
		logger.Duration("duration", s.Duration))
}
