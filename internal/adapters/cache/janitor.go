package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/robonalysis/pkg/logger"
	"github.com/okian/robonalysis/pkg/metrics"
)

const purgeTimeout = 30 * time.Second

// Janitor purges expired entries on a cron schedule.
type Janitor struct {
	cache Cache
	cron  *cron.Cron
	log   logger.Logger
}

// NewJanitor schedules Purge on c. spec is a robfig/cron expression such as
// "@every 5m" or "*/10 * * * *".
func NewJanitor(c Cache, spec string, log logger.Logger) (*Janitor, error) {
	if log == nil {
		log = logger.Nop()
	}
	j := &Janitor{cache: c, cron: cron.New(), log: log}
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	return j, nil
}

// Start begins running the schedule in the background.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the schedule and waits for a running purge to finish or ctx to
// end.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce purges immediately.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	n, err := j.cache.Purge(ctx)
	if err != nil {
		metrics.RecordCacheError(j.cache.Name(), "purge")
		return 0, err
	}
	metrics.RecordCachePurged(n)
	return n, nil
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := j.RunOnce(ctx)
	if err != nil {
		j.log.Warn(ctx, "cache purge failed", logger.String("backend", j.cache.Name()), logger.Error(err))
		return
	}
	if n > 0 {
		j.log.Debug(ctx, "cache purged", logger.String("backend", j.cache.Name()), logger.Int("removed", n))
	}
}
