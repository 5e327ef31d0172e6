package service

import (
	"context"
	"fmt"

	"github.com/okian/robonalysis/internal/adapters/cache"
	"github.com/okian/robonalysis/internal/adapters/upstream"
	"github.com/okian/robonalysis/internal/config"
	"github.com/okian/robonalysis/pkg/logger"
	"github.com/okian/robonalysis/pkg/metrics"
)

// ConfigureMetrics rebuilds the process metrics from cfg. Call it before
// Bootstrap and before the metrics endpoint is registered.
func ConfigureMetrics(cfg *config.Config) {
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMS),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
}

// Bootstrap opens the configured cache and upstream client and returns an
// unstarted Service over them. The caller owns the returned cache.
func Bootstrap(ctx context.Context, cfg *config.Config, l logger.Logger) (*Service, cache.Cache, error) {
	if l == nil {
		l = logger.Nop()
	}

	store, err := cache.Open(ctx, cache.Settings{
		Backend:    cfg.CacheBackend,
		MaxEntries: cfg.CacheSize,
		SQLitePath: cfg.SQLitePath,
		RedisURL:   cfg.RedisURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s cache: %w", cfg.CacheBackend, err)
	}

	client := upstream.New(
		upstream.WithBaseURL(cfg.UpstreamBaseURL),
		upstream.WithAPIKey(cfg.APIKey),
		upstream.WithPerPage(cfg.PerPage),
		upstream.WithMaxPages(cfg.MaxPages),
		upstream.WithRequestTimeout(cfg.RequestTimeout()),
		upstream.WithUserAgent(cfg.UserAgent),
		upstream.WithLogger(l.Named("upstream")),
	)

	svc := New(
		WithUpstream(client),
		WithCache(store),
		WithCacheTTL(cfg.CacheTTL()),
		WithPurgeSchedule(cfg.CachePurgeSchedule),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithMaxEventsLimit(cfg.MaxEventsLimit),
		WithLogger(l.Named("service")),
	)
	return svc, store, nil
}
