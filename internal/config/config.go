// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and the environment.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// Cache backends understood by the service.
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIKey is the RobotEvents bearer token.
	APIKey string `koanf:"api_key"`
	// UpstreamBaseURL is the RobotEvents v2 API root.
	UpstreamBaseURL string `koanf:"upstream_base_url"`
	// PerPage is the page size requested from the upstream.
	PerPage int `koanf:"per_page"`
	// MaxPages caps pagination per resource.
	MaxPages int `koanf:"max_pages"`
	// RequestTimeoutMS bounds each upstream page request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
	// UserAgent is sent with upstream requests.
	UserAgent string `koanf:"user_agent"`

	// CacheBackend is one of memory, sqlite, redis, none.
	CacheBackend string `koanf:"cache_backend"`
	// CacheTTLSeconds is the freshness window of cached upstream resources.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
	// CacheSize bounds the in-memory cache entry count.
	CacheSize int `koanf:"cache_size"`
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`
	// RedisURL is the connection URL for the redis backend.
	RedisURL string `koanf:"redis_url"`
	// CachePurgeSchedule is a cron spec for purging expired entries.
	CachePurgeSchedule string `koanf:"cache_purge_schedule"`

	// WorkerCount sets the number of ledger replay workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the replay job queue.
	QueueSize int `koanf:"queue_size"`

	// Passcode gates /api when non-empty.
	Passcode string `koanf:"passcode"`
	// SessionTTLHours is the lifetime of an unlock session.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// MaxEventsLimit caps GET /api/team/events?limit.
	MaxEventsLimit int `koanf:"max_events_limit"`

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	// MetricsSubsystem is inserted between namespace and name when set.
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	// MetricsEnabled toggles upstream request recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`
	// MetricsBucketsMS overrides the latency histogram buckets.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`
	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New creates a Config populated with defaults. The context is reserved for
// future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		UpstreamBaseURL:    "https://www.robotevents.com/api/v2",
		PerPage:            250,
		MaxPages:           100,
		RequestTimeoutMS:   20_000,
		UserAgent:          "robonalysis/1.0",
		CacheBackend:       CacheBackendMemory,
		CacheTTLSeconds:    15 * 60,
		CacheSize:          2_000,
		SQLitePath:         "./robonalysis-cache.db",
		CachePurgeSchedule: "@every 5m",
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1_024,
		SessionTTLHours:    30 * 24,
		MaxEventsLimit:     250,
		MetricsNamespace:   "robonalysis",
		MetricsEnabled:     true,
	}
}

// CacheTTL returns the cache freshness window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-request upstream timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// SessionTTL returns the unlock session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.UpstreamBaseURL) == "":
		return fmt.Errorf("%w: upstream_base_url must not be empty", ErrInvalidConfig)
	case c.PerPage < 1 || c.PerPage > 250:
		return fmt.Errorf("%w: per_page must be within 1..250, got %d", ErrInvalidConfig, c.PerPage)
	case c.MaxPages < 1:
		return fmt.Errorf("%w: max_pages must be positive, got %d", ErrInvalidConfig, c.MaxPages)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.MaxEventsLimit < 1:
		return fmt.Errorf("%w: max_events_limit must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite cache", ErrInvalidConfig)
		}
	case CacheBackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("%w: redis_url is required for the redis cache", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnsupportedBackend, c.CacheBackend)
	}
	return nil
}

// validateMetrics rejects values the Prometheus client would panic on.
func (c *Config) validateMetrics() error {
	if !metricName.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for i := 1; i < len(c.MetricsBucketsMS); i++ {
		if c.MetricsBucketsMS[i] <= c.MetricsBucketsMS[i-1] {
			return fmt.Errorf("%w: metrics_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
