package service

import (
	"time"

	"github.com/okian/robonalysis/internal/adapters/cache"
	"github.com/okian/robonalysis/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithUpstream sets the events API client.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		if u != nil {
			s.upstream = u
		}
	}
}

// WithCache sets the response cache. A nil cache disables caching.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCacheTTL sets the freshness window of cached upstream resources.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithPurgeSchedule sets the cron spec used to purge expired cache entries.
// An empty spec disables the janitor.
func WithPurgeSchedule(spec string) Option {
	return func(s *Service) {
		s.purgeSchedule = spec
	}
}

// WithWorkerCount sets the number of replay workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending replay jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxEventsLimit caps the number of events TeamEvents returns.
func WithMaxEventsLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxEventsLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
