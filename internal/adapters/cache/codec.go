package cache

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/robonalysis/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load decodes the cached value for key into T. ok is false on a miss, a
// backend failure or an undecodable value; failures are counted, not returned.
func Load[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	raw, err := c.Get(ctx, key)
	switch {
	case errors.Is(err, ErrCacheMiss):
		metrics.RecordCacheMiss(c.Name())
		return zero, false
	case err != nil:
		metrics.RecordCacheError(c.Name(), "get")
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		metrics.RecordCacheError(c.Name(), "decode")
		return zero, false
	}
	metrics.RecordCacheHit(c.Name())
	return v, true
}

// Store encodes v and stores it under key for ttl.
func Store[T any](ctx context.Context, c Cache, key string, v T, ttl time.Duration) error {
	if c == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		metrics.RecordCacheError(c.Name(), "encode")
		return err
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		metrics.RecordCacheError(c.Name(), "set")
		return err
	}
	return nil
}
