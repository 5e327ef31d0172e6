package cache

import (
	"context"
	"time"
)

// Noop never stores anything.
type Noop struct{}

// Get implements Cache.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

// Set implements Cache.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Purge implements Cache.
func (Noop) Purge(context.Context) (int, error) { return 0, nil }

// Name implements Cache.
func (Noop) Name() string { return "none" }

// Close implements Cache.
func (Noop) Close() error { return nil }
