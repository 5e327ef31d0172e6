package cache

import (
	"context"
	"fmt"
	"strings"
)

// Settings selects and configures a backend.
type Settings struct {
	// Backend is one of memory, sqlite, redis or none.
	Backend    string
	MaxEntries int
	SQLitePath string
	RedisURL   string
}

// Open builds the configured backend.
func Open(ctx context.Context, s Settings) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case "", "memory":
		return NewMemory(WithMaxEntries(s.MaxEntries)), nil
	case "sqlite":
		return OpenSQLite(ctx, s.SQLitePath)
	case "redis":
		return OpenRedis(ctx, s.RedisURL)
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, s.Backend)
	}
}
