package dedupe

import (
	"github.com/okian/robonalysis/internal/domain/model"
)

// Option applies a configuration option to the Set.
type Option func(*Set)

// WithRecency replaces the default recency key (EffectiveTime).
func WithRecency(fn func(model.Match) int64) Option {
	return func(s *Set) {
		if fn != nil {
			s.recency = fn
		}
	}
}
