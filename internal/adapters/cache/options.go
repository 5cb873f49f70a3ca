package cache

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type config struct {
	maxSize int
	ttl     time.Duration
	clock   clockwork.Clock
}

// Option applies a configuration option to the cache.
type Option func(*config)

// WithMaxSize sets the maximum number of entries.
// If maxSize > 0: bounded mode with LRU eviction.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}

// WithTTL sets how long an entry stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces the clock used for expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}
