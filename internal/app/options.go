package service

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/cragcast/internal/adapters/cache"
	"github.com/okian/cragcast/internal/adapters/repository"
	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the weather provider.
func WithProvider(p WeatherProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithEngine replaces the conditions engine.
func WithEngine(e *conditions.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithCache replaces the conditions cache.
func WithCache(c cache.Cache[conditions.Result]) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithRanking replaces the crag ranking store.
func WithRanking(r repository.Store) Option {
	return func(s *Service) {
		if r != nil {
			s.ranking = r
		}
	}
}

// WithClock sets the clock driving the refresh schedule.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithCrags sets the crags kept fresh in the background.
func WithCrags(crags []model.Crag) Option {
	return func(s *Service) {
		s.crags = crags
	}
}

// WithForecastDays sets the default forecast length.
func WithForecastDays(days int) Option {
	return func(s *Service) {
		if days > 0 && days <= MaxForecastDays {
			s.forecastDays = days
		}
	}
}

// WithNightHours sets whether lookups include night hours by default.
func WithNightHours(include bool) Option {
	return func(s *Service) {
		s.includeNight = include
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval sets how often every crag is refreshed.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithBatchLimit caps the number of queries in one batch.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// WithMaxCragsLimit caps how many crags TopCrags returns.
func WithMaxCragsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCragsLimit = n
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
