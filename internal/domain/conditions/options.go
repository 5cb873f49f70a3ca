package conditions

import (
	"time"

	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/scoring"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScorer replaces the friction scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithMaxWindows caps how many windows are returned.
func WithMaxWindows(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxWindows = n
		}
	}
}

// WithMinWindowRating sets the lowest rating an hour needs to join a window.
func WithMinWindowRating(c rating.Category) Option {
	return func(e *Engine) {
		e.minRating = c
	}
}

// WithNightHours sets whether night hours are returned by default.
func WithNightHours(include bool) Option {
	return func(e *Engine) {
		e.includeNight = include
	}
}

// RequestOption tunes a single ComputeConditions call.
type RequestOption func(*request)

type request struct {
	includeNight bool
	windows      bool
	hourly       bool
	seedAge      time.Duration
	minRating    rating.Category
	maxWindows   int
}

// IncludeNightHours overrides the engine's night-hour default.
func IncludeNightHours(include bool) RequestOption {
	return func(r *request) { r.includeNight = include }
}

// WithWindows asks for the optimal windows of the series.
func WithWindows() RequestOption {
	return func(r *request) { r.windows = true }
}

// WithoutHourly leaves the annotated series out of the result.
func WithoutHourly() RequestOption {
	return func(r *request) { r.hourly = false }
}

// WithSeedAge sets how long before the first hour the seed precipitation ended.
func WithSeedAge(d time.Duration) RequestOption {
	return func(r *request) {
		if d > 0 {
			r.seedAge = d
		}
	}
}

// WithWindowRating overrides the minimum window rating for one call.
func WithWindowRating(c rating.Category) RequestOption {
	return func(r *request) { r.minRating = c }
}

// WithWindowLimit overrides the window cap for one call.
func WithWindowLimit(n int) RequestOption {
	return func(r *request) {
		if n > 0 {
			r.maxWindows = n
		}
	}
}
