// Package conditions evaluates hourly forecasts for climbing and finds the
// best windows to climb. Everything here is pure: the same inputs always
// produce the same result and nothing is shared between calls.
package conditions

import (
	"github.com/okian/cragcast/internal/domain/daylight"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	"github.com/okian/cragcast/internal/domain/scoring"
)

// Result is the full conditions report for one location and rock type.
type Result struct {
	RockType       rock.Type
	Current        AnnotatedHour
	Hourly         []AnnotatedHour
	Daily          []DayOutlook
	OptimalWindows []Window
}

// Engine is the conditions facade. It is safe for concurrent use.
type Engine struct {
	scorer       scoring.Scorer
	maxWindows   int
	minRating    rating.Category
	includeNight bool
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		scorer:     scoring.NewFrictionScorer(),
		maxWindows: DefaultMaxWindows,
		minRating:  DefaultMinRating,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeConditions rates the current reading and the hourly series of a
// snapshot. With an empty series only the current reading is rated.
func (e *Engine) ComputeConditions(w model.WeatherSnapshot, rt rock.Type, recentPrecipMm float64, opts ...RequestOption) Result {
	req := request{
		includeNight: e.includeNight,
		hourly:       true,
		minRating:    e.minRating,
		maxWindows:   e.maxWindows,
	}
	for _, opt := range opts {
		opt(&req)
	}

	eval := EvaluateOptions{
		IncludeNightHours: true,
		SeedAge:           req.seedAge,
		Daylight:          daylight.ForSnapshot(w),
		Scorer:            e.scorer,
	}
	all := Evaluate(w.Hourly, rt, recentPrecipMm, eval)
	shown := all
	if !req.includeNight {
		shown = daytime(all)
	}

	res := Result{
		RockType: rock.ProfileFor(rt).Type,
		Current:  e.current(w, rt, recentPrecipMm, eval),
		Hourly:   []AnnotatedHour{},
		Daily:    summarizeDays(all, shown, w.DailySummaries, w.LocalZone()),
	}
	if req.hourly {
		res.Hourly = shown
	}
	if req.windows {
		res.OptimalWindows = FindWindows(shown, req.minRating, req.maxWindows)
	}
	return res
}

// FindOptimalWindows evaluates a bare hourly series, night hours excluded,
// and returns its best windows.
func (e *Engine) FindOptimalWindows(hourly []model.HourlyReading, rt rock.Type) []Window {
	hours := Evaluate(hourly, rt, 0, EvaluateOptions{Scorer: e.scorer, IncludeNightHours: e.includeNight})
	return FindWindows(hours, e.minRating, e.maxWindows)
}

// current rates the snapshot's current reading, carrying the rain history
// of every series hour at or before it.
func (e *Engine) current(w model.WeatherSnapshot, rt rock.Type, recentPrecipMm float64, eval EvaluateOptions) AnnotatedHour {
	eval = eval.withDefaults()
	p := rock.ProfileFor(rt)
	cur := w.Current

	origin := cur.Time
	if len(w.Hourly) > 0 {
		origin = w.Hourly[0].Time
	}
	tr := newPrecipTracker(recentPrecipMm, eval.SeedAge, origin)
	i := 0
	for ; i < len(w.Hourly); i++ {
		r := w.Hourly[i]
		if cur.Time.IsZero() || r.Time.After(cur.Time) {
			break
		}
		tr.observe(i, r)
	}
	h := annotate(i, cur, p, tr.wetness(i, cur, p), eval)
	h.Index = -1
	return h
}

func daytime(hours []AnnotatedHour) []AnnotatedHour {
	out := make([]AnnotatedHour, 0, len(hours))
	for _, h := range hours {
		if h.Daylight {
			out = append(out, h)
		}
	}
	return out
}
