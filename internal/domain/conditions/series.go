package conditions

import (
	"time"

	"github.com/okian/cragcast/internal/domain/daylight"
	"github.com/okian/cragcast/internal/domain/drying"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	"github.com/okian/cragcast/internal/domain/scoring"
)

// AnnotatedHour is an hourly reading with its score and explanation.
type AnnotatedHour struct {
	// Index is the position of the reading in the input series.
	Index    int
	Reading  model.HourlyReading
	Valid    bool
	Daylight bool
	Score    float64
	Rating   rating.Category
	Reasons  []rating.Reason
	Warnings []rating.Warning
	Wetness  drying.Wetness
}

// EvaluateOptions tunes series evaluation. The zero value scores with the
// default scorer, drops night hours by fixed hours in each timestamp's own
// offset and assumes
// the precipitation seed ended right before the first hour.
type EvaluateOptions struct {
	IncludeNightHours bool
	SeedAge           time.Duration
	Daylight          daylight.Classifier
	Scorer            scoring.Scorer
}

func (o EvaluateOptions) withDefaults() EvaluateOptions {
	if o.Daylight == nil {
		o.Daylight = daylight.Hours{First: daylight.DefaultFirstHour, Last: daylight.DefaultLastHour}
	}
	if o.Scorer == nil {
		o.Scorer = scoring.NewFrictionScorer()
	}
	return o
}

// Evaluate scores every hour of the series. Night hours are scored but left
// out of the result unless IncludeNightHours is set. Unusable readings are
// kept as invalid hours.
func Evaluate(hourly []model.HourlyReading, rt rock.Type, recentPrecipMm float64, opts EvaluateOptions) []AnnotatedHour {
	opts = opts.withDefaults()
	p := rock.ProfileFor(rt)
	out := make([]AnnotatedHour, 0, len(hourly))
	if len(hourly) == 0 {
		return out
	}

	tr := newPrecipTracker(recentPrecipMm, opts.SeedAge, hourly[0].Time)
	for i, r := range hourly {
		h := annotate(i, r, p, tr.wetness(i, r, p), opts)
		tr.observe(i, r)
		if !opts.IncludeNightHours && !h.Daylight {
			continue
		}
		out = append(out, h)
	}
	return out
}

func annotate(i int, r model.HourlyReading, p rock.Profile, w drying.Wetness, opts EvaluateOptions) AnnotatedHour {
	h := AnnotatedHour{
		Index:    i,
		Reading:  r,
		Valid:    r.Valid(),
		Daylight: r.Time.IsZero() || opts.Daylight.IsDay(r.Time),
	}
	if !h.Valid {
		c := rating.Missing()
		h.Rating, h.Reasons, h.Warnings = c.Rating, c.Reasons, c.Warnings
		return h
	}

	in := scoring.Input{Reading: r, Profile: p, Wetness: w}
	res := opts.Scorer.Score(in)
	c := rating.Classify(res, in)
	h.Score, h.Wetness = res.Score, w
	h.Rating, h.Reasons, h.Warnings = c.Rating, c.Reasons, c.Warnings
	return h
}

// precipTracker follows the rain spells of a series while walking it. Every
// spell that may still be drying is kept; the wettest one wins.
type precipTracker struct {
	seedMm    float64
	seedHours float64
	origin    time.Time
	spells    []spell
}

// spell is a run of consecutive rainy readings.
type spell struct {
	mm       float64
	lastIdx  int
	lastTime time.Time
}

func newPrecipTracker(seedMm float64, seedAge time.Duration, origin time.Time) *precipTracker {
	return &precipTracker{seedMm: seedMm, seedHours: seedAge.Hours(), origin: origin}
}

// observe records reading i. Consecutive rainy readings form one spell.
func (t *precipTracker) observe(i int, r model.HourlyReading) {
	if !r.Valid() || !r.Raining() {
		return
	}
	if n := len(t.spells); n > 0 && t.spells[n-1].lastIdx == i-1 {
		last := &t.spells[n-1]
		last.mm += r.PrecipMm
		last.lastIdx, last.lastTime = i, r.Time
		return
	}
	t.spells = append(t.spells, spell{mm: r.PrecipMm, lastIdx: i, lastTime: r.Time})
}

// wetness is the wetness of reading i given the readings observed so far.
// Seed and in-series rain are both considered; the wetter one wins.
func (t *precipTracker) wetness(i int, r model.HourlyReading, p rock.Profile) drying.Wetness {
	if r.Raining() {
		return drying.Raining()
	}
	var w drying.Wetness
	if t.seedMm > 0 {
		w = drying.Estimate(t.seedMm, t.seedHours+elapsedHours(t.origin, r.Time, 0, i), p, r.TempC, r.HumidityPct)
	}
	kept := t.spells[:0]
	for _, s := range t.spells {
		since := elapsedHours(s.lastTime, r.Time, s.lastIdx, i)
		w = wetter(w, drying.Estimate(s.mm, since, p, r.TempC, r.HumidityPct))
		if since < drying.MaxDryHours(s.mm, p) {
			kept = append(kept, s)
		}
	}
	t.spells = kept
	return w
}

// elapsedHours uses timestamps when they increase and the index distance
// otherwise, so duplicated or unordered input still yields a sane value.
func elapsedHours(from, to time.Time, fromIdx, toIdx int) float64 {
	if !from.IsZero() && !to.IsZero() && to.After(from) {
		return to.Sub(from).Hours()
	}
	if toIdx <= fromIdx {
		return 0
	}
	return float64(toIdx - fromIdx)
}

func wetter(a, b drying.Wetness) drying.Wetness {
	if b.Fraction > a.Fraction {
		return b
	}
	return a
}
