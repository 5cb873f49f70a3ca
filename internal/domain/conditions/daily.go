package conditions

import (
	"math"
	"time"

	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/scoring"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DayOutlook summarizes one calendar day of the forecast.
type DayOutlook struct {
	Date           time.Time
	HighC          float64
	LowC           float64
	PrecipMm       float64
	Sunrise        time.Time
	Sunset         time.Time
	AverageScore   float64
	PeakScore      float64
	Rating         rating.Category // rating of the best hour
	ClimbableHours int             // hours rated good or better
}

type dayBucket struct {
	date   time.Time
	temps  []float64
	precip []float64
	scores []float64
	good   int
}

// summarizeDays groups hours by local calendar day. A nil zone uses each
// timestamp's own offset. Weather figures use every
// valid hour; scores only use hours present in the evaluated series. Provider
// daily summaries override the weather figures when available.
func summarizeDays(all, shown []AnnotatedHour, provided []model.DailyWeather, zone *time.Location) []DayOutlook {
	var order []string
	buckets := map[string]*dayBucket{}
	bucket := func(t time.Time) *dayBucket {
		local := model.InZone(t, zone)
		key := local.Format(time.DateOnly)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{date: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())}
			buckets[key] = b
			order = append(order, key)
		}
		return b
	}

	for _, h := range all {
		if !h.Valid || h.Reading.Time.IsZero() {
			continue
		}
		b := bucket(h.Reading.Time)
		b.temps = append(b.temps, h.Reading.TempC)
		b.precip = append(b.precip, h.Reading.PrecipMm)
	}
	for _, h := range shown {
		if !h.Valid || h.Reading.Time.IsZero() {
			continue
		}
		b := bucket(h.Reading.Time)
		b.scores = append(b.scores, h.Score)
		if h.Rating >= rating.Good {
			b.good++
		}
	}

	byDate := make(map[string]model.DailyWeather, len(provided))
	for _, d := range provided {
		byDate[model.InZone(d.Date, zone).Format(time.DateOnly)] = d
	}

	out := make([]DayOutlook, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		d := DayOutlook{Date: b.date, ClimbableHours: b.good}
		if len(b.temps) > 0 {
			d.HighC = floats.Max(b.temps)
			d.LowC = floats.Min(b.temps)
			d.PrecipMm = scoring.Round(floats.Sum(b.precip))
		}
		if len(b.scores) > 0 {
			d.AverageScore = scoring.Round(stat.Mean(b.scores, nil))
			d.PeakScore = floats.Max(b.scores)
			d.Rating = rating.ForScore(d.PeakScore)
		}
		if p, ok := byDate[key]; ok {
			d.HighC = known(p.TempMaxC, d.HighC)
			d.LowC = known(p.TempMinC, d.LowC)
			d.PrecipMm = known(p.PrecipMm, d.PrecipMm)
			d.Sunrise, d.Sunset = p.Sunrise, p.Sunset
		}
		out = append(out, d)
	}
	return out
}

// known returns v unless it is NaN.
func known(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
