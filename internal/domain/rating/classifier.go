package rating

import (
	"math"
	"sort"

	"github.com/okian/cragcast/internal/domain/scoring"
)

// HighHumidityPct is the humidity above which a warning is raised.
const HighHumidityPct = 80.0

// Classification is the categorical view of a scored hour.
type Classification struct {
	Rating   Category
	Reasons  []Reason
	Warnings []Warning
}

type candidate struct {
	reason   Reason
	strength float64
}

// Classify derives the rating, reasons and warnings for a scored hour.
// Reasons are ordered strongest first. Warnings do not depend on reasons.
func Classify(res scoring.Result, in scoring.Input) Classification {
	c := Classification{
		Rating:   ForScore(res.Score),
		Reasons:  reasons(res, in),
		Warnings: warnings(in),
	}
	if scoring.Unsafe(in.Reading, in.Profile, in.Wetness) {
		c.Rating = Poor
	}
	if len(c.Reasons) == 0 && c.Rating >= OK {
		c.Reasons = []Reason{Acceptable{}}
	}
	return c
}

// Missing is the classification of an hour with unusable data.
func Missing() Classification {
	return Classification{Rating: Poor, Reasons: []Reason{}, Warnings: []Warning{MissingData{}}}
}

func reasons(res scoring.Result, in scoring.Input) []Reason {
	r, p, w := in.Reading, in.Profile, in.Wetness
	mid := p.OptimalTemp.Midpoint()
	var cands []candidate

	if math.Abs(r.TempC-mid) <= scoring.PerfectBandC {
		cands = append(cands, candidate{PerfectTemp{TempC: r.TempC}, res.Terms.Temperature})
	}
	if r.HumidityPct <= p.IdealHumidityMax {
		cands = append(cands, candidate{IdealHumidity{Pct: r.HumidityPct}, res.Terms.Humidity})
	}
	if p.LowHumidityBonus && r.HumidityPct < scoring.LowHumidityPct {
		cands = append(cands, candidate{LowHumidityGranite{Pct: r.HumidityPct}, res.Terms.Humidity})
	}
	if !w.CurrentlyWet && w.HoursToDry != nil {
		cands = append(cands, candidate{ReadyInHours{Hours: int(math.Ceil(*w.HoursToDry))}, res.Terms.Dryness})
	}
	if p.ColdToleranceC > 0 && r.TempC < mid-scoring.PerfectBandC && r.TempC >= p.OptimalTemp.Min-p.ColdToleranceC {
		cands = append(cands, candidate{ColdGoodFriction{RockType: p.Type}, res.Terms.Temperature})
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].strength > cands[j].strength })
	out := make([]Reason, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.reason)
	}
	return out
}

func warnings(in scoring.Input) []Warning {
	r, p, w := in.Reading, in.Profile, in.Wetness
	out := []Warning{}

	switch {
	case w.CurrentlyWet && p.WetIsDangerous:
		out = append(out, CurrentlyWetDangerous{})
	case w.CurrentlyWet:
		out = append(out, CurrentlyWet{})
	case w.Fraction > 0 && p.WetIsDangerous:
		out = append(out, WetDangerous{RockType: p.Type})
	case w.Fraction > 0:
		out = append(out, WetSlippery{})
	}

	switch {
	case r.WindKph > p.WindDangerKph:
		out = append(out, VeryHighWind{Kph: r.WindKph})
	case r.WindKph > p.WindHighKph:
		out = append(out, HighWind{Kph: r.WindKph})
	}

	switch {
	case r.TempC > p.OptimalTemp.Max:
		out = append(out, TooWarm{RockType: p.Type, TempC: r.TempC})
	case r.TempC < p.OptimalTemp.Min-p.ColdToleranceC:
		out = append(out, ColdSuboptimal{RockType: p.Type})
	}

	if r.HumidityPct > HighHumidityPct {
		out = append(out, HighHumidity{Pct: r.HumidityPct})
	}
	return out
}
