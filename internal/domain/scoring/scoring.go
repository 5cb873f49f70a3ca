// Package scoring computes the friction score of an hour of weather on a
// given rock type.
package scoring

import (
	"math"

	"github.com/okian/cragcast/internal/domain/drying"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rock"
)

// Scoring constants.
const (
	MaxScore = 5.0

	// SafetyCeiling caps the score of unsafe hours. It sits inside the poor band.
	SafetyCeiling = 1.5

	// PerfectBandC is the half-width around the optimal midpoint that scores 1.
	PerfectBandC = 5.0

	// LowHumidityPct is the humidity under which moisture-sensitive rock gets a bonus.
	LowHumidityPct = 45.0

	lowHumidityBonus = 0.25
	coldFloorTerm    = 0.5
	coldFalloffC     = 8.0
	windComfortRatio = 0.6
	windHighTerm     = 0.7
	windDangerTerm   = 0.3
	windZeroRatio    = 1.5

	defaultTempWeight     = 0.45
	defaultHumidityWeight = 0.35
	defaultWindWeight     = 0.20
)

// Option applies a configuration option to the FrictionScorer.
type Option func(*FrictionScorer)

// WithWeights sets the relative weights of the temperature, humidity and
// wind terms. Weights are normalized; non-positive sets are ignored.
func WithWeights(temperature, humidity, wind float64) Option {
	return func(s *FrictionScorer) {
		if temperature < 0 || humidity < 0 || wind < 0 {
			return
		}
		sum := temperature + humidity + wind
		if sum <= 0 {
			return
		}
		s.tempWeight = temperature / sum
		s.humidityWeight = humidity / sum
		s.windWeight = wind / sum
	}
}

// WithWeightsFromConfig reads the "temperature", "humidity" and "wind"
// keys of a configuration map. Missing keys keep their defaults.
func WithWeightsFromConfig(weights map[string]float64) Option {
	return func(s *FrictionScorer) {
		t, h, w := s.tempWeight, s.humidityWeight, s.windWeight
		if v, ok := weights["temperature"]; ok {
			t = v
		}
		if v, ok := weights["humidity"]; ok {
			h = v
		}
		if v, ok := weights["wind"]; ok {
			w = v
		}
		WithWeights(t, h, w)(s)
	}
}

// Input is everything needed to score one hour.
type Input struct {
	Reading model.HourlyReading
	Profile rock.Profile
	Wetness drying.Wetness
}

// Terms are the normalized per-factor contributions, each in [0,1].
type Terms struct {
	Temperature float64
	Humidity    float64
	Wind        float64
	Dryness     float64
}

// Result contains the composite score and its terms.
type Result struct {
	Score float64
	Terms Terms
	// Capped is set when a safety rule lowered the score.
	Capped bool
}

// Scorer computes a friction score from an input.
type Scorer interface {
	Score(in Input) Result
}

// FrictionScorer implements Scorer with piecewise-linear terms.
type FrictionScorer struct {
	tempWeight     float64
	humidityWeight float64
	windWeight     float64
}

// NewFrictionScorer creates a scorer with configuration options.
func NewFrictionScorer(opts ...Option) *FrictionScorer {
	s := &FrictionScorer{
		tempWeight:     defaultTempWeight,
		humidityWeight: defaultHumidityWeight,
		windWeight:     defaultWindWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the friction score for the given input.
func (s *FrictionScorer) Score(in Input) Result {
	r, p := in.Reading, in.Profile
	terms := Terms{
		Temperature: TemperatureTerm(r.TempC, p),
		Humidity:    HumidityTerm(r.HumidityPct, p),
		Wind:        WindTerm(r.WindKph, p),
		Dryness:     clamp01(1 - in.Wetness.Fraction),
	}

	weather := s.tempWeight*terms.Temperature + s.humidityWeight*terms.Humidity + s.windWeight*terms.Wind
	score := MaxScore * weather * terms.Dryness
	if p.LowHumidityBonus && r.HumidityPct < LowHumidityPct && terms.Dryness > 0 {
		score += lowHumidityBonus
	}
	score = math.Max(0, math.Min(MaxScore, score))

	capped := false
	if Unsafe(r, p, in.Wetness) && score > SafetyCeiling {
		score = SafetyCeiling
		capped = true
	}

	return Result{Score: Round(score), Terms: terms, Capped: capped}
}

// Unsafe reports hours that must never rate above poor: wet rock that is
// weakened by water, and wind above the danger threshold.
func Unsafe(r model.HourlyReading, p rock.Profile, w drying.Wetness) bool {
	if p.WetIsDangerous && (w.Fraction > 0 || w.CurrentlyWet) {
		return true
	}
	return r.WindKph > p.WindDangerKph
}

// TemperatureTerm is 1 near the optimal midpoint. It reaches 0 at the top of
// the optimal range and falls off more gently on the cold side.
func TemperatureTerm(tempC float64, p rock.Profile) float64 {
	mid := p.OptimalTemp.Midpoint()
	switch {
	case math.Abs(tempC-mid) <= PerfectBandC:
		return 1
	case tempC > mid:
		return clamp01(linear(tempC, mid+PerfectBandC, 1, p.OptimalTemp.Max, 0))
	}
	coldEdge := p.OptimalTemp.Min - p.ColdToleranceC
	if tempC >= coldEdge {
		return linear(tempC, mid-PerfectBandC, 1, coldEdge, coldFloorTerm)
	}
	return clamp01(linear(tempC, coldEdge, coldFloorTerm, coldEdge-coldFalloffC, 0))
}

// HumidityTerm is 1 up to the ideal maximum and decays linearly to 0 at 100%.
func HumidityTerm(pct float64, p rock.Profile) float64 {
	if pct <= p.IdealHumidityMax {
		return 1
	}
	return clamp01(linear(pct, p.IdealHumidityMax, 1, model.MaxHumidity, 0))
}

// WindTerm is 1 in light wind and drops through the high and danger thresholds.
func WindTerm(kph float64, p rock.Profile) float64 {
	comfort := p.WindHighKph * windComfortRatio
	switch {
	case kph <= comfort:
		return 1
	case kph <= p.WindHighKph:
		return linear(kph, comfort, 1, p.WindHighKph, windHighTerm)
	case kph <= p.WindDangerKph:
		return linear(kph, p.WindHighKph, windHighTerm, p.WindDangerKph, windDangerTerm)
	}
	return clamp01(linear(kph, p.WindDangerKph, windDangerTerm, p.WindDangerKph*windZeroRatio, 0))
}

// Round rounds a score to two decimals.
func Round(v float64) float64 { return math.Round(v*100) / 100 }

// linear interpolates the value at x on the line through (x0,y0) and (x1,y1).
func linear(x, x0, y0, x1, y1 float64) float64 {
	if x1 == x0 {
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
