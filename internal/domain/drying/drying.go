// Package drying estimates how wet rock is after precipitation.
package drying

import (
	"math"

	"github.com/okian/cragcast/internal/domain/rock"
)

// Adjustment thresholds for the drying time.
const (
	humidSlowdownFromPct = 75.0
	humidSlowdownSpanPct = 50.0 // factor reaches 1.5 at 100%
	warmDryTempC         = 20.0
	warmDryHumidityPct   = 50.0
	warmDryFactor        = 0.75
	maxFactor            = 1 + (100-humidSlowdownFromPct)/humidSlowdownSpanPct
)

// Wetness is the drying state of the rock for one hour.
type Wetness struct {
	// Fraction is 0 for dry rock and 1 for fully wet rock.
	Fraction float64
	// HoursToDry is the estimated time until Fraction reaches 0. Nil when
	// the rock is already dry or it is still raining.
	HoursToDry *float64
	// CurrentlyWet is set when precipitation is falling right now.
	CurrentlyWet bool
}

// Dry reports whether the rock holds no residual moisture.
func (w Wetness) Dry() bool { return w.Fraction <= 0 && !w.CurrentlyWet }

// Raining is the wetness of an hour with active precipitation.
func Raining() Wetness {
	return Wetness{Fraction: 1, CurrentlyWet: true}
}

// FullyDryHours returns the hours the rock needs to dry after recentPrecipMm.
func FullyDryHours(recentPrecipMm float64, p rock.Profile, tempC, humidityPct float64) float64 {
	if recentPrecipMm <= 0 || math.IsNaN(recentPrecipMm) {
		return 0
	}
	return recentPrecipMm * p.DryingRateHoursPerMm * factor(tempC, humidityPct)
}

// MaxDryHours is the longest recentPrecipMm can take to dry in any weather.
// Past it the rock is dry whatever the temperature and humidity.
func MaxDryHours(recentPrecipMm float64, p rock.Profile) float64 {
	if recentPrecipMm <= 0 || math.IsNaN(recentPrecipMm) {
		return 0
	}
	return recentPrecipMm * p.DryingRateHoursPerMm * maxFactor
}

// factor is 1 in neutral weather, larger in humid air and smaller in warm dry air.
func factor(tempC, humidityPct float64) float64 {
	f := 1.0
	if !math.IsNaN(humidityPct) && humidityPct > humidSlowdownFromPct {
		f += (math.Min(humidityPct, 100) - humidSlowdownFromPct) / humidSlowdownSpanPct
	}
	if tempC >= warmDryTempC && humidityPct <= warmDryHumidityPct {
		f *= warmDryFactor
	}
	return f
}

// Estimate returns the wetness hoursSincePrecip hours after recentPrecipMm fell.
func Estimate(recentPrecipMm, hoursSincePrecip float64, p rock.Profile, tempC, humidityPct float64) Wetness {
	full := FullyDryHours(recentPrecipMm, p, tempC, humidityPct)
	if full <= 0 || hoursSincePrecip >= full {
		return Wetness{}
	}
	if hoursSincePrecip < 0 || math.IsNaN(hoursSincePrecip) {
		hoursSincePrecip = 0
	}
	remaining := 1 - hoursSincePrecip/full
	left := full - hoursSincePrecip
	return Wetness{
		Fraction:   remaining * remaining,
		HoursToDry: &left,
	}
}
