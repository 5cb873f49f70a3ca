// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"
)

// Plausible sensor ranges. Values outside are treated as missing data.
const (
	MinTempC     = -60.0
	MaxTempC     = 60.0
	MaxWindKph   = 300.0
	MaxPrecipMm  = 500.0
	MaxHumidity  = 100.0
	hoursPerSlot = time.Hour
)

// HourlyReading is one forecast (or observed) hour.
type HourlyReading struct {
	Time        time.Time // start of the hour
	TempC       float64
	HumidityPct float64
	WindKph     float64
	PrecipMm    float64 // precipitation during this hour
}

// Valid reports whether every field is a finite value inside its plausible range.
func (r HourlyReading) Valid() bool {
	return inRange(r.TempC, MinTempC, MaxTempC) &&
		inRange(r.HumidityPct, 0, MaxHumidity) &&
		inRange(r.WindKph, 0, MaxWindKph) &&
		inRange(r.PrecipMm, 0, MaxPrecipMm)
}

// Raining reports whether the hour carries measurable precipitation.
func (r HourlyReading) Raining() bool {
	return r.PrecipMm > 0 && !math.IsNaN(r.PrecipMm)
}

// End returns the end of the hour slot.
func (r HourlyReading) End() time.Time { return r.Time.Add(hoursPerSlot) }

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= lo && v <= hi
}

// DailyWeather is the provider's per-day summary.
type DailyWeather struct {
	Date     time.Time // local midnight
	TempMaxC float64
	TempMinC float64
	PrecipMm float64
	Sunrise  time.Time // zero when unknown
	Sunset   time.Time // zero when unknown
}

// Location is a point on the map and its IANA time zone.
type Location struct {
	Lat      float64
	Lon      float64
	Timezone string
}

// Zone loads the location's time zone, falling back to UTC.
func (l Location) Zone() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	z, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return z
}

// WeatherSnapshot is a forecast as delivered by a weather provider.
type WeatherSnapshot struct {
	Location       *Location // optional
	Current        HourlyReading
	Hourly         []HourlyReading
	DailySummaries []DailyWeather
}

// Zone returns the snapshot's time zone (UTC when unknown).
func (s WeatherSnapshot) Zone() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location.Zone()
}

// LocalZone is the zone of the snapshot's location, or nil when it has none
// and timestamps carry their own offsets.
func (s WeatherSnapshot) LocalZone() *time.Location {
	if s.Location == nil {
		return nil
	}
	return s.Location.Zone()
}

// InZone returns t in zone, or t unchanged when zone is nil.
func InZone(t time.Time, zone *time.Location) time.Time {
	if zone == nil {
		return t
	}
	return t.In(zone)
}

// Forecast is a provider snapshot plus the precipitation that fell before it.
type Forecast struct {
	Snapshot WeatherSnapshot
	// RecentPrecipMm is the precipitation in the days before the series.
	RecentPrecipMm float64
	// SeedAge is how long before the first hour that precipitation ended.
	SeedAge time.Duration
}
