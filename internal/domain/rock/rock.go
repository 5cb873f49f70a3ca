// Package rock holds the per-rock-type climbing profiles used by the
// conditions engine.
package rock

import "strings"

// Type identifies a rock type. Unrecognized values fall back to Unknown.
type Type string

// Supported rock types.
const (
	Granite   Type = "granite"
	Sandstone Type = "sandstone"
	Limestone Type = "limestone"
	Basalt    Type = "basalt"
	Gneiss    Type = "gneiss"
	Quartzite Type = "quartzite"
	Unknown   Type = "unknown"
)

// TempRange is an inclusive temperature band in degrees Celsius.
type TempRange struct {
	Min float64
	Max float64
}

// Midpoint returns the center of the band.
func (r TempRange) Midpoint() float64 { return (r.Min + r.Max) / 2 }

// Profile describes how a rock type responds to weather.
type Profile struct {
	Type                 Type
	OptimalTemp          TempRange
	IdealHumidityMax     float64
	WindHighKph          float64
	WindDangerKph        float64
	WetIsDangerous       bool
	DryingRateHoursPerMm float64

	// ColdToleranceC is how far below OptimalTemp.Min the rock still grips
	// well. Zero disables the cold-friction reason.
	ColdToleranceC float64

	// LowHumidityBonus marks moisture-sensitive rock that gains friction in
	// very dry air.
	LowHumidityBonus bool
}

var profiles = map[Type]Profile{
	Granite: {
		Type:                 Granite,
		OptimalTemp:          TempRange{Min: 4, Max: 24},
		IdealHumidityMax:     60,
		WindHighKph:          30,
		WindDangerKph:        50,
		DryingRateHoursPerMm: 1.0,
		ColdToleranceC:       5,
		LowHumidityBonus:     true,
	},
	Sandstone: {
		Type:                 Sandstone,
		OptimalTemp:          TempRange{Min: 8, Max: 26},
		IdealHumidityMax:     55,
		WindHighKph:          30,
		WindDangerKph:        50,
		WetIsDangerous:       true,
		DryingRateHoursPerMm: 3.0,
		ColdToleranceC:       3,
	},
	Limestone: {
		Type:                 Limestone,
		OptimalTemp:          TempRange{Min: 8, Max: 25},
		IdealHumidityMax:     50,
		WindHighKph:          30,
		WindDangerKph:        50,
		DryingRateHoursPerMm: 1.5,
	},
	Basalt: {
		Type:                 Basalt,
		OptimalTemp:          TempRange{Min: 5, Max: 24},
		IdealHumidityMax:     60,
		WindHighKph:          30,
		WindDangerKph:        50,
		DryingRateHoursPerMm: 1.0,
		ColdToleranceC:       3,
	},
	Gneiss: {
		Type:                 Gneiss,
		OptimalTemp:          TempRange{Min: 4, Max: 23},
		IdealHumidityMax:     60,
		WindHighKph:          30,
		WindDangerKph:        50,
		DryingRateHoursPerMm: 1.0,
		ColdToleranceC:       5,
	},
	Quartzite: {
		Type:                 Quartzite,
		OptimalTemp:          TempRange{Min: 5, Max: 24},
		IdealHumidityMax:     60,
		WindHighKph:          30,
		WindDangerKph:        50,
		DryingRateHoursPerMm: 1.2,
		ColdToleranceC:       4,
	},
}

// generic is the conservative profile for unknown rock.
var generic = Profile{
	Type:                 Unknown,
	OptimalTemp:          TempRange{Min: 7, Max: 24},
	IdealHumidityMax:     55,
	WindHighKph:          25,
	WindDangerKph:        45,
	DryingRateHoursPerMm: 1.5,
	ColdToleranceC:       2,
}

// ProfileFor returns the profile for t. It never fails: unknown types get
// the generic profile.
func ProfileFor(t Type) Profile {
	if p, ok := profiles[t]; ok {
		return p
	}
	return generic
}

// Parse maps a user-supplied name to a Type, case-insensitively.
func Parse(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[t]; ok {
		return t
	}
	return Unknown
}

// Known reports whether t has a dedicated profile.
func (t Type) Known() bool {
	_, ok := profiles[t]
	return ok
}

// All returns every supported type, Unknown last.
func All() []Type {
	return []Type{Granite, Sandstone, Limestone, Basalt, Gneiss, Quartzite, Unknown}
}
