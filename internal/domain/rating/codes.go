package rating

import "github.com/okian/cragcast/internal/domain/rock"

// Reason explains why an hour rates well. The set of variants is closed.
type Reason interface {
	Code() string
	Params() map[string]any
	reason()
}

// Severity grades a warning.
type Severity string

// Warning severities.
const (
	Caution Severity = "caution"
	Danger  Severity = "danger"
)

// Warning flags a condition that hurts friction or safety. The set of
// variants is closed.
type Warning interface {
	Code() string
	Severity() Severity
	Params() map[string]any
	warning()
}

// Reasons.
type (
	PerfectTemp        struct{ TempC float64 }
	IdealHumidity      struct{ Pct float64 }
	LowHumidityGranite struct{ Pct float64 }
	ReadyInHours       struct{ Hours int }
	ColdGoodFriction   struct{ RockType rock.Type }
	Acceptable         struct{}
)

func (PerfectTemp) Code() string        { return "perfect_temp" }
func (IdealHumidity) Code() string      { return "ideal_humidity" }
func (LowHumidityGranite) Code() string { return "low_humidity_granite" }
func (ReadyInHours) Code() string       { return "ready_in_hours" }
func (ColdGoodFriction) Code() string   { return "cold_good_friction" }
func (Acceptable) Code() string         { return "acceptable" }

func (r PerfectTemp) Params() map[string]any        { return map[string]any{"tempC": r.TempC} }
func (r IdealHumidity) Params() map[string]any      { return map[string]any{"pct": r.Pct} }
func (r LowHumidityGranite) Params() map[string]any { return map[string]any{"pct": r.Pct} }
func (r ReadyInHours) Params() map[string]any       { return map[string]any{"hours": r.Hours} }
func (r ColdGoodFriction) Params() map[string]any   { return map[string]any{"rockType": r.RockType} }
func (Acceptable) Params() map[string]any           { return nil }

func (PerfectTemp) reason()        {}
func (IdealHumidity) reason()      {}
func (LowHumidityGranite) reason() {}
func (ReadyInHours) reason()       {}
func (ColdGoodFriction) reason()   {}
func (Acceptable) reason()         {}

// Warnings.
type (
	TooWarm struct {
		RockType rock.Type
		TempC    float64
	}
	ColdSuboptimal        struct{ RockType rock.Type }
	HighHumidity          struct{ Pct float64 }
	HighWind              struct{ Kph float64 }
	VeryHighWind          struct{ Kph float64 }
	WetDangerous          struct{ RockType rock.Type }
	WetSlippery           struct{}
	CurrentlyWetDangerous struct{}
	CurrentlyWet          struct{}
	MissingData           struct{}
)

func (TooWarm) Code() string               { return "too_warm" }
func (ColdSuboptimal) Code() string        { return "cold_suboptimal" }
func (HighHumidity) Code() string          { return "high_humidity" }
func (HighWind) Code() string              { return "high_wind" }
func (VeryHighWind) Code() string          { return "very_high_wind" }
func (WetDangerous) Code() string          { return "wet_dangerous" }
func (WetSlippery) Code() string           { return "wet_slippery" }
func (CurrentlyWetDangerous) Code() string { return "currently_wet_dangerous" }
func (CurrentlyWet) Code() string          { return "currently_wet" }
func (MissingData) Code() string           { return "missing_data" }

func (TooWarm) Severity() Severity               { return Caution }
func (ColdSuboptimal) Severity() Severity        { return Caution }
func (HighHumidity) Severity() Severity          { return Caution }
func (HighWind) Severity() Severity              { return Caution }
func (VeryHighWind) Severity() Severity          { return Danger }
func (WetDangerous) Severity() Severity          { return Danger }
func (WetSlippery) Severity() Severity           { return Caution }
func (CurrentlyWetDangerous) Severity() Severity { return Danger }
func (CurrentlyWet) Severity() Severity          { return Caution }
func (MissingData) Severity() Severity           { return Caution }

func (w TooWarm) Params() map[string]any {
	return map[string]any{"rockType": w.RockType, "tempC": w.TempC}
}
func (w ColdSuboptimal) Params() map[string]any      { return map[string]any{"rockType": w.RockType} }
func (w HighHumidity) Params() map[string]any        { return map[string]any{"pct": w.Pct} }
func (w HighWind) Params() map[string]any            { return map[string]any{"kph": w.Kph} }
func (w VeryHighWind) Params() map[string]any        { return map[string]any{"kph": w.Kph} }
func (w WetDangerous) Params() map[string]any        { return map[string]any{"rockType": w.RockType} }
func (WetSlippery) Params() map[string]any           { return nil }
func (CurrentlyWetDangerous) Params() map[string]any { return nil }
func (CurrentlyWet) Params() map[string]any          { return nil }
func (MissingData) Params() map[string]any           { return nil }

func (TooWarm) warning()               {}
func (ColdSuboptimal) warning()        {}
func (HighHumidity) warning()          {}
func (HighWind) warning()              {}
func (VeryHighWind) warning()          {}
func (WetDangerous) warning()          {}
func (WetSlippery) warning()           {}
func (CurrentlyWetDangerous) warning() {}
func (CurrentlyWet) warning()          {}
func (MissingData) warning()           {}
