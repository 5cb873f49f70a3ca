package api

import (
	"math"
	"time"

	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/drying"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
)

const dateLayout = "2006-01-02"

// num renders a float for JSON; missing values (NaN, Inf) become null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// val reads an optional input value; absent values are missing data.
func val(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeVal(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}

// readingDTO is one hour of weather, both on input and output.
type readingDTO struct {
	Time        time.Time `json:"time" validate:"required"`
	TempC       *float64  `json:"temp_c"`
	HumidityPct *float64  `json:"humidity_pct"`
	WindKph     *float64  `json:"wind_kph"`
	PrecipMm    *float64  `json:"precip_mm"`
}

func newReadingDTO(r model.HourlyReading) readingDTO {
	return readingDTO{
		Time:        r.Time,
		TempC:       num(r.TempC),
		HumidityPct: num(r.HumidityPct),
		WindKph:     num(r.WindKph),
		PrecipMm:    num(r.PrecipMm),
	}
}

func (r readingDTO) model() model.HourlyReading {
	return model.HourlyReading{
		Time:        r.Time,
		TempC:       val(r.TempC),
		HumidityPct: val(r.HumidityPct),
		WindKph:     val(r.WindKph),
		PrecipMm:    val(r.PrecipMm),
	}
}

func readings(in []readingDTO) []model.HourlyReading {
	out := make([]model.HourlyReading, len(in))
	for i, r := range in {
		out[i] = r.model()
	}
	return out
}

type reasonDTO struct {
	Code   string         `json:"code"`
	Params map[string]any `json:"params,omitempty"`
}

type warningDTO struct {
	Code     string          `json:"code"`
	Severity rating.Severity `json:"severity"`
	Params   map[string]any  `json:"params,omitempty"`
}

type wetnessDTO struct {
	Fraction     float64  `json:"fraction"`
	HoursToDry   *float64 `json:"hours_to_dry"`
	CurrentlyWet bool     `json:"currently_wet"`
}

func newWetnessDTO(w drying.Wetness) wetnessDTO {
	out := wetnessDTO{Fraction: w.Fraction, CurrentlyWet: w.CurrentlyWet}
	if w.HoursToDry != nil {
		out.HoursToDry = num(*w.HoursToDry)
	}
	return out
}

type hourDTO struct {
	readingDTO
	Index    int             `json:"index"`
	Valid    bool            `json:"valid"`
	Daylight bool            `json:"daylight"`
	Score    float64         `json:"score"`
	Rating   rating.Category `json:"rating"`
	Reasons  []reasonDTO     `json:"reasons"`
	Warnings []warningDTO    `json:"warnings"`
	Wetness  wetnessDTO      `json:"wetness"`
}

func newHourDTO(h conditions.AnnotatedHour) hourDTO {
	out := hourDTO{
		readingDTO: newReadingDTO(h.Reading),
		Index:      h.Index,
		Valid:      h.Valid,
		Daylight:   h.Daylight,
		Score:      h.Score,
		Rating:     h.Rating,
		Reasons:    make([]reasonDTO, 0, len(h.Reasons)),
		Warnings:   make([]warningDTO, 0, len(h.Warnings)),
		Wetness:    newWetnessDTO(h.Wetness),
	}
	for _, r := range h.Reasons {
		out.Reasons = append(out.Reasons, reasonDTO{Code: r.Code(), Params: r.Params()})
	}
	for _, w := range h.Warnings {
		out.Warnings = append(out.Warnings, warningDTO{Code: w.Code(), Severity: w.Severity(), Params: w.Params()})
	}
	return out
}

type dayDTO struct {
	Date           string          `json:"date"`
	HighC          *float64        `json:"high_c"`
	LowC           *float64        `json:"low_c"`
	PrecipMm       *float64        `json:"precip_mm"`
	Sunrise        *time.Time      `json:"sunrise,omitempty"`
	Sunset         *time.Time      `json:"sunset,omitempty"`
	AverageScore   float64         `json:"average_score"`
	PeakScore      float64         `json:"peak_score"`
	Rating         rating.Category `json:"rating"`
	ClimbableHours int             `json:"climbable_hours"`
}

func newDayDTO(d conditions.DayOutlook) dayDTO {
	return dayDTO{
		Date:           d.Date.Format(dateLayout),
		HighC:          num(d.HighC),
		LowC:           num(d.LowC),
		PrecipMm:       num(d.PrecipMm),
		Sunrise:        timePtr(d.Sunrise),
		Sunset:         timePtr(d.Sunset),
		AverageScore:   d.AverageScore,
		PeakScore:      d.PeakScore,
		Rating:         d.Rating,
		ClimbableHours: d.ClimbableHours,
	}
}

type windowDTO struct {
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	DurationHours int             `json:"duration_hours"`
	AverageScore  float64         `json:"average_score"`
	Rating        rating.Category `json:"rating"`
}

func newWindowDTOs(ws []conditions.Window) []windowDTO {
	out := make([]windowDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, windowDTO{
			Start:         w.Start,
			End:           w.End,
			DurationHours: w.DurationHours,
			AverageScore:  w.AverageScore,
			Rating:        w.Rating,
		})
	}
	return out
}

// conditionsResponse is the rendered conditions report.
type conditionsResponse struct {
	RockType       rock.Type   `json:"rock_type"`
	Current        hourDTO     `json:"current"`
	Hourly         []hourDTO   `json:"hourly,omitempty"`
	Daily          []dayDTO    `json:"daily"`
	OptimalWindows []windowDTO `json:"optimal_windows,omitempty"`
}

type renderOptions struct {
	hourly  bool
	windows bool
}

func newConditionsResponse(res conditions.Result, ro renderOptions) conditionsResponse {
	out := conditionsResponse{
		RockType: res.RockType,
		Current:  newHourDTO(res.Current),
		Daily:    make([]dayDTO, 0, len(res.Daily)),
	}
	for _, d := range res.Daily {
		out.Daily = append(out.Daily, newDayDTO(d))
	}
	if ro.hourly {
		out.Hourly = make([]hourDTO, 0, len(res.Hourly))
		for _, h := range res.Hourly {
			out.Hourly = append(out.Hourly, newHourDTO(h))
		}
	}
	if ro.windows {
		out.OptimalWindows = newWindowDTOs(res.OptimalWindows)
	}
	return out
}

type windowsResponse struct {
	RockType rock.Type   `json:"rock_type,omitempty"`
	Windows  []windowDTO `json:"windows"`
}

type locationDTO struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64 `json:"lon" validate:"gte=-180,lte=180"`
	Timezone string  `json:"timezone" validate:"omitempty,timezone"`
}

type dailyInputDTO struct {
	Date     time.Time  `json:"date" validate:"required"`
	TempMaxC *float64   `json:"temp_max_c"`
	TempMinC *float64   `json:"temp_min_c"`
	PrecipMm *float64   `json:"precip_mm"`
	Sunrise  *time.Time `json:"sunrise"`
	Sunset   *time.Time `json:"sunset"`
}

// snapshotDTO is a caller supplied forecast.
type snapshotDTO struct {
	Location *locationDTO    `json:"location"`
	Current  *readingDTO     `json:"current"`
	Hourly   []readingDTO    `json:"hourly" validate:"max=384,dive"`
	Daily    []dailyInputDTO `json:"daily" validate:"max=16,dive"`
}

func (s snapshotDTO) model() model.WeatherSnapshot {
	out := model.WeatherSnapshot{Hourly: readings(s.Hourly)}
	if s.Location != nil {
		out.Location = &model.Location{Lat: s.Location.Lat, Lon: s.Location.Lon, Timezone: s.Location.Timezone}
	}
	switch {
	case s.Current != nil:
		out.Current = s.Current.model()
	case len(out.Hourly) > 0:
		out.Current = out.Hourly[0]
	default:
		out.Current = readingDTO{}.model()
	}
	for _, d := range s.Daily {
		out.DailySummaries = append(out.DailySummaries, model.DailyWeather{
			Date:     d.Date,
			TempMaxC: val(d.TempMaxC),
			TempMinC: val(d.TempMinC),
			PrecipMm: val(d.PrecipMm),
			Sunrise:  timeVal(d.Sunrise),
			Sunset:   timeVal(d.Sunset),
		})
	}
	return out
}
