// Package daylight decides which forecast hours are climbable daylight hours.
package daylight

import (
	"math"
	"time"

	"github.com/okian/cragcast/internal/domain/model"
	"github.com/soniakeys/meeus/v3/julian"
)

// Defaults for the classifiers.
const (
	// TwilightElevationDeg is the solar elevation above which an hour counts
	// as daylight (civil twilight).
	TwilightElevationDeg = -6.0

	DefaultFirstHour = 6
	DefaultLastHour  = 20

	j2000 = 2451545.0
)

// Classifier reports whether the hour starting at t is daylight.
type Classifier interface {
	IsDay(t time.Time) bool
}

// ForSnapshot picks the most precise classifier the snapshot supports:
// provider sunrise/sunset, then solar position, then fixed local hours.
// Without a location, local means each timestamp's own offset.
func ForSnapshot(s model.WeatherSnapshot) Classifier {
	zone := s.LocalZone()
	var fallback Classifier = Hours{First: DefaultFirstHour, Last: DefaultLastHour, Zone: zone}
	if s.Location != nil {
		fallback = Solar{Lat: s.Location.Lat, Lon: s.Location.Lon}
	}
	if st := NewSunTimes(s.DailySummaries, zone, fallback); st.Len() > 0 {
		return st
	}
	return fallback
}

// Hours treats local hours First..Last inclusive as daylight. A nil Zone
// reads each timestamp in its own offset.
type Hours struct {
	First int
	Last  int
	Zone  *time.Location
}

// IsDay implements Classifier.
func (h Hours) IsDay(t time.Time) bool {
	hour := model.InZone(t, h.Zone).Hour()
	return hour >= h.First && hour <= h.Last
}

// Solar classifies by the sun's elevation at the middle of the hour.
type Solar struct {
	Lat float64
	Lon float64
}

// IsDay implements Classifier.
func (s Solar) IsDay(t time.Time) bool {
	return Elevation(s.Lat, s.Lon, t.Add(30*time.Minute)) > TwilightElevationDeg
}

// SunTimes classifies using per-day sunrise and sunset.
type SunTimes struct {
	days     map[string]model.DailyWeather
	zone     *time.Location
	fallback Classifier
}

// NewSunTimes indexes the days that carry both sunrise and sunset. Hours on
// other days use fallback. A nil zone keys days by each timestamp's own offset.
func NewSunTimes(days []model.DailyWeather, zone *time.Location, fallback Classifier) *SunTimes {
	st := &SunTimes{days: make(map[string]model.DailyWeather, len(days)), zone: zone, fallback: fallback}
	for _, d := range days {
		if d.Sunrise.IsZero() || d.Sunset.IsZero() {
			continue
		}
		st.days[model.InZone(d.Date, zone).Format(time.DateOnly)] = d
	}
	return st
}

// Len returns the number of indexed days.
func (s *SunTimes) Len() int { return len(s.days) }

// IsDay implements Classifier.
func (s *SunTimes) IsDay(t time.Time) bool {
	d, ok := s.days[model.InZone(t, s.zone).Format(time.DateOnly)]
	if !ok {
		return s.fallback.IsDay(t)
	}
	mid := t.Add(30 * time.Minute)
	return !mid.Before(d.Sunrise) && mid.Before(d.Sunset)
}

// Elevation returns the apparent solar elevation in degrees at lat/lon.
func Elevation(lat, lon float64, t time.Time) float64 {
	t = t.UTC()
	T := (julian.TimeToJD(t) - j2000) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(rad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(rad(2*M))*(0.019993-T*0.000101) +
		math.Sin(rad(3*M))*0.000289
	omega := 125.04 - 1934.136*T
	lambda := L0 + C - 0.00569 - 0.00478*math.Sin(rad(omega))
	eps := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	decl := math.Asin(math.Sin(rad(eps)) * math.Sin(rad(lambda)))

	y := math.Pow(math.Tan(rad(eps)/2), 2)
	eqTime := deg(y*math.Sin(rad(2*L0))-
		2*e*math.Sin(rad(M))+
		4*e*y*math.Sin(rad(M))*math.Cos(rad(2*L0))-
		0.5*y*y*math.Sin(rad(4*L0))-
		1.25*e*e*math.Sin(rad(2*M))) * 4

	minutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
	hourAngle := rad((minutes+4*lon+eqTime)/4 - 180)

	latRad := rad(lat)
	cosZen := math.Sin(latRad)*math.Sin(decl) + math.Cos(latRad)*math.Cos(decl)*math.Cos(hourAngle)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	return 90 - deg(math.Acos(cosZen))
}

func rad(d float64) float64      { return d * math.Pi / 180 }
func deg(r float64) float64      { return r * 180 / math.Pi }
func fixAngle(a float64) float64 { return a - 360*math.Floor(a/360) }
