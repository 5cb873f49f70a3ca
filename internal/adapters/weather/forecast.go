package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/pkg/logger"
)

const (
	hourlyVars  = "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation"
	dailyVars   = "temperature_2m_max,temperature_2m_min,precipitation_sum,sunrise,sunset"
	maxBodySize = 4 << 20
)

// Forecast fetches days of hourly forecast for loc together with the
// precipitation of the configured past days.
func (c *Client) Forecast(ctx context.Context, loc model.Location, days int) (model.Forecast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.forecastURL(loc, days), nil)
	if err != nil {
		return model.Forecast{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return model.Forecast{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.Forecast{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return model.Forecast{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	f, err := body.toForecast(c.pastDays)
	if err != nil {
		return model.Forecast{}, err
	}
	c.log.Debug(ctx, "forecast fetched",
		logger.Float64("lat", loc.Lat), logger.Float64("lon", loc.Lon),
		logger.Int("hours", len(f.Snapshot.Hourly)), logger.Float64("recent_precip_mm", f.RecentPrecipMm))
	return f, nil
}

func (c *Client) forecastURL(loc model.Location, days int) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', 4, 64))
	q.Set("hourly", hourlyVars)
	q.Set("daily", dailyVars)
	q.Set("current", hourlyVars)
	q.Set("forecast_days", strconv.Itoa(days))
	q.Set("past_days", strconv.Itoa(c.pastDays))
	q.Set("wind_speed_unit", "kmh")
	q.Set("timeformat", "unixtime")
	tz := loc.Timezone
	if tz == "" {
		tz = "auto"
	}
	q.Set("timezone", tz)
	return c.baseURL + "?" + q.Encode()
}

// Open-Meteo reports missing values as null.
type series []*float64

func (s series) at(i int) float64 {
	if i >= len(s) || s[i] == nil {
		return math.NaN()
	}
	return *s[i]
}

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Current   *struct {
		Time        int64    `json:"time"`
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		Wind        *float64 `json:"wind_speed_10m"`
		Precip      *float64 `json:"precipitation"`
	} `json:"current"`
	Hourly struct {
		Time        []int64 `json:"time"`
		Temperature series  `json:"temperature_2m"`
		Humidity    series  `json:"relative_humidity_2m"`
		Wind        series  `json:"wind_speed_10m"`
		Precip      series  `json:"precipitation"`
	} `json:"hourly"`
	Daily struct {
		Time    []int64 `json:"time"`
		TempMax series  `json:"temperature_2m_max"`
		TempMin series  `json:"temperature_2m_min"`
		Precip  series  `json:"precipitation_sum"`
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// toForecast splits the past days off the hourly series: their rain becomes
// the precipitation seed of the remaining forecast hours.
func (r forecastResponse) toForecast(pastDays int) (model.Forecast, error) {
	if len(r.Hourly.Time) == 0 {
		return model.Forecast{}, fmt.Errorf("%w: empty hourly series", ErrDecode)
	}

	loc := &model.Location{Lat: r.Latitude, Lon: r.Longitude, Timezone: r.Timezone}
	zone := loc.Zone()

	var cutoff time.Time
	if pastDays > 0 && pastDays < len(r.Daily.Time) {
		cutoff = unix(r.Daily.Time[pastDays])
	}

	hourly := make([]model.HourlyReading, 0, len(r.Hourly.Time))
	var recent float64
	var lastRain time.Time
	for i, ts := range r.Hourly.Time {
		h := model.HourlyReading{
			Time:        unix(ts).In(zone),
			TempC:       r.Hourly.Temperature.at(i),
			HumidityPct: r.Hourly.Humidity.at(i),
			WindKph:     r.Hourly.Wind.at(i),
			PrecipMm:    r.Hourly.Precip.at(i),
		}
		if !cutoff.IsZero() && h.Time.Before(cutoff) {
			if h.Raining() {
				recent += h.PrecipMm
				lastRain = h.End()
			}
			continue
		}
		hourly = append(hourly, h)
	}
	if len(hourly) == 0 {
		return model.Forecast{}, fmt.Errorf("%w: no forecast hours after past days", ErrDecode)
	}

	daily := make([]model.DailyWeather, 0, len(r.Daily.Time))
	for i, ts := range r.Daily.Time {
		if i < pastDays {
			continue
		}
		d := model.DailyWeather{
			Date:     unix(ts).In(zone),
			TempMaxC: r.Daily.TempMax.at(i),
			TempMinC: r.Daily.TempMin.at(i),
			PrecipMm: r.Daily.Precip.at(i),
		}
		if i < len(r.Daily.Sunrise) {
			d.Sunrise = unix(r.Daily.Sunrise[i]).In(zone)
		}
		if i < len(r.Daily.Sunset) {
			d.Sunset = unix(r.Daily.Sunset[i]).In(zone)
		}
		daily = append(daily, d)
	}

	current := hourly[0]
	if r.Current != nil {
		current = model.HourlyReading{
			Time:        unix(r.Current.Time).In(zone),
			TempC:       value(r.Current.Temperature),
			HumidityPct: value(r.Current.Humidity),
			WindKph:     value(r.Current.Wind),
			PrecipMm:    value(r.Current.Precip),
		}
	}

	f := model.Forecast{
		Snapshot: model.WeatherSnapshot{
			Location:       loc,
			Current:        current,
			Hourly:         hourly,
			DailySummaries: daily,
		},
		RecentPrecipMm: recent,
	}
	if !lastRain.IsZero() {
		if age := hourly[0].Time.Sub(lastRain); age > 0 {
			f.SeedAge = age
		}
	}
	return f, nil
}
