// Package config defines service configuration and its loading.
package config

import (
	"runtime"
)

// Crag is a climbing area the service keeps fresh in the background.
type Crag struct {
	ID       string  `koanf:"id"`
	Name     string  `koanf:"name"`
	Lat      float64 `koanf:"lat"`
	Lon      float64 `koanf:"lon"`
	RockType string  `koanf:"rock_type"`
	Timezone string  `koanf:"timezone"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Weather provider.
	WeatherBaseURL    string `koanf:"weather_base_url"`
	WeatherTimeoutMS  int    `koanf:"weather_timeout_ms"`
	WeatherMaxRetries int    `koanf:"weather_max_retries"`
	ForecastDays      int    `koanf:"forecast_days"`
	PastDays          int    `koanf:"past_days"`

	// Conditions cache.
	CacheTTLMinutes int `koanf:"cache_ttl_minutes"`
	CacheSize       int `koanf:"cache_size"`

	// Engine.
	MaxWindows        int                `koanf:"max_windows"`
	MinWindowRating   string             `koanf:"min_window_rating"`
	IncludeNightHours bool               `koanf:"include_night_hours"`
	ScoreWeights      map[string]float64 `koanf:"score_weights"`

	// Refresh pipeline.
	QueueSize              int `koanf:"queue_size"`
	WorkerCount            int `koanf:"worker_count"`
	RefreshIntervalMinutes int `koanf:"refresh_interval_minutes"`

	// API limits.
	MaxCragsLimit int `koanf:"max_crags_limit"`
	BatchLimit    int `koanf:"batch_limit"`

	Crags []Crag `koanf:"crags"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		WeatherBaseURL:    "https://api.open-meteo.com/v1/forecast",
		WeatherTimeoutMS:  5000,
		WeatherMaxRetries: 2,
		ForecastDays:      7,
		PastDays:          2,
		CacheTTLMinutes:   60,
		CacheSize:         10_000,
		MaxWindows:        5,
		MinWindowRating:   "good",
		ScoreWeights: map[string]float64{
			"temperature": 0.45,
			"humidity":    0.35,
			"wind":        0.20,
		},
		QueueSize:              1_000,
		WorkerCount:            runtime.NumCPU(),
		RefreshIntervalMinutes: 30,
		MaxCragsLimit:          100,
		BatchLimit:             20,
	}
}
