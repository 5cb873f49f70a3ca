package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/cragcast/internal/domain/rating"
)

const (
	envPrefix  = "CRAGCAST_"
	envConfig  = "CRAGCAST_CONFIG"
	minLat     = -90.0
	maxLat     = 90.0
	minLon     = -180.0
	maxLon     = 180.0
	maxPastDay = 7
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CRAGCAST_CONFIG is set
//  3. env (prefix CRAGCAST_)
//
// A .env file in the working directory is loaded into the environment first.
func Load(_ context.Context) (*Config, error) {
	_ = godotenv.Load()

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CRAGCAST_CACHE_TTL_MINUTES -> cache_ttl_minutes
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.ForecastDays != 7 && c.ForecastDays != 14 {
		return fmt.Errorf("%w: forecast_days must be 7 or 14, got %d", ErrInvalidConfig, c.ForecastDays)
	}
	if c.PastDays < 0 || c.PastDays > maxPastDay {
		return fmt.Errorf("%w: past_days must be within 0..%d", ErrInvalidConfig, maxPastDay)
	}
	if _, err := rating.Parse(c.MinWindowRating); err != nil {
		return fmt.Errorf("%w: min_window_rating: %w", ErrInvalidConfig, err)
	}
	if c.WorkerCount <= 0 || c.QueueSize <= 0 {
		return fmt.Errorf("%w: worker_count and queue_size must be positive", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Crags))
	for _, crag := range c.Crags {
		if crag.ID == "" {
			return fmt.Errorf("%w: crag without id", ErrInvalidConfig)
		}
		if _, dup := seen[crag.ID]; dup {
			return fmt.Errorf("%w: duplicate crag id %q", ErrInvalidConfig, crag.ID)
		}
		seen[crag.ID] = struct{}{}
		if crag.Lat < minLat || crag.Lat > maxLat || crag.Lon < minLon || crag.Lon > maxLon {
			return fmt.Errorf("%w: crag %q has invalid coordinates", ErrInvalidConfig, crag.ID)
		}
	}
	return nil
}
