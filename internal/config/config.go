// Package config loads service settings from environment variables, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/skysweep/meteoq/internal/domain"
)

// Config holds all settings for the CLI and the HTTP API.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Provider fetching.
	Endpoints      domain.Endpoints
	FetchTimeout   time.Duration
	MaxConcurrency int

	// Resilience wrapping of the fetch client. RetryMax = 0 disables the
	// wrapper entirely.
	RetryMax             int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// Dataset cache. CacheTTL = 0 disables caching.
	CacheTTL  time.Duration
	CacheSize int

	// Geocoding.
	NominatimURL       string
	NominatimTimeout   time.Duration
	NominatimCacheSize int
}

// Load reads configuration, applying defaults where unset. A .env file in
// the working directory is honored when present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
		Endpoints: domain.Endpoints{
			Forecast:   envOrDefault("OPENMETEO_FORECAST_URL", domain.DefaultEndpoints().Forecast),
			Archive:    envOrDefault("OPENMETEO_ARCHIVE_URL", domain.DefaultEndpoints().Archive),
			AirQuality: envOrDefault("OPENMETEO_AIR_QUALITY_URL", domain.DefaultEndpoints().AirQuality),
		},
		NominatimURL: envOrDefault("NOMINATIM_URL", ""),
	}

	var err error
	if cfg.ShutdownTimeout, err = durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = durationOrDefault("FETCH_TIMEOUT", 90*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrency, err = intOrDefault("MAX_CONCURRENT_FETCHES", 4); err != nil {
		return nil, err
	}
	if cfg.RetryMax, err = intOrDefault("RETRY_MAX", 0); err != nil {
		return nil, err
	}
	if cfg.RetryInitialInterval, err = durationOrDefault("RETRY_INITIAL_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RetryMaxInterval, err = durationOrDefault("RETRY_MAX_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationOrDefault("CACHE_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = intOrDefault("CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.NominatimTimeout, err = durationOrDefault("NOMINATIM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.NominatimCacheSize, err = intOrDefault("NOMINATIM_CACHE_SIZE", 1000); err != nil {
		return nil, err
	}

	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.MaxConcurrency < 1 {
		return nil, errors.New("MAX_CONCURRENT_FETCHES must be at least 1")
	}
	if cfg.RetryMax < 0 {
		return nil, errors.New("RETRY_MAX must not be negative")
	}
	if cfg.CacheTTL > 0 && cfg.CacheSize < 1 {
		return nil, errors.New("CACHE_SIZE must be at least 1 when caching is enabled")
	}
	if cfg.Endpoints.Forecast == "" || cfg.Endpoints.Archive == "" || cfg.Endpoints.AirQuality == "" {
		return nil, errors.New("provider endpoint URLs must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
