package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, 0, cfg.RetryMax)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.Endpoints.Forecast)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.Endpoints.Archive)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("FETCH_TIMEOUT", "2m")
	t.Setenv("MAX_CONCURRENT_FETCHES", "8")
	t.Setenv("RETRY_MAX", "3")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("OPENMETEO_ARCHIVE_URL", "http://localhost:9001/archive")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Minute, cfg.FetchTimeout)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 3, cfg.RetryMax)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "http://localhost:9001/archive", cfg.Endpoints.Archive)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "ninety seconds")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_FETCHES", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_CONCURRENT_FETCHES")
}

func TestLoad_NegativeRetries(t *testing.T) {
	t.Setenv("RETRY_MAX", "-1")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_CacheEnabledNeedsSize(t *testing.T) {
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_SIZE")
}
