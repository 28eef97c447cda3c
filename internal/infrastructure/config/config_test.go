package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.travelpayouts.com/v1/prices/cheap", cfg.FareAPIEndpoint)
	assert.Equal(t, "RUB", cfg.Currency)
	assert.Equal(t, 500*time.Millisecond, cfg.PaceDelay)
	assert.Equal(t, 60*time.Second, cfg.RateLimitPause)
	assert.Equal(t, time.Hour, cfg.SearchCacheTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.WatchTTL)
	assert.Equal(t, 6*time.Hour, cfg.WatchInterval)
	assert.Equal(t, "telegram", cfg.TrafficSubID)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FARE_PACE_DELAY_MS", "100")
	t.Setenv("SEARCH_CACHE_TTL", "120")
	t.Setenv("WATCH_TTL_DAYS", "7")
	t.Setenv("TRAFFIC_SOURCE", "12345")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 100*time.Millisecond, cfg.PaceDelay)
	assert.Equal(t, 120*time.Second, cfg.SearchCacheTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.WatchTTL)
	assert.Equal(t, "12345", cfg.TrafficMarker)
}
