package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithClock(fixedClock)
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "tide-terminal.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("data", "station.json"), cfg.Stations)
	assert.Empty(t, cfg.TableURL)
	assert.Equal(t, 2024, cfg.Year)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, 2.0, cfg.FetchRate)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "https://nominatim.openstreetmap.org/search", cfg.GeocoderURL)
	assert.False(t, cfg.StationsRemote())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TIDE_DATA_DIR", "/var/lib/tides")
	t.Setenv("TIDE_STATIONS", "https://example.com/station.json")
	t.Setenv("TIDE_TABLE_URL", "https://example.com/tables/")
	t.Setenv("TIDE_YEAR", "2025")
	t.Setenv("TIDE_TIMEZONE", "UTC")
	t.Setenv("TIDE_FETCH_RATE", "0.5")
	t.Setenv("TIDE_FETCH_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_ADDR", ":9090")

	cfg, err := LoadWithClock(fixedClock)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/var/lib/tides", "tide-terminal.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/var/lib/tides", "tide-terminal.log"), cfg.LogFile)
	assert.True(t, cfg.StationsRemote())
	assert.Equal(t, "https://example.com/tables", cfg.TableURL)
	assert.Equal(t, 2025, cfg.Year)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 0.5, cfg.FetchRate)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoad_DefaultYearFollowsTimezone(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC))

	cfg, err := LoadWithClock(clock)
	require.NoError(t, err)

	assert.Equal(t, 2025, cfg.Year, "already new year in Tokyo")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"timezone", "TIDE_TIMEZONE", "Mars/Olympus"},
		{"year text", "TIDE_YEAR", "twenty"},
		{"year range", "TIDE_YEAR", "1999"},
		{"rate", "TIDE_FETCH_RATE", "0"},
		{"timeout", "TIDE_FETCH_TIMEOUT", "soon"},
		{"log level", "LOG_LEVEL", "loud"},
		{"table url scheme", "TIDE_TABLE_URL", "ftp://example.com"},
		{"geocoder url scheme", "TIDE_GEOCODER_URL", "nominatim.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadWithClock(fixedClock)
			assert.Error(t, err)
		})
	}
}
