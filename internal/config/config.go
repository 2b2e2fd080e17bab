package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo on hosts without zoneinfo

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// Config holds application settings, populated from environment variables.
type Config struct {
	DataDir  string
	DBPath   string
	Stations string // catalog file path or http(s) URL

	// TableURL is the base URL of the yearly tide tables. When empty, tables
	// are read from DataDir/<year>/<station>.txt.
	TableURL     string
	Year         int
	Location     *time.Location
	FetchRate    float64
	FetchTimeout time.Duration

	// GeocoderURL is the Nominatim search endpoint used by --near
	GeocoderURL string

	LogLevel    log.Level
	LogFile     string
	MetricsAddr string
}

// Load reads configuration from the environment, applying defaults where unset.
func Load() (*Config, error) {
	return LoadWithClock(clockwork.NewRealClock())
}

// LoadWithClock is Load with an injectable clock for the default year.
func LoadWithClock(clock clockwork.Clock) (*Config, error) {
	dataDir := envOrDefault("TIDE_DATA_DIR", "data")

	tz := envOrDefault("TIDE_TIMEZONE", "Asia/Tokyo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIDE_TIMEZONE %q: %w", tz, err)
	}

	year := clock.Now().In(loc).Year()
	if s := os.Getenv("TIDE_YEAR"); s != "" {
		year, err = strconv.Atoi(s)
		if err != nil || year < 2000 || year > 2099 {
			return nil, fmt.Errorf("invalid TIDE_YEAR %q: must be 2000-2099", s)
		}
	}

	rate, err := strconv.ParseFloat(envOrDefault("TIDE_FETCH_RATE", "2"), 64)
	if err != nil || rate <= 0 {
		return nil, errors.New("invalid TIDE_FETCH_RATE")
	}

	timeout, err := time.ParseDuration(envOrDefault("TIDE_FETCH_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, errors.New("invalid TIDE_FETCH_TIMEOUT")
	}

	level, err := log.ParseLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		DataDir:      dataDir,
		DBPath:       envOrDefault("TIDE_DB_PATH", filepath.Join(dataDir, "tide-terminal.db")),
		Stations:     envOrDefault("TIDE_STATIONS", filepath.Join(dataDir, "station.json")),
		TableURL:     strings.TrimSuffix(os.Getenv("TIDE_TABLE_URL"), "/"),
		Year:         year,
		Location:     loc,
		FetchRate:    rate,
		FetchTimeout: timeout,
		GeocoderURL:  envOrDefault("TIDE_GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		LogLevel:     level,
		LogFile:      envOrDefault("LOG_FILE", filepath.Join(dataDir, "tide-terminal.log")),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
	}

	if !isHTTP(cfg.GeocoderURL) {
		return nil, fmt.Errorf("invalid TIDE_GEOCODER_URL %q: must be http or https", cfg.GeocoderURL)
	}
	if cfg.TableURL != "" && !isHTTP(cfg.TableURL) {
		return nil, fmt.Errorf("invalid TIDE_TABLE_URL %q: must be http or https", cfg.TableURL)
	}
	return cfg, nil
}

// StationsRemote reports whether the catalog is fetched over HTTP
func (c *Config) StationsRemote() bool {
	return isHTTP(c.Stations)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
