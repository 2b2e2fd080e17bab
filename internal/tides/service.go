// Package tides loads a station's yearly series, preferring the local cache
// and falling back to the table source and decoder.
package tides

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/tide-terminal/internal/models"
	"github.com/ngmaloney/tide-terminal/internal/observability"
	"github.com/ngmaloney/tide-terminal/internal/source"
	"github.com/ngmaloney/tide-terminal/internal/store"
	"github.com/ngmaloney/tide-terminal/internal/tidetable"
)

// ErrNoData is returned when a table decodes to no samples
var ErrNoData = errors.New("tide table has no usable records")

// Result is one loaded series and where it came from
type Result struct {
	Series models.Series
	Cached bool
	Report tidetable.Report // zero when Cached
}

// Service loads tide series for a station and year
type Service struct {
	source  source.Source
	cache   *store.SeriesStore
	decoder *tidetable.Decoder
	metrics *observability.Metrics
	logger  *log.Logger
	clock   clockwork.Clock
}

// Option configures a Service
type Option func(*Service)

// WithCache enables the sqlite series cache
func WithCache(cache *store.SeriesStore) Option {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics records load and decode metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger for decode issues and fetch outcomes
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to time decoding
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService creates a Service reading tables from src and decoding them in loc
func NewService(src source.Source, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		source:  src,
		decoder: tidetable.NewDecoder(tidetable.WithLocation(loc)),
		logger:  log.Default(),
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the time zone series are expressed in
func (s *Service) Location() *time.Location {
	return s.decoder.Location()
}

// Load returns the series for the station and year. A cached series is
// returned as is; otherwise the table is fetched, decoded and cached.
func (s *Service) Load(ctx context.Context, stationID string, year int) (*Result, error) {
	if s.cache != nil {
		series, ok, err := s.cache.Load(ctx, stationID, year, s.Location())
		switch {
		case err != nil:
			s.logger.Warn("series cache unavailable", "station", stationID, "year", year, "err", err)
		case ok:
			s.countCache("hit")
			s.logger.Debug("series cache hit", "station", stationID, "year", year, "samples", len(series), "days", len(series.Days()))
			return &Result{Series: series, Cached: true}, nil
		default:
			s.countCache("miss")
		}
	}

	raw, err := s.source.Fetch(ctx, stationID, year)
	if err != nil {
		outcome := "error"
		if errors.Is(err, source.ErrNotFound) {
			outcome = "not_found"
		}
		s.countFetch(outcome)
		s.logger.Error("failed to fetch tide table", "station", stationID, "year", year, "err", err)
		return nil, fmt.Errorf("fetching table for %s %d: %w", stationID, year, err)
	}
	s.countFetch("success")

	result := s.Decode(raw)
	if len(result.Series) == 0 {
		return nil, fmt.Errorf("station %s year %d: %w", stationID, year, ErrNoData)
	}
	if result.Report.StationCode != "" && result.Report.StationCode != stationID {
		s.logger.Warn("table station code differs from request",
			"station", stationID, "code", result.Report.StationCode)
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, stationID, year, s.Location(), result.Series); err != nil {
			s.logger.Warn("failed to cache series", "station", stationID, "year", year, "err", err)
		}
	}
	return result, nil
}

// Decode decodes raw table text, recording metrics and logging each issue
func (s *Service) Decode(raw string) *Result {
	start := s.clock.Now()
	series, report := s.decoder.Decode(raw)
	elapsed := s.clock.Since(start)

	for _, issue := range report.Issues {
		s.logger.Warn("absent field", "line", issue.Line, "field", issue.Field, "raw", issue.Raw, "reason", issue.Reason)
	}
	s.logger.Info("decoded tide table",
		"days", report.Days, "events", report.Events, "samples", len(series), "issues", len(report.Issues))

	if s.metrics != nil {
		s.metrics.DecodeDuration.Observe(elapsed.Seconds())
		s.metrics.DaysDecoded.Add(float64(report.Days))
		s.metrics.SamplesDecoded.Add(float64(len(series)))
		for _, issue := range report.Issues {
			s.metrics.FieldIssues.WithLabelValues(issue.Field).Inc()
		}
	}
	return &Result{Series: series, Report: report}
}

// Invalidate drops the cached series so the next Load refetches it
func (s *Service) Invalidate(ctx context.Context, stationID string, year int) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, stationID, year)
}

func (s *Service) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (s *Service) countFetch(outcome string) {
	if s.metrics != nil {
		s.metrics.TableFetches.WithLabelValues(outcome).Inc()
	}
}
