package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/tide-terminal/internal/config"
	"github.com/ngmaloney/tide-terminal/internal/database"
	"github.com/ngmaloney/tide-terminal/internal/geocoding"
	"github.com/ngmaloney/tide-terminal/internal/logging"
	"github.com/ngmaloney/tide-terminal/internal/observability"
	"github.com/ngmaloney/tide-terminal/internal/source"
	"github.com/ngmaloney/tide-terminal/internal/stations"
	"github.com/ngmaloney/tide-terminal/internal/store"
	"github.com/ngmaloney/tide-terminal/internal/tides"
	"github.com/ngmaloney/tide-terminal/internal/ui"
)

const maxNearKm = 100

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	stationID := flag.String("station", "", "Tide station ID to load directly (e.g., TK)")
	date := flag.String("date", "", "First day to show, YYYY-MM-DD (default today)")
	end := flag.String("end", "", "Last day to show, YYYY-MM-DD (default same as --date)")
	near := flag.String("near", "", "Load the station nearest to a place or \"lat,lon\" (e.g., Kagoshima)")
	flag.Parse()

	clock := clockwork.NewRealClock()
	cfg, err := config.LoadWithClock(clock)
	if err != nil {
		return err
	}

	opts := ui.Options{StationID: *stationID}
	if opts.Start, err = parseDate(*date, cfg.Location); err != nil {
		return fmt.Errorf("--date: %w", err)
	}
	if opts.End, err = parseDate(*end, cfg.Location); err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	if !opts.End.IsZero() && opts.Start.IsZero() {
		return errors.New("--end requires --date")
	}
	if *stationID != "" && *near != "" {
		return errors.New("--station and --near are mutually exclusive")
	}
	if opts.Start.IsZero() {
		opts.Start = yearStart(cfg, clock)
	}

	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	metrics := observability.NewMetrics()
	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, metrics, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if *near != "" {
		if opts.StationID, err = nearestStation(db, cfg, *near, logger); err != nil {
			return err
		}
	}

	var src source.Source = source.NewDir(cfg.DataDir)
	if cfg.TableURL != "" {
		src = source.NewClient(cfg.TableURL, cfg.FetchTimeout, cfg.FetchRate)
	}
	logger.Info("starting tide terminal", "db", cfg.DBPath, "tables", tableOrigin(cfg), "tz", cfg.Location,
		"catalog", cfg.Stations, "remote_catalog", cfg.StationsRemote())

	svc := tides.NewService(src, cfg.Location,
		tides.WithCache(store.NewSeriesStore(db)),
		tides.WithMetrics(metrics),
		tides.WithLogger(logger),
	)

	model := ui.NewModel(ui.Deps{
		DB:      db,
		Catalog: cfg.Stations,
		Tides:   svc,
		Clock:   clock,
		Logger:  logger,
	}, opts)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

// nearestStation geocodes query and returns the ID of the closest station
// within maxNearKm, importing the catalog first if needed.
func nearestStation(db *sql.DB, cfg *config.Config, query string, logger *log.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	if err := stations.Provision(ctx, db, cfg.Stations, nil); err != nil {
		return "", fmt.Errorf("importing station catalog: %w", err)
	}

	loc, err := geocoding.NewGeocoder(cfg.GeocoderURL, "jp").Geocode(ctx, query)
	if err != nil {
		return "", fmt.Errorf("--near %q: %w", query, err)
	}

	nearby, err := stations.NewRepository(db).FindNearbyStations(loc.Latitude, loc.Longitude, maxNearKm)
	if err != nil {
		return "", fmt.Errorf("--near %q: %w", query, err)
	}
	closest := nearby[0]
	logger.Info("nearest station", "query", query, "place", loc.Name,
		"station", closest.ID, "name", closest.Name, "km", fmt.Sprintf("%.1f", closest.Distance))
	return closest.ID, nil
}

// yearStart returns January 1 of TIDE_YEAR when it differs from the current
// year on clock, and the zero time otherwise so the UI opens on today
func yearStart(cfg *config.Config, clock clockwork.Clock) time.Time {
	if cfg.Year == clock.Now().In(cfg.Location).Year() {
		return time.Time{}
	}
	return time.Date(cfg.Year, time.January, 1, 0, 0, 0, 0, cfg.Location)
}

// parseDate parses YYYY-MM-DD in loc; an empty string gives the zero time
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

func tableOrigin(cfg *config.Config) string {
	if cfg.TableURL != "" {
		return cfg.TableURL
	}
	return cfg.DataDir
}
