// Command tide-dump prints the view of a tide table as plain text: the
// samples inside the date range, the high and low tide marks and the
// daylight intervals.
//
// Usage:
//
//	go run ./cmd/tide-dump -file data/2024/TK.txt -date 2024-03-15 -lat "35°39'" -lon "139°46'"
//	go run ./cmd/tide-dump -station TK -date 2024-03-15 -end 2024-03-17
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ngmaloney/tide-terminal/internal/config"
	"github.com/ngmaloney/tide-terminal/internal/database"
	"github.com/ngmaloney/tide-terminal/internal/logging"
	"github.com/ngmaloney/tide-terminal/internal/models"
	"github.com/ngmaloney/tide-terminal/internal/source"
	"github.com/ngmaloney/tide-terminal/internal/stations"
	"github.com/ngmaloney/tide-terminal/internal/store"
	"github.com/ngmaloney/tide-terminal/internal/tides"
	"github.com/ngmaloney/tide-terminal/internal/view"
)

func main() {
	logger := logging.New(os.Stderr, log.InfoLevel)
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("tide-dump failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	file      string
	stationID string
	date      string
	end       string
	lat, lon  string
	noHigh    bool
	noLow     bool
	noSun     bool
	samples   bool
}

func run(args []string, out io.Writer, logger *log.Logger) error {
	var o options
	fs := flag.NewFlagSet("tide-dump", flag.ContinueOnError)
	fs.StringVar(&o.file, "file", "", "tide table file to decode")
	fs.StringVar(&o.stationID, "station", "", "station ID to load through the cache and table source")
	fs.StringVar(&o.date, "date", "", "first day, YYYY-MM-DD (required)")
	fs.StringVar(&o.end, "end", "", "last day, YYYY-MM-DD (default same as -date)")
	fs.StringVar(&o.lat, "lat", "", "latitude for daylight with -file, e.g. 35°39'")
	fs.StringVar(&o.lon, "lon", "", "longitude for daylight with -file, e.g. 139°46'")
	fs.BoolVar(&o.noHigh, "no-high", false, "omit high tide marks")
	fs.BoolVar(&o.noLow, "no-low", false, "omit low tide marks")
	fs.BoolVar(&o.noSun, "no-daylight", false, "omit daylight intervals")
	fs.BoolVar(&o.samples, "samples", false, "print every visible sample")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if (o.file == "") == (o.stationID == "") {
		fs.Usage()
		return errors.New("exactly one of -file or -station is required")
	}
	if o.date == "" {
		fs.Usage()
		return errors.New("missing required flag: -date")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	start, err := time.ParseInLocation(time.DateOnly, o.date, cfg.Location)
	if err != nil {
		return fmt.Errorf("-date: %w", err)
	}
	var end time.Time
	if o.end != "" {
		if end, err = time.ParseInLocation(time.DateOnly, o.end, cfg.Location); err != nil {
			return fmt.Errorf("-end: %w", err)
		}
	}

	var series models.Series
	var station *models.Station
	if o.file != "" {
		series, station, err = loadFile(o, cfg, logger)
	} else {
		series, station, err = loadStation(o.stationID, start.Year(), cfg, logger)
	}
	if err != nil {
		return err
	}

	req := view.Request{
		Range:    view.Range{Start: start, End: end},
		Toggles:  view.Toggles{High: !o.noHigh, Low: !o.noLow, Daylight: !o.noSun},
		Station:  station,
		Location: cfg.Location,
	}
	v, err := view.Build(series, req)
	if errors.Is(err, models.ErrInvalidCoordinate) {
		logger.Warn("daylight omitted", "err", err)
		req.Toggles.Daylight = false
		v, err = view.Build(series, req)
	}
	if err != nil {
		return err
	}

	return dump(out, v, o.samples)
}

// loadFile decodes a table file; the station is built from -lat and -lon
func loadFile(o options, cfg *config.Config, logger *log.Logger) (models.Series, *models.Station, error) {
	raw, err := os.ReadFile(o.file)
	if err != nil {
		return nil, nil, fmt.Errorf("reading table: %w", err)
	}

	svc := tides.NewService(nil, cfg.Location, tides.WithLogger(logger))
	result := svc.Decode(string(raw))

	var station *models.Station
	if o.lat != "" || o.lon != "" {
		station = &models.Station{ID: result.Report.StationCode, Lat: o.lat, Lon: o.lon}
	}
	return result.Series, station, nil
}

// loadStation loads the series through the cache and configured table source
func loadStation(stationID string, year int, cfg *config.Config, logger *log.Logger) (models.Series, *models.Station, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	if err := stations.Provision(ctx, db, cfg.Stations, nil); err != nil {
		return nil, nil, err
	}
	station, err := stations.NewRepository(db).GetStationByID(stationID)
	if err != nil {
		return nil, nil, fmt.Errorf("station %q: %w", stationID, err)
	}

	var src source.Source = source.NewDir(cfg.DataDir)
	if cfg.TableURL != "" {
		src = source.NewClient(cfg.TableURL, cfg.FetchTimeout, cfg.FetchRate)
	}
	svc := tides.NewService(src, cfg.Location,
		tides.WithCache(store.NewSeriesStore(db)),
		tides.WithLogger(logger),
	)

	result, err := svc.Load(ctx, stationID, year)
	if err != nil {
		return nil, nil, err
	}
	return result.Series, station, nil
}

// dump writes the view as text
func dump(w io.Writer, v *view.View, samples bool) error {
	fmt.Fprintf(w, "window %s .. %s (%d days, %d samples)\n",
		v.Window.Start.Format(time.DateTime), v.Window.End.Format(time.DateTime),
		v.Window.Days(), len(v.Visible))

	if samples {
		fmt.Fprintln(w, "\nsamples")
		for _, s := range v.Visible {
			level := fmt.Sprintf("%4d", s.Level)
			if s.Missing {
				level = "   -"
			}
			fmt.Fprintf(w, "  %s %s %s\n", s.Time.Format("2006-01-02 15:04"), level, s.Kind())
		}
	}

	marks := v.VisibleMarkers()
	fmt.Fprintf(w, "\nmarks (%d)\n", len(marks))
	for _, m := range marks {
		level := fmt.Sprintf("%4d", m.Level)
		if m.Missing {
			level = "   -"
		}
		fmt.Fprintf(w, "  %s %s %-4s %s %s\n", m.Time.Format(time.DateOnly), m.Label, m.Kind, level, m.Color())
	}

	days := v.VisibleDaylight()
	fmt.Fprintf(w, "\ndaylight (%d)\n", len(days))
	for _, d := range days {
		if d.Polar() {
			fmt.Fprintf(w, "  %s no sunrise or sunset\n", d.Sunrise.Format(time.DateOnly))
			continue
		}
		_, err := fmt.Fprintf(w, "  %s %s-%s %s\n", d.Sunrise.Format(time.DateOnly),
			d.Sunrise.Format("15:04"), d.Sunset.Format("15:04"), d.Duration().Round(time.Minute))
		if err != nil {
			return err
		}
	}
	return nil
}
