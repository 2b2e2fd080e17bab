// Package store caches decoded tide series in SQLite, keyed by station, year
// and the time zone the table was decoded in.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// SeriesStore persists decoded series in the tide_samples table
type SeriesStore struct {
	db *sql.DB
}

// NewSeriesStore creates a store on an open database with the schema applied
func NewSeriesStore(db *sql.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

// zoneKey names loc for the cache key
func zoneKey(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return loc.String()
}

// Save replaces the cached series for the station and year decoded in loc.
// Wall-clock times depend on the decoding zone, so each zone has its own entry.
func (s *SeriesStore) Save(ctx context.Context, stationID string, year int, loc *time.Location, series models.Series) error {
	zone := zoneKey(loc)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // Rollback on error

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tide_samples WHERE station_id = ? AND year = ? AND zone = ?", stationID, year, zone); err != nil {
		return fmt.Errorf("clearing cached series: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tide_samples
		(station_id, year, zone, seq, ts, level, missing, high, low)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sample := range series {
		if _, err := stmt.ExecContext(ctx, stationID, year, zone, i,
			sample.Time.Unix(), sample.Level, sample.Missing, sample.IsHigh, sample.IsLow); err != nil {
			return fmt.Errorf("saving sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load returns the series cached for loc in its saved order with times in
// loc. The bool result is false when nothing is cached for that zone.
func (s *SeriesStore) Load(ctx context.Context, stationID string, year int, loc *time.Location) (models.Series, bool, error) {
	zone := zoneKey(loc)
	if loc == nil {
		loc = time.UTC
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, level, missing, high, low
		FROM tide_samples
		WHERE station_id = ? AND year = ? AND zone = ?
		ORDER BY seq
	`, stationID, year, zone)
	if err != nil {
		return nil, false, fmt.Errorf("querying cached series: %w", err)
	}
	defer rows.Close()

	var series models.Series
	for rows.Next() {
		var ts int64
		var sample models.Sample
		if err := rows.Scan(&ts, &sample.Level, &sample.Missing, &sample.IsHigh, &sample.IsLow); err != nil {
			return nil, false, fmt.Errorf("scanning sample: %w", err)
		}
		sample.Time = time.Unix(ts, 0).In(loc)
		series = append(series, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return series, len(series) > 0, nil
}

// Delete drops the cached series for the station and year in every zone
func (s *SeriesStore) Delete(ctx context.Context, stationID string, year int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tide_samples WHERE station_id = ? AND year = ?", stationID, year)
	if err != nil {
		return fmt.Errorf("deleting cached series: %w", err)
	}
	return nil
}
