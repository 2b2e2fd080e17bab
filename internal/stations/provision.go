package stations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

var provisionMu sync.Mutex

// NeedsProvisioning reports whether the stations table is empty
func NeedsProvisioning(db *sql.DB) (bool, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM stations").Scan(&count); err != nil {
		return false, fmt.Errorf("checking stations table: %w", err)
	}
	return count == 0, nil
}

// Provision loads the station catalog JSON from source (a file path or an
// http(s) URL) into the stations table, if the table is empty. Progress
// messages are sent on progressChan when it is non-nil.
func Provision(ctx context.Context, db *sql.DB, source string, progressChan chan<- string) error {
	provisionMu.Lock()
	defer provisionMu.Unlock()

	needs, err := NeedsProvisioning(db)
	if err != nil {
		return err
	}
	if !needs {
		return nil
	}

	sendProgress := func(msg string) {
		if progressChan != nil {
			progressChan <- msg
		}
	}

	sendProgress(fmt.Sprintf("Loading station catalog from %s...", source))
	stations, err := loadCatalog(ctx, source)
	if err != nil {
		return fmt.Errorf("loading station catalog: %w", err)
	}

	sendProgress("Building stations table...")
	count, err := insertStations(db, stations)
	if err != nil {
		return fmt.Errorf("building stations table: %w", err)
	}

	sendProgress(fmt.Sprintf("Successfully inserted %d tide stations", count))
	return nil
}

// loadCatalog reads the station list from a file or URL
func loadCatalog(ctx context.Context, source string) ([]models.Station, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err := fetchCatalog(ctx, source)
		if err != nil {
			return nil, err
		}
		r = body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		r = f
	}
	defer r.Close()

	var stations []models.Station
	if err := json.NewDecoder(r).Decode(&stations); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return stations, nil
}

func fetchCatalog(ctx context.Context, url string) (io.ReadCloser, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching stations: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("station catalog returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// insertStations writes stations in one transaction. Decimal coordinates
// are stored when the catalog text parses, NULL otherwise.
func insertStations(db *sql.DB, stations []models.Station) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // Rollback on error

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO stations (id, idx, no, name, lat, lon, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, s := range stations {
		if s.ID == "" {
			continue
		}
		var latitude, longitude sql.NullFloat64
		if lat, lon, err := s.Coordinates(); err == nil {
			latitude = sql.NullFloat64{Float64: lat, Valid: true}
			longitude = sql.NullFloat64{Float64: lon, Valid: true}
		}
		if _, err := stmt.Exec(s.ID, s.Index, s.No, s.Name, s.Lat, s.Lon, latitude, longitude); err != nil {
			return 0, fmt.Errorf("inserting station %s: %w", s.ID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return count, nil
}
