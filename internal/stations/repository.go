package stations

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// ErrNotFound is returned when a station ID is not in the catalog
var ErrNotFound = errors.New("station not found")

// NearbyStation is a catalog station with its distance from a point
type NearbyStation struct {
	models.Station
	Latitude  float64
	Longitude float64
	Distance  float64 // kilometres
}

// Repository reads the station catalog from SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository on an open database
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListStations returns all stations in catalog order
func (r *Repository) ListStations() ([]models.Station, error) {
	rows, err := r.db.Query("SELECT idx, no, id, name, lat, lon FROM stations ORDER BY idx, id")
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.Index, &s.No, &s.ID, &s.Name, &s.Lat, &s.Lon); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// GetStationByID retrieves a single station by its ID.
func (r *Repository) GetStationByID(stationID string) (*models.Station, error) {
	var s models.Station
	err := r.db.QueryRow(
		"SELECT idx, no, id, name, lat, lon FROM stations WHERE id = ?",
		stationID,
	).Scan(&s.Index, &s.No, &s.ID, &s.Name, &s.Lat, &s.Lon)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tide station %s: %w", stationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tide station by ID: %w", err)
	}
	return &s, nil
}

// FindNearbyStations finds stations within maxDistanceKm of the given
// coordinates, nearest first. Stations whose coordinate text could not be
// parsed at provisioning time are never returned.
func (r *Repository) FindNearbyStations(lat, lon, maxDistanceKm float64) ([]NearbyStation, error) {
	// Use a bounding box to initially filter stations for performance.
	// 1 degree of latitude is roughly 111 km; add a 50% margin.
	latDelta := (maxDistanceKm / 111.0) * 1.5
	lonDelta := (maxDistanceKm / (111.0 * math.Max(math.Cos(lat*math.Pi/180), 0.01))) * 1.5

	rows, err := r.db.Query(`
		SELECT idx, no, id, name, lat, lon, latitude, longitude
		FROM stations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, lat-latDelta, lat+latDelta, lon-lonDelta, lon+lonDelta)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var nearby []NearbyStation
	for rows.Next() {
		var n NearbyStation
		if err := rows.Scan(&n.Index, &n.No, &n.ID, &n.Name, &n.Lat, &n.Lon, &n.Latitude, &n.Longitude); err != nil {
			continue
		}
		n.Distance = HaversineDistance(lat, lon, n.Latitude, n.Longitude)
		if n.Distance <= maxDistanceKm {
			nearby = append(nearby, n)
		}
	}

	if len(nearby) == 0 {
		return nil, fmt.Errorf("no tide stations found near %.4f, %.4f within %.1f km: %w", lat, lon, maxDistanceKm, ErrNotFound)
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby, nil
}
