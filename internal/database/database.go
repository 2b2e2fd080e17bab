package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBPath returns the path to the single shared database under dataDir
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "tide-terminal.db")
}

// Open opens the database at dbPath, creating its directory and schema.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		// Set pragmas for performance
		_, _ = db.Exec("PRAGMA journal_mode=WAL")
		_, _ = db.Exec("PRAGMA synchronous=NORMAL")
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the catalog and sample cache tables if missing.
// A sample cache from before samples were keyed by zone is dropped.
func EnsureSchema(db *sql.DB) error {
	if err := dropUnzonedCache(db); err != nil {
		return err
	}
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stations (
			id TEXT PRIMARY KEY,
			idx INTEGER NOT NULL,
			no TEXT,
			name TEXT NOT NULL,
			lat TEXT NOT NULL,
			lon TEXT NOT NULL,
			latitude REAL,
			longitude REAL
		);
		CREATE INDEX IF NOT EXISTS idx_stations_coords ON stations(latitude, longitude);

		CREATE TABLE IF NOT EXISTS tide_samples (
			station_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			zone TEXT NOT NULL,
			seq INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			level INTEGER NOT NULL,
			missing INTEGER NOT NULL DEFAULT 0,
			high INTEGER NOT NULL DEFAULT 0,
			low INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (station_id, year, zone, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// dropUnzonedCache removes a tide_samples table without the zone column
func dropUnzonedCache(db *sql.DB) error {
	rows, err := db.Query("SELECT name FROM pragma_table_info('tide_samples')")
	if err != nil {
		return fmt.Errorf("reading cache schema: %w", err)
	}
	defer rows.Close()

	exists, zoned := false, false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("reading cache schema: %w", err)
		}
		exists = true
		if name == "zone" {
			zoned = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading cache schema: %w", err)
	}
	if !exists || zoned {
		return nil
	}
	if _, err := db.Exec("DROP TABLE tide_samples"); err != nil {
		return fmt.Errorf("dropping old sample cache: %w", err)
	}
	return nil
}
