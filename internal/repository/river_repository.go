// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/log"
)

// StoredReading is one archived measurement row
type StoredReading struct {
	ID        int64
	WaterBody string
	Kind      entities.ReadingKind
	Date      string
	Timestamp time.Time
	Value     float64
	Situation string
}

// RiverRepository defines the interface for the readings archive
type RiverRepository interface {
	SaveReadings(data entities.RiversData) error
	GetReadings(waterBody string, kind entities.ReadingKind, since time.Time) ([]StoredReading, error)
	GetWaterBodies() ([]string, error)
	GetLastUpdateTime() (time.Time, error)
	Close() error
}

// SQLiteRiverRepository implements RiverRepository using SQLite
type SQLiteRiverRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteRiverRepository creates and initializes a new SQLite repository
func NewSQLiteRiverRepository(dbPath string) (*SQLiteRiverRepository, error) {
	if dbPath == "" {
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "readings.db")
	}

	log.Infof("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		water_body TEXT NOT NULL,
		kind TEXT NOT NULL,
		date TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		value REAL NOT NULL,
		situation TEXT,
		UNIQUE(water_body, kind, timestamp)
	);
	CREATE INDEX IF NOT EXISTS idx_readings_body ON readings(water_body);
	CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings(timestamp);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteRiverRepository{db: db, DBPath: dbPath}, nil
}

// Close closes the database connection
func (r *SQLiteRiverRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveReadings archives every history point of every water body in the
// batch. Re-archiving the same cycle is a no-op thanks to the upsert.
func (r *SQLiteRiverRepository) SaveReadings(data entities.RiversData) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO readings(water_body, kind, date, timestamp, value, situation)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(water_body, kind, timestamp) DO UPDATE SET
		value=excluded.value,
		situation=excluded.situation
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, river := range data.Rivers {
		for _, p := range river.LevelHistory {
			if _, err := stmt.Exec(river.Name, string(entities.KindLevel), p.Date, p.Timestamp, p.Level, ""); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert level reading for %s: %w", river.Name, err)
			}
			saved++
		}
		for _, p := range river.FlowHistory {
			if _, err := stmt.Exec(river.Name, string(entities.KindFlow), p.Date, p.Timestamp, p.Flow, ""); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert flow reading for %s: %w", river.Name, err)
			}
			saved++
		}
		for _, p := range river.TemperatureHistory {
			if _, err := stmt.Exec(river.Name, string(entities.KindTemperature), p.Date, p.Timestamp, p.Temperature, p.Situation); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert temperature reading for %s: %w", river.Name, err)
			}
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Infof("Archived %d readings across %d water bodies", saved, len(data.Rivers))
	return nil
}

// GetReadings retrieves archived readings of one kind for a water body
// after the cutoff, newest first
func (r *SQLiteRiverRepository) GetReadings(waterBody string, kind entities.ReadingKind, since time.Time) ([]StoredReading, error) {
	query := `
		SELECT id, water_body, kind, date, timestamp, value, situation
		FROM readings
		WHERE water_body = ? AND kind = ? AND timestamp >= ?
		ORDER BY timestamp DESC`

	rows, err := r.db.Query(query, waterBody, string(kind), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings for %s: %w", waterBody, err)
	}
	defer rows.Close()

	var result []StoredReading
	for rows.Next() {
		var sr StoredReading
		var situation sql.NullString
		if err := rows.Scan(&sr.ID, &sr.WaterBody, &sr.Kind, &sr.Date, &sr.Timestamp, &sr.Value, &situation); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sr.Situation = situation.String
		result = append(result, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return result, nil
}

// GetWaterBodies returns the names of all archived water bodies
func (r *SQLiteRiverRepository) GetWaterBodies() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT water_body FROM readings ORDER BY water_body`)
	if err != nil {
		return nil, fmt.Errorf("failed to query water bodies: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return names, nil
}

// GetLastUpdateTime returns the most recent archived timestamp
func (r *SQLiteRiverRepository) GetLastUpdateTime() (time.Time, error) {
	var ts sql.NullString
	err := r.db.QueryRow(`SELECT MAX(timestamp) FROM readings`).Scan(&ts)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get last update time: %w", err)
	}
	if !ts.Valid || ts.String == "" {
		return time.Time{}, nil
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05Z07:00",
	} {
		if t, err := time.Parse(layout, ts.String); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", ts.String, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", ts.String)
}
