// Package store persists scaled inflow series to SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cascade-router/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scaled_inflow (
	station TEXT NOT NULL,
	ts      TEXT NOT NULL,
	year    INTEGER NOT NULL,
	value   REAL NOT NULL,
	PRIMARY KEY (station, ts)
);
CREATE INDEX IF NOT EXISTS scaled_inflow_station_year ON scaled_inflow (station, year);
`

// Store is a SQLite sink for scaled series.
type Store struct {
	db *sql.DB
}

// Open creates the database file and its directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WriteScaled replaces the stored hours of every given station, one
// transaction per station. Stations are written in id order.
func (s *Store) WriteScaled(ctx context.Context, series map[string]model.Series) error {
	ids := make([]string, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.writeStation(ctx, id, series[id]); err != nil {
			return fmt.Errorf("write %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) writeStation(ctx context.Context, id string, series model.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO scaled_inflow (station, ts, year, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for t, v := range series.Values {
		ts := series.Time(t)
		if _, err := stmt.ExecContext(ctx, id, ts.UTC().Format(time.RFC3339), ts.Year(), v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReadScaled returns one station's stored hours of a calendar year in time
// order. An empty series means nothing is stored.
func (s *Store) ReadScaled(ctx context.Context, station string, year int) (model.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, value FROM scaled_inflow WHERE station = ? AND year = ? ORDER BY ts`, station, year)
	if err != nil {
		return model.Series{}, err
	}
	defer rows.Close()

	var out model.Series
	for rows.Next() {
		var ts string
		var v float64
		if err := rows.Scan(&ts, &v); err != nil {
			return model.Series{}, err
		}
		if out.Values == nil {
			start, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return model.Series{}, fmt.Errorf("bad timestamp %q: %w", ts, err)
			}
			out.Start = start
		}
		out.Values = append(out.Values, v)
	}
	return out, rows.Err()
}
