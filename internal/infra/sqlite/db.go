// Package sqlite provides SQLite-based persistent storage for LumeIQ.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Impact state: key-value store for pillar scores, totals, counters.
		// One value per key, JSON for the composite blob.
		`CREATE TABLE IF NOT EXISTS impact_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Impact event history (bounded to the most recent 100 on write)
		`CREATE TABLE IF NOT EXISTS impact_events (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			pillar       TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			carbon_saved REAL NOT NULL DEFAULT 0,
			points       REAL NOT NULL DEFAULT 0,
			money_saved  REAL NOT NULL DEFAULT 0,
			timestamp    INTEGER NOT NULL,
			verified     BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON impact_events(timestamp)`,

		// Completed live-tracked trips
		`CREATE TABLE IF NOT EXISTS trips (
			id           TEXT PRIMARY KEY,
			mode         TEXT NOT NULL,
			from_label   TEXT NOT NULL DEFAULT '',
			to_label     TEXT NOT NULL DEFAULT '',
			distance_km  REAL NOT NULL,
			carbon_g     REAL NOT NULL,
			saved_g      REAL NOT NULL,
			money_saved  REAL NOT NULL DEFAULT 0,
			started_at   INTEGER NOT NULL,
			ended_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_ended ON trips(ended_at)`,

		// Redeemed coupon codes
		`CREATE TABLE IF NOT EXISTS redeemed_coupons (
			code        TEXT PRIMARY KEY,
			redeemed_at INTEGER NOT NULL
		)`,

		// Daily habit log — caller-side "already logged today" gate
		`CREATE TABLE IF NOT EXISTS habit_log (
			tag TEXT NOT NULL,
			day TEXT NOT NULL,
			PRIMARY KEY (tag, day)
		)`,

		// Product scan log — abuse-prevention cooldowns and daily caps
		`CREATE TABLE IF NOT EXISTS scan_log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			barcode    TEXT NOT NULL,
			scanned_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_at ON scan_log(scanned_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// setKV stores a key-value pair in impact_state.
func (d *DB) setKV(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO impact_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// SetMeta stores an auxiliary key-value pair (streak counters and similar
// small state) in the impact_state table.
func (d *DB) SetMeta(key, value string) error {
	return d.setKV("meta_"+key, value)
}

// GetMeta retrieves an auxiliary value. Returns "" if key not found.
func (d *DB) GetMeta(key string) (string, error) {
	return d.getKV("meta_" + key)
}

// getKV retrieves a value from impact_state. Returns "" if key not found.
func (d *DB) getKV(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM impact_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
