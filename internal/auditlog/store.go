// Package auditlog persists a history of control-plane commands and known
// device profiles in an embedded SQLite database (modernc.org/sqlite). It
// is wired into control.Dispatcher.SetAuditFunc.
package auditlog

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// migrations holds the ordered list of DDL statements that bring the schema
// up to date. Index i corresponds to version i+1; never edit or reorder an
// existing entry, only append.
var migrations = []string{
	// v1 — command audit trail
	`CREATE TABLE IF NOT EXISTS audit_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		source     TEXT NOT NULL,
		command    TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`,
	// v2 — known device profiles (model name + last-seen device id)
	`CREATE TABLE IF NOT EXISTS device_profiles (
		model       TEXT PRIMARY KEY,
		device_id   INTEGER NOT NULL,
		last_seen   INTEGER NOT NULL DEFAULT (unixepoch())
	)`,
	// v3 — index for recent-history queries
	`CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at)`,
	// v4 — enable WAL mode
	`PRAGMA journal_mode=WAL`,
}

// Store wraps a SQLite database and exposes audit/device-profile operations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies any
// pending migrations. Use ":memory:" for ephemeral in-process storage.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		slog.Warn("auditlog busy_timeout pragma failed", "err", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, stmt := range migrations {
		v := i + 1
		if v <= current {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", v, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations(version) VALUES(?)`, v,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", v, err)
		}
		slog.Debug("auditlog applied migration", "version", v)
	}
	return nil
}

// Record appends one command-outcome entry, matching the signature
// control.Dispatcher.SetAuditFunc expects.
func (s *Store) Record(source, command, outcome string) {
	if _, err := s.db.Exec(
		`INSERT INTO audit_log(source, command, outcome) VALUES(?, ?, ?)`,
		source, command, outcome,
	); err != nil {
		slog.Error("auditlog record failed", "err", err)
	}
}

// Entry is one row of command history.
type Entry struct {
	ID        int64
	Source    string
	Command   string
	Outcome   string
	CreatedAt int64
}

// Recent returns the most recent limit audit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, source, command, outcome, created_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Command, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TouchDeviceProfile upserts the last-seen timestamp for model/deviceID.
func (s *Store) TouchDeviceProfile(model string, deviceID byte) error {
	_, err := s.db.Exec(
		`INSERT INTO device_profiles(model, device_id, last_seen) VALUES(?, ?, unixepoch())
		 ON CONFLICT(model) DO UPDATE SET device_id = excluded.device_id, last_seen = excluded.last_seen`,
		model, deviceID,
	)
	return err
}

// DeviceProfile is one known device's model/id pairing.
type DeviceProfile struct {
	Model    string
	DeviceID byte
	LastSeen int64
}

// DeviceProfiles returns all known device profiles.
func (s *Store) DeviceProfiles() ([]DeviceProfile, error) {
	rows, err := s.db.Query(`SELECT model, device_id, last_seen FROM device_profiles ORDER BY model`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []DeviceProfile
	for rows.Next() {
		var p DeviceProfile
		var deviceID int
		if err := rows.Scan(&p.Model, &deviceID, &p.LastSeen); err != nil {
			return nil, err
		}
		p.DeviceID = byte(deviceID)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
