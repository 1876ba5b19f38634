// Package journal records every media modification in a SQLite table so
// that pending version-control work can be inspected after the fact.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS media_events (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	path  TEXT NOT NULL,
	state TEXT NOT NULL,
	at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_media_events_path ON media_events(path);
`

// States recorded for a modified path.
const (
	StatePresent = "present"
	StateAbsent  = "absent"
)

// Entry is one journal row.
type Entry struct {
	ID    int64     `json:"id"`
	Path  string    `json:"path"`
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// DB wraps a sql.DB with journal operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record appends an entry. A zero At is stamped with the current time.
func (db *DB) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO media_events (path, state, at) VALUES (?, ?, ?)`,
		e.Path, e.State, e.At)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Path, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, path, state, at FROM media_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Path, &e.State, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
