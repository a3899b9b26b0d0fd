package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"adpulse/internal/insight"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ SnapshotStore = (*SQLiteStore)(nil)
var _ TurnStore = (*SQLiteStore)(nil)
var _ SyncStore = (*SQLiteStore)(nil)

// SQLiteStore implements SnapshotStore, TurnStore, and SyncStore
// backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	generated_at TEXT NOT NULL,
	date_range_start TEXT NOT NULL,
	date_range_end TEXT NOT NULL,
	payload TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role TEXT NOT NULL,
	text TEXT NOT NULL,
	at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS syncs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// ensures the schema exists, and returns a ready-to-use store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// SnapshotStore implementation
// ---------------------------------------------------------------------------

// SaveSnapshot records a fetched snapshot as JSON.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *insight.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (generated_at, date_range_start, date_range_end, payload, saved_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.GeneratedAt, snap.DateRangeStart, snap.DateRangeEnd,
		string(payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

// LatestSnapshot returns the most recently saved snapshot, or nil.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*insight.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap insight.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ---------------------------------------------------------------------------
// TurnStore implementation
// ---------------------------------------------------------------------------

// SaveTurn appends a completed conversation turn.
func (s *SQLiteStore) SaveTurn(ctx context.Context, role, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (role, text, at) VALUES (?, ?, ?)`,
		role, text, time.Now().UTC().Format(time.RFC3339))
	return err
}

// RecentTurns returns up to limit turns, oldest first.
func (s *SQLiteStore) RecentTurns(ctx context.Context, limit int) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, text, at FROM turns ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var at string
		if err := rows.Scan(&t.ID, &t.Role, &t.Text, &at); err != nil {
			return nil, err
		}
		t.At, _ = time.Parse(time.RFC3339, at)
		turns = append(turns, t)
	}
	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, rows.Err()
}

// ---------------------------------------------------------------------------
// SyncStore implementation
// ---------------------------------------------------------------------------

// MarkSync records a successful sync at the given time.
func (s *SQLiteStore) MarkSync(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO syncs (at) VALUES (?)`, at.UTC().Format(time.RFC3339))
	return err
}

// LastSync returns the most recent sync time, or the zero time.
func (s *SQLiteStore) LastSync(ctx context.Context) (time.Time, error) {
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT at FROM syncs ORDER BY id DESC LIMIT 1`).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, at)
}
