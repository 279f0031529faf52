// Package state persists daemon runtime information inside the state
// directory. The catalog is a single SQLite file whose layout is owned by
// the daemon, not by the bootstrap.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// CatalogFileName is the SQLite file created inside the state directory.
const CatalogFileName = "vdm.db"

// Catalog is a SQLite-backed store for daemon info and state snapshots.
type Catalog struct {
	db *sql.DB
	mu sync.RWMutex
}

// Snapshot is one periodic record of the daemon's runtime state.
type Snapshot struct {
	ID            int64
	TakenAt       time.Time
	Status        string
	UptimeSeconds float64
}

// Open creates or opens the catalog at dbPath.
// Use ":memory:" for an in-memory catalog in tests.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return c, nil
}

func (c *Catalog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daemon_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		uptime_seconds REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

// RecordStartup stores the identity of the current daemon run.
func (c *Catalog) RecordStartup(ctx context.Context, version string, pid int, startedAt time.Time) error {
	if err := c.SetInfo(ctx, "version", version); err != nil {
		return err
	}
	if err := c.SetInfo(ctx, "pid", fmt.Sprintf("%d", pid)); err != nil {
		return err
	}
	return c.SetInfo(ctx, "started_at", startedAt.UTC().Format(time.RFC3339))
}

// SetInfo upserts one daemon info key.
func (c *Catalog) SetInfo(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		"INSERT INTO daemon_info (key, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert daemon info %q: %w", key, err)
	}
	return nil
}

// Info reads one daemon info key; ok is false when the key is absent.
func (c *Catalog) Info(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var value string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM daemon_info WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query daemon info %q: %w", key, err)
	}
	return value, true, nil
}

// RecordSnapshot appends one runtime snapshot.
func (c *Catalog) RecordSnapshot(ctx context.Context, status string, uptime time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		"INSERT INTO snapshots (taken_at, status, uptime_seconds) VALUES (?, ?, ?)",
		time.Now().Unix(), status, uptime.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Snapshots returns the most recent snapshots, newest first.
func (c *Catalog) Snapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		"SELECT id, taken_at, status, uptime_seconds FROM snapshots ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var takenAt int64
		if err := rows.Scan(&s.ID, &takenAt, &s.Status, &s.UptimeSeconds); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.TakenAt = time.Unix(takenAt, 0).UTC()
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}
