// Package keylog persists key rotation events in a local SQLite database
// for compliance audits. It stores versions and timestamps only, never key
// material.
package keylog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS key_rotations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    key_version INTEGER NOT NULL,
    rotated_at TIMESTAMP NOT NULL,
    evicted_version INTEGER,
    recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_key_rotations_version ON key_rotations(key_version);
`

// Rotation is one journal row. EvictedVersion is 0 for the row that records
// the new version itself.
type Rotation struct {
	KeyVersion     uint16
	RotatedAt      time.Time
	EvictedVersion uint16
	RecordedAt     time.Time
}

// Journal is a SQLite-backed rotation journal.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordRotation writes one row for the new version and one per evicted
// version, in a single transaction.
func (j *Journal) RecordRotation(ctx context.Context, newVersion uint16, rotatedAt time.Time, evicted []uint16) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning journal transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO key_rotations (key_version, rotated_at, evicted_version) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert, newVersion, rotatedAt.UTC(), nil); err != nil {
		return fmt.Errorf("recording rotation to version %d: %w", newVersion, err)
	}
	for _, v := range evicted {
		if _, err := tx.ExecContext(ctx, insert, newVersion, rotatedAt.UTC(), v); err != nil {
			return fmt.Errorf("recording eviction of version %d: %w", v, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing journal transaction: %w", err)
	}
	return nil
}

// Rotations returns all journal rows in recording order.
func (j *Journal) Rotations(ctx context.Context) ([]Rotation, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT key_version, rotated_at, COALESCE(evicted_version, 0), recorded_at
		 FROM key_rotations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying rotations: %w", err)
	}
	defer rows.Close()

	var rotations []Rotation
	for rows.Next() {
		var r Rotation
		if err := rows.Scan(&r.KeyVersion, &r.RotatedAt, &r.EvictedVersion, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning rotation row: %w", err)
		}
		rotations = append(rotations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rotations: %w", err)
	}
	return rotations, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
