// Package journal persists an audit log of routing decisions and
// pipeline executions in SQLite.
//
// The journal is write-mostly: the CLI records every selection and every
// executed run, and reads come back ordered deterministically by the
// in-process sequence number. Nothing in the selection or execution path
// depends on the journal; it observes, never influences.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Journal provides durable storage for selection and run records.
// Uses SQLite with WAL mode for concurrent read access.
type Journal struct {
	db  *sql.DB
	seq atomic.Int64
}

// Open creates or opens a SQLite journal at the given path.
// Applies required pragmas and the schema automatically; idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	j := &Journal{db: db}
	if err := j.resumeSeq(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// next returns the next monotonic sequence number. Records written by
// one process order deterministically by seq regardless of wall-clock
// resolution.
func (j *Journal) next() int64 {
	return j.seq.Add(1)
}

// resumeSeq positions the sequence counter after the highest persisted
// seq so reopening a journal keeps the ordering strictly increasing.
func (j *Journal) resumeSeq(ctx context.Context) error {
	var max sql.NullInt64
	err := j.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM selections
			UNION ALL
			SELECT seq FROM runs
		)
	`).Scan(&max)
	if err != nil {
		return fmt.Errorf("resume seq: %w", err)
	}
	if max.Valid {
		j.seq.Store(max.Int64)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}
