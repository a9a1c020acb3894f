// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tracedb stores simulation traces in an embedded SQLite database.
//
// Each run gets a row in the runs table and its signals in the signals table.
// Samples are only stored when a signal changes value, so a waveform is read
// back as a list of (tick, value) transitions.
//
package tracedb

import (
	"context"
	"database/sql"
	"time"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	design     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS signals (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	width  INTEGER NOT NULL,
	PRIMARY KEY (run_id, name)
);
CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL REFERENCES runs(id),
	tick   INTEGER NOT NULL,
	signal TEXT NOT NULL,
	value  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS samples_by_signal ON samples (run_id, signal, tick);
`

// ErrNotFound is returned when a run or signal does not exist.
//
var ErrNotFound = errors.New("tracedb: not found")

// Store is a trace database.
//
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
//
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "tracedb: open")
	}
	// a single connection serializes writers on the file.
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "tracedb: apply schema")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
//
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "tracedb: close")
}

// Run describes a recorded run.
//
type Run struct {
	ID        string
	StartedAt time.Time
	Design    string
}

// Signal describes a recorded signal.
//
type Signal struct {
	Name  string
	Width int
}

// Sample is a signal transition.
//
type Sample struct {
	Tick  tbench.Tick
	Value uint64
}

// Runs returns all recorded runs, oldest first.
//
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, design FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "tracedb: list runs")
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			r  Run
			ts string
		)
		if err = rows.Scan(&r.ID, &ts, &r.Design); err != nil {
			return nil, errors.Wrap(err, "tracedb: scan run")
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, errors.Wrapf(err, "tracedb: run %s start time", r.ID)
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "tracedb: list runs")
}

// Signals returns the signals recorded for a run, in snapshot order.
//
func (s *Store) Signals(ctx context.Context, runID string) ([]Signal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, width FROM signals WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "tracedb: list signals")
	}
	defer rows.Close()
	var sigs []Signal
	for rows.Next() {
		var sig Signal
		if err = rows.Scan(&sig.Name, &sig.Width); err != nil {
			return nil, errors.Wrap(err, "tracedb: scan signal")
		}
		sigs = append(sigs, sig)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "tracedb: list signals")
	}
	if len(sigs) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "run %s", runID)
	}
	return sigs, nil
}

// Samples returns the transitions of a signal in tick order. The first sample
// is the value at the first dumped tick.
//
func (s *Store) Samples(ctx context.Context, runID, signal string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, value FROM samples WHERE run_id = ? AND signal = ? ORDER BY tick`, runID, signal)
	if err != nil {
		return nil, errors.Wrap(err, "tracedb: query samples")
	}
	defer rows.Close()
	var ss []Sample
	for rows.Next() {
		var tick, v int64
		if err = rows.Scan(&tick, &v); err != nil {
			return nil, errors.Wrap(err, "tracedb: scan sample")
		}
		// values are stored as their int64 bit pattern
		ss = append(ss, Sample{tbench.Tick(tick), uint64(v)})
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "tracedb: query samples")
	}
	if len(ss) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "signal %s in run %s", signal, runID)
	}
	return ss, nil
}
