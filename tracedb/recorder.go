// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tracedb

import (
	"context"
	"database/sql"
	"time"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

// Recorder records the trace of one run. All writes happen in a single
// transaction committed by Close.
//
type Recorder struct {
	ctx   context.Context
	tx    *sql.Tx
	ins   *sql.Stmt
	runID string
	m     tbench.Snapshotter
	prev  []tbench.Sample
	cur   []tbench.Sample
	first bool
	owned *Store // closed with the recorder
	err   error
}

var _ tbench.Sink = (*Recorder)(nil)

// NewRecorder starts recording run runID of the given design. Signals are
// registered on the first dump.
//
func (s *Store) NewRecorder(ctx context.Context, runID, design string, m tbench.Snapshotter) (*Recorder, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "tracedb: begin")
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO runs (id, started_at, design) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), design); err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "tracedb: create run")
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO samples (run_id, tick, signal, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "tracedb: prepare")
	}
	return &Recorder{ctx: ctx, tx: tx, ins: ins, runID: runID, m: m, first: true}, nil
}

// Dump implements tbench.Sink.
//
func (r *Recorder) Dump(t tbench.Tick) error {
	if r.err != nil {
		return r.err
	}
	r.cur = r.m.Snapshot(r.cur[:0])
	if r.first {
		r.first = false
		for _, s := range r.cur {
			if _, err := r.tx.ExecContext(r.ctx, `INSERT INTO signals (run_id, name, width) VALUES (?, ?, ?)`,
				r.runID, s.Name, s.Width); err != nil {
				r.err = errors.Wrapf(err, "tracedb: register signal %s", s.Name)
				return r.err
			}
		}
	} else if len(r.cur) != len(r.prev) {
		r.err = errors.Errorf("tracedb: signal count changed from %d to %d at tick %d", len(r.prev), len(r.cur), t)
		return r.err
	}
	for i, s := range r.cur {
		if r.prev != nil && s.Value == r.prev[i].Value {
			continue
		}
		if _, err := r.ins.ExecContext(r.ctx, r.runID, int64(t), s.Name, int64(s.Value)); err != nil {
			r.err = errors.Wrapf(err, "tracedb: insert sample %s@%d", s.Name, t)
			return r.err
		}
	}
	r.prev, r.cur = r.cur, r.prev
	if r.cur == nil {
		r.cur = make([]tbench.Sample, 0, len(r.prev))
	}
	return nil
}

// Close commits the recorded trace, or rolls it back if a dump failed.
//
func (r *Recorder) Close() error {
	if r.tx == nil {
		return nil
	}
	r.ins.Close()
	var err error
	if r.err != nil {
		err = r.tx.Rollback()
	} else {
		err = errors.Wrap(r.tx.Commit(), "tracedb: commit")
	}
	r.tx = nil
	if r.owned != nil {
		if cerr := r.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Sink returns a tbench.SinkFunc recording into the database at
// cfg.TracePath. runID should match the run ID of the simulation (see
// tbench.WithRunID).
//
func Sink(ctx context.Context, runID, design string) tbench.SinkFunc {
	return func(cfg *tbench.Config, m tbench.Model) (tbench.Sink, error) {
		snap, ok := m.(tbench.Snapshotter)
		if !ok {
			return nil, errors.Errorf("model %T does not support snapshots", m)
		}
		s, err := Open(ctx, cfg.TracePath)
		if err != nil {
			return nil, err
		}
		r, err := s.NewRecorder(ctx, runID, design, snap)
		if err != nil {
			s.Close()
			return nil, err
		}
		r.owned = s
		return r, nil
	}
}
