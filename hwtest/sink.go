// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"github.com/db47h/tbench"
)

// Sink is a trace sink recording dump ticks and, if Model is set, snapshots.
//
type Sink struct {
	Model   tbench.Snapshotter
	Ticks   []tbench.Tick
	Samples [][]tbench.Sample
	Err     error // returned by Dump when non-nil
	Closed  bool
}

// Dump implements tbench.Sink.
//
func (s *Sink) Dump(t tbench.Tick) error {
	if s.Err != nil {
		return s.Err
	}
	s.Ticks = append(s.Ticks, t)
	if s.Model != nil {
		s.Samples = append(s.Samples, s.Model.Snapshot(nil))
	}
	return nil
}

// Close implements tbench.Sink.
//
func (s *Sink) Close() error {
	s.Closed = true
	return nil
}

// Board counts updates and records the value of a port at each one.
//
type Board struct {
	Model   *Model
	Port    string
	Updates int
	Values  []uint64 // value of Port at each update
	Ticks   []uint64 // evaluations done at each update
}

// Update implements tbench.Board.
//
func (b *Board) Update() error {
	b.Updates++
	if b.Model != nil {
		b.Values = append(b.Values, b.Model.Input(b.Port))
		b.Ticks = append(b.Ticks, b.Model.Evals)
	}
	return nil
}
