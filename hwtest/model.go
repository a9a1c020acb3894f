// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions and fake collaborators for testing
// test benches.
//
package hwtest

import (
	"sort"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

// ErrFault is the error returned by Model.Eval when FailAt is reached.
//
var ErrFault = errors.New("model fault")

// A Call is a SetInput call recorded by Model. Eval is the number of
// evaluations that happened before the call, which is the current tick when
// the model is evaluated once per tick.
//
type Call struct {
	Eval  uint64
	Port  string
	Value uint64
}

// Model is a recording fake model. Every input write is recorded, and the
// value of every port is sampled on each evaluation.
//
type Model struct {
	// FinishAfter raises the finished flag once that many evaluations have
	// run. Zero means never.
	FinishAfter uint64
	// FailAt makes the FailAt-th evaluation (1 based) return ErrFault.
	FailAt uint64

	Calls []Call
	// Seen holds, per port, the value seen by each evaluation.
	Seen   map[string][]uint64
	Evals  uint64
	Closed bool

	ports  []string
	strict bool
	in     map[string]uint64
}

// NewModel returns a new model. If ports are given, SetInput rejects any other
// port name. Declared ports read 0 until written.
//
func NewModel(ports ...string) *Model {
	m := &Model{
		Seen:   make(map[string][]uint64),
		in:     make(map[string]uint64),
		strict: len(ports) > 0,
	}
	for _, p := range ports {
		m.addPort(p)
	}
	return m
}

func (m *Model) addPort(p string) {
	if _, ok := m.in[p]; ok {
		return
	}
	m.in[p] = 0
	m.ports = append(m.ports, p)
	sort.Strings(m.ports)
	// pad history so that Seen[p][tick] stays aligned.
	m.Seen[p] = make([]uint64, m.Evals)
}

// SetInput implements tbench.Model.
//
func (m *Model) SetInput(port string, v uint64) error {
	if _, ok := m.in[port]; !ok {
		if m.strict {
			return errors.Errorf("no such port %q", port)
		}
		m.addPort(port)
	}
	m.in[port] = v
	m.Calls = append(m.Calls, Call{m.Evals, port, v})
	return nil
}

// Eval implements tbench.Model.
//
func (m *Model) Eval() error {
	if m.FailAt != 0 && m.Evals+1 == m.FailAt {
		return ErrFault
	}
	for _, p := range m.ports {
		m.Seen[p] = append(m.Seen[p], m.in[p])
	}
	m.Evals++
	return nil
}

// Finished implements tbench.Model.
//
func (m *Model) Finished() bool {
	return m.FinishAfter != 0 && m.Evals >= m.FinishAfter
}

// Input returns the current value of port.
//
func (m *Model) Input(port string) uint64 { return m.in[port] }

// Snapshot implements tbench.Snapshotter. Ports are reported in lexical order
// as 64 bit signals.
//
func (m *Model) Snapshot(dst []tbench.Sample) []tbench.Sample {
	for _, p := range m.ports {
		dst = append(dst, tbench.Sample{Name: p, Width: 64, Value: m.in[p]})
	}
	return dst
}

// Close implements io.Closer.
//
func (m *Model) Close() error {
	m.Closed = true
	return nil
}

// Edges returns the evaluation indices at which the value seen on port
// changed, the first evaluation excluded.
//
func (m *Model) Edges(port string) []uint64 {
	var out []uint64
	s := m.Seen[port]
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1] {
			out = append(out, uint64(i))
		}
	}
	return out
}
