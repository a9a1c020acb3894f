// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

// Model adapts a Circuit to the tbench.Model interface. Each evaluation runs a
// fixed number of simulation steps so that combinational logic can settle.
//
type Model struct {
	c      *Circuit
	settle int
}

var (
	_ tbench.Model       = (*Model)(nil)
	_ tbench.Snapshotter = (*Model)(nil)
)

// NewModel returns a model running settle steps per evaluation. settle should
// be at least the depth of the longest combinational path of the circuit.
// Values below 1 are treated as 1.
//
func NewModel(c *Circuit, settle int) *Model {
	if settle < 1 {
		settle = 1
	}
	return &Model{c: c, settle: settle}
}

// Circuit returns the underlying circuit.
//
func (m *Model) Circuit() *Circuit { return m.c }

// SetInput implements tbench.Model.
//
func (m *Model) SetInput(port string, v uint64) error {
	return m.c.SetInput(port, v)
}

// Eval implements tbench.Model. It fails if a component recorded a fault.
//
func (m *Model) Eval() error {
	for i := 0; i < m.settle; i++ {
		m.c.Step()
		if err := m.c.Err(); err != nil {
			return errors.Wrapf(err, "step %d", m.c.Steps())
		}
	}
	return nil
}

// Finished implements tbench.Model.
//
func (m *Model) Finished() bool { return m.c.Finished() }

// Snapshot implements tbench.Snapshotter. Ports are listed inputs first, in
// declaration order.
//
func (m *Model) Snapshot(dst []tbench.Sample) []tbench.Sample {
	for _, p := range m.c.order {
		dst = append(dst, tbench.Sample{Name: p.Name, Width: p.Width(), Value: m.c.value(p)})
	}
	return dst
}
