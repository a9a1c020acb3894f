// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwsim is a naive gate-level circuit simulator that can be driven by
// a tbench test bench.
//
// A circuit is a set of components, closures that read pin states from one
// frame and write pin states to another. Each simulation step runs every
// component once then swaps the frames, so a signal crosses one component per
// step. A combinational path of depth n settles after n steps.
//
// Parts are described by a PartSpec and composed into chips with Chip. A
// Circuit wraps a top level chip whose inputs and outputs are the named ports
// seen by the test bench. Ports declared as buses (for example "count[4]")
// carry unsigned integer values, pin 0 being the least significant bit.
//
package hwsim

import (
	"github.com/db47h/tbench/internal/hdl"
	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set states.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query the socket for
// assigned pin numbers and return closures around these pin numbers.
//
// A Not gate can be defined like this:
//
//	not := &hwsim.PartSpec{
//		Name:    "Not",
//		Inputs:  []string{"in"},
//		Outputs: []string{"out"},
//		Mount: func(s *hwsim.Socket) []hwsim.Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []hwsim.Component{
//				func(c *hwsim.Circuit) { c.Set(out, !c.Get(in)) },
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Use IO to expand a description like "a, b, bus[2]".
	Inputs []string
	// Output pin names.
	Outputs []string
	// Mount function (see MountFn).
	Mount MountFn
}

// IO expands a pin description like "a, b, bus[2]" into
// []string{"a", "b", "bus[0]", "bus[1]"}. It panics on syntax errors.
//
func IO(spec string) []string {
	r, err := hdl.ParseIO(spec)
	if err != nil {
		panic(err)
	}
	return r
}

// A NewPartFn is a function that takes a connection string and returns a new
// Part. See package hdl for the connection syntax.
//
type NewPartFn func(connections string) Part

// A Part wraps a part specification together with its connections within a
// host chip.
//
type Part struct {
	*PartSpec
	// part pin name to container pin name
	wires map[string]string
	err   error
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// Connection errors are reported when the part is used in a Chip or Circuit.
//
func (p *PartSpec) NewPart(connections string) Part {
	w, err := p.expand(connections)
	if err != nil {
		err = errors.Wrapf(err, "part %s", p.Name)
	}
	return Part{p, w, err}
}

func (p *PartSpec) has(pin string) bool {
	for _, n := range p.Inputs {
		if n == pin {
			return true
		}
	}
	for _, n := range p.Outputs {
		if n == pin {
			return true
		}
	}
	return false
}

// width returns the number of pins of bus name in p.
func (p *PartSpec) width(name string) int {
	n := 0
	for p.has(hdl.BusPinName(name, n)) {
		n++
	}
	return n
}

func (p *PartSpec) expand(connections string) (map[string]string, error) {
	cs, err := hdl.ParseConnections(connections)
	if err != nil {
		return nil, err
	}
	w := make(map[string]string)
	for _, c := range cs {
		ks := c.Part.Names()
		if c.Part.Plain() && !p.has(c.Part.Name) {
			if n := p.width(c.Part.Name); n > 0 {
				ks = hdl.Pin{Name: c.Part.Name, Start: 0, End: n - 1}.Names()
			}
		}
		vs := c.Chip.Names()
		if c.Chip.Plain() && len(ks) > 1 && !isConstant(c.Chip.Name) {
			vs = hdl.Pin{Name: c.Chip.Name, Start: 0, End: len(ks) - 1}.Names()
		}
		switch {
		case len(vs) == len(ks):
		case len(vs) == 1:
			for len(vs) < len(ks) {
				vs = append(vs, vs[0])
			}
		default:
			return nil, errors.Errorf("pin count mismatch in %s=%s", c.Part, c.Chip)
		}
		for i, k := range ks {
			if !p.has(k) {
				return nil, errors.Errorf("invalid pin name %s", k)
			}
			if _, ok := w[k]; ok {
				return nil, errors.Errorf("pin %s connected more than once", k)
			}
			w[k] = vs[i]
		}
	}
	return w, nil
}

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	s0    []bool // wire states frame #0
	s1    []bool // wire states frame #1
	cs    []Component
	count int // wire count
	steps uint64

	ports map[string]*Port
	order []*Port

	finished bool
	err      error
}

// Port is a named top-level input or output of a circuit.
//
type Port struct {
	Name  string
	Input bool
	Pins  []int // pin 0 is the lsb
}

// Width returns the port width in bits.
//
func (p *Port) Width() int { return len(p.Pins) }

// NewCircuit builds a new circuit from the given parts. The inputs and outputs
// descriptions, like "clk, rst, data[8]", name the ports of the circuit.
//
func NewCircuit(inputs, outputs string, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	ins, err := hdl.ParseIO(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "circuit inputs")
	}
	outs, err := hdl.ParseIO(outputs)
	if err != nil {
		return nil, errors.Wrap(err, "circuit outputs")
	}
	wrap, err := chip("CIRCUIT", ins, outs, parts)
	if err != nil {
		return nil, err
	}

	c := &Circuit{count: cstCount, ports: make(map[string]*Port)}
	s := newSocket(c)
	c.addPorts(s, ins, true)
	c.addPorts(s, outs, false)
	c.cs = wrap.Mount(s)
	c.s0 = make([]bool, c.count)
	c.s1 = make([]bool, c.count)
	c.s0[cstTrue] = true
	c.s1[cstTrue] = true
	return c, nil
}

func (c *Circuit) addPorts(s *Socket, names []string, input bool) {
	for _, n := range names {
		bus := busName(n)
		p := c.ports[bus]
		if p == nil {
			p = &Port{Name: bus, Input: input}
			c.ports[bus] = p
			c.order = append(c.order, p)
		}
		p.Pins = append(p.Pins, s.PinOrNew(n))
	}
}

func busName(pin string) string {
	for i := 0; i < len(pin); i++ {
		if pin[i] == '[' {
			return pin[:i]
		}
	}
	return pin
}

// alloc allocates a pin and returns its number.
//
func (c *Circuit) allocPin() int {
	cnt := c.count
	c.count++
	return cnt
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint64 { return c.steps }

// Get returns the state of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// Set sets the state s of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = s
}

// Toggle toggles the state of pin n.
//
func (c *Circuit) Toggle(n int) {
	c.s1[n] = !c.s0[n]
}

// Finish raises the finished flag of the circuit. The flag is never cleared.
//
func (c *Circuit) Finish() { c.finished = true }

// Finished returns true once a component has called Finish.
//
func (c *Circuit) Finished() bool { return c.finished }

// Fail records a fault. Only the first fault is kept.
//
func (c *Circuit) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first fault recorded by a component.
//
func (c *Circuit) Err() error { return c.err }

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	for _, f := range c.cs {
		f(c)
	}
	if c.s1[cstFalse] || !c.s1[cstTrue] {
		panic("true or false constants have been overwritten")
	}
	c.steps++
	c.s0, c.s1 = c.s1, c.s0
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Ports returns the circuit ports, inputs first, in declaration order.
//
func (c *Circuit) Ports() []*Port { return c.order }

// Port returns the named port.
//
func (c *Circuit) Port(name string) (*Port, bool) {
	p, ok := c.ports[name]
	return p, ok
}

// SetInput drives input port name to v. The new value is visible to components
// on the next step.
//
func (c *Circuit) SetInput(name string, v uint64) error {
	p, ok := c.ports[name]
	if !ok {
		return errors.Errorf("unknown port %q", name)
	}
	if !p.Input {
		return errors.Errorf("port %q is not an input", name)
	}
	if w := p.Width(); w < 64 && v>>uint(w) != 0 {
		return errors.Errorf("value %#x does not fit in %d bit port %q", v, w, name)
	}
	for bit, n := range p.Pins {
		b := v&(1<<uint(bit)) != 0
		c.s0[n], c.s1[n] = b, b
	}
	return nil
}

// Value returns the current value of the named port.
//
func (c *Circuit) Value(name string) (uint64, error) {
	p, ok := c.ports[name]
	if !ok {
		return 0, errors.Errorf("unknown port %q", name)
	}
	return c.value(p), nil
}

func (c *Circuit) value(p *Port) uint64 {
	var v uint64
	for bit, n := range p.Pins {
		if c.s0[n] {
			v |= 1 << uint(bit)
		}
	}
	return v
}
