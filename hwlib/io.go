// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/tbench/hwsim"
	"github.com/pkg/errors"
)

// getUint returns the pins as an uint64. Pin 0 is lsb.
//
func getUint(c *hwsim.Circuit, pins []int) uint64 {
	var out uint64
	for bit, p := range pins {
		if c.Get(p) {
			out |= 1 << uint(bit)
		}
	}
	return out
}

// setUint sets the pins to the given value.
//
func setUint(c *hwsim.Circuit, pins []int, v uint64) {
	for bit, p := range pins {
		c.Set(p, v&(1<<uint(bit)) != 0)
	}
}

var finish = &hwsim.PartSpec{
	Name:   "Finish",
	Inputs: []string{pIn},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		in := s.Pin(pIn)
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				if c.Get(in) {
					c.Finish()
				}
			}}
	}}

// Finish returns a part that raises the finished flag of the circuit as soon
// as its input is high. The flag stays raised.
//
//	Inputs: in
//
func Finish(w string) hwsim.Part { return finish.NewPart(w) }

// Assert returns a part that faults the circuit with the given message when
// its input is high.
//
//	Inputs: in
//
func Assert(msg string) hwsim.NewPartFn {
	err := errors.New(msg)
	return (&hwsim.PartSpec{
		Name:   "Assert",
		Inputs: []string{pIn},
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in := s.Pin(pIn)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if c.Get(in) {
						c.Fail(err)
					}
				}}
		}}).NewPart
}

// ConstN returns a N-bits constant.
//
//	Outputs: out[bits]
//	Function: out = v
//
func ConstN(bits int, v uint64) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "Const" + strconv.Itoa(bits),
		Outputs: bus(bits, pOut),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			out := s.Bus(pOut)
			return []hwsim.Component{
				func(c *hwsim.Circuit) { setUint(c, out, v) },
			}
		}}).NewPart
}

// EqualN returns a N-bits comparator.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out
//	Function: out = a == b
//
func EqualN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "Equal" + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: []string{pOut},
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			a, b, out := s.Bus(pA), s.Bus(pB), s.Pin(pOut)
			return []hwsim.Component{
				func(c *hwsim.Circuit) { c.Set(out, getUint(c, a) == getUint(c, b)) },
			}
		}}).NewPart
}
