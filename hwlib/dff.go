// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/tbench/hwsim"
)

// edgeDetector tracks the level of a clock pin across simulation steps.
type edgeDetector struct {
	prev bool
}

func (e *edgeDetector) rising(clk bool) bool {
	r := clk && !e.prev
	e.prev = clk
	return r
}

var dff = &hwsim.PartSpec{
	Name:    "DFF",
	Inputs:  []string{pIn, pClk},
	Outputs: []string{pOut},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		in, clk, out := s.Pin(pIn), s.Pin(pClk), s.Pin(pOut)
		var curOut bool
		var edge edgeDetector
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				if edge.rising(c.Get(clk)) {
					curOut = c.Get(in)
				}
				c.Set(out, curOut)
			}}
	}}

// DFF returns a data flip flop triggered on the rising edge of clk.
//
//	Inputs: in, clk
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) hwsim.Part { return dff.NewPart(w) }

// DFFN returns a N-bits data flip flop.
//
//	Inputs: in[bits], clk
//	Outputs: out[bits]
//	Function: for i := range out { out[i](t) = in[i](t-1) }
//
func DFFN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "DFF" + strconv.Itoa(bits),
		Inputs:  append(bus(bits, pIn), pClk),
		Outputs: bus(bits, pOut),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in, clk, out := s.Bus(pIn), s.Pin(pClk), s.Bus(pOut)
			cur := make([]bool, bits)
			var edge edgeDetector
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.rising(c.Get(clk)) {
						for i, p := range in {
							cur[i] = c.Get(p)
						}
					}
					for i, p := range out {
						c.Set(p, cur[i])
					}
				}}
		}}).NewPart
}

// RegisterN returns a N-bits register with synchronous reset.
//
//	Inputs: in[bits], load, rst, clk
//	Outputs: out[bits]
//	Function: on the rising edge of clk:
//	              if rst { out = 0 } else if load { out = in }
//
func RegisterN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "Register" + strconv.Itoa(bits),
		Inputs:  append(bus(bits, pIn), "load", pRst, pClk),
		Outputs: bus(bits, pOut),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in, out := s.Bus(pIn), s.Bus(pOut)
			load, rst, clk := s.Pin("load"), s.Pin(pRst), s.Pin(pClk)
			var v uint64
			var edge edgeDetector
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.rising(c.Get(clk)) {
						switch {
						case c.Get(rst):
							v = 0
						case c.Get(load):
							v = getUint(c, in)
						}
					}
					setUint(c, out, v)
				}}
		}}).NewPart
}
