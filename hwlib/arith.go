// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/tbench/hwsim"
)

var hAdder = &hwsim.PartSpec{
	Name:    "HalfAdder",
	Inputs:  []string{pA, pB},
	Outputs: []string{"s", "c"},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		a, b := s.Pin(pA), s.Pin(pB)
		sum, cout := s.Pin("s"), s.Pin("c")
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				va, vb := c.Get(a), c.Get(b)
				c.Set(sum, va != vb)
				c.Set(cout, va && vb)
			}}
	}}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(c string) hwsim.Part {
	return hAdder.NewPart(c)
}

var adder = &hwsim.PartSpec{
	Name:    "FullAdder",
	Inputs:  []string{pA, pB, "cin"},
	Outputs: []string{"s", "cout"},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		a, b, cin := s.Pin(pA), s.Pin(pB), s.Pin("cin")
		sum, cout := s.Pin("s"), s.Pin("cout")
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				va, vb, vc := c.Get(a), c.Get(b), c.Get(cin)
				s := va != vb
				c.Set(sum, s != vc)
				c.Set(cout, s && vc || va && vb)
			}}
	}}

// FullAdder returns a 3 bit adder.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder(c string) hwsim.Part {
	return adder.NewPart(c)
}

// AdderN returns a N-bits adder.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits], c
//
func AdderN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "Adder" + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: append(bus(bits, pOut), "c"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			a, b := s.Bus(pA), s.Bus(pB)
			out, cout := s.Bus(pOut), s.Pin("c")
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					cc := false
					for i, o := range out {
						va, vb := c.Get(a[i]), c.Get(b[i])
						s0 := va != vb
						c.Set(o, s0 != cc)
						cc = va && vb || s0 && cc
					}
					c.Set(cout, cc)
				}}
		}}).NewPart
}

// CounterN returns a N-bits synchronous counter.
//
//	Inputs: clk, rst, en
//	Outputs: out[bits], max
//	Function: on the rising edge of clk:
//	              if rst { out = 0 } else if en { out = out + 1 }
//	          max = out == 1<<bits - 1
//
func CounterN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "Counter" + strconv.Itoa(bits),
		Inputs:  []string{pClk, pRst, "en"},
		Outputs: append(bus(bits, pOut), "max"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			clk, rst, en := s.Pin(pClk), s.Pin(pRst), s.Pin("en")
			out, atMax := s.Bus(pOut), s.Pin("max")
			top := uint64(1)<<uint(bits) - 1
			var v uint64
			var edge edgeDetector
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.rising(c.Get(clk)) {
						switch {
						case c.Get(rst):
							v = 0
						case c.Get(en):
							v = (v + 1) & top
						}
					}
					setUint(c, out, v)
					c.Set(atMax, v == top)
				}}
		}}).NewPart
}
