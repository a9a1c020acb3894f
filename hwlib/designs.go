// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"sort"

	"github.com/db47h/tbench/hwsim"
)

// A Design is a ready made circuit that can be driven by a test bench.
//
type Design struct {
	Name        string
	Description string
	New         func() (*hwsim.Circuit, error)
}

var designs = map[string]Design{
	"counter": {
		Name:        "counter",
		Description: "4 bit counter with synchronous reset and enable; finishes when the count reaches 15",
		New: func() (*hwsim.Circuit, error) {
			return hwsim.NewCircuit("clk, rst, en", "count[4], max",
				CounterN(4)("clk=clk, rst=rst, en=en, out=count, max=max"),
				Finish("in=max"),
			)
		},
	},
	"blinky": {
		Name:        "blinky",
		Description: "toggles led on every rising clock edge while rst is low",
		New: func() (*hwsim.Circuit, error) {
			return hwsim.NewCircuit("clk, rst", "led",
				Not("in=led, out=nled"),
				Mux("a=nled, b=false, sel=rst, out=d"),
				DFF("in=d, clk=clk, out=led"),
			)
		},
	},
	"xor": {
		Name:        "xor",
		Description: "XOR gate built from four NAND gates",
		New: func() (*hwsim.Circuit, error) {
			x, err := NandXor()
			if err != nil {
				return nil, err
			}
			return hwsim.NewCircuit("a, b", "out", x("a=a, b=b, out=out"))
		},
	},
	"adder": {
		Name:        "adder",
		Description: "8 bit adder with carry out",
		New: func() (*hwsim.Circuit, error) {
			return hwsim.NewCircuit("a[8], b[8]", "out[8], c",
				AdderN(8)("a=a, b=b, out=out, c=c"),
			)
		},
	},
}

// NandXor returns a XOR gate made of NAND gates.
//
//	Inputs: a, b
//	Outputs: out
//
func NandXor() (hwsim.NewPartFn, error) {
	return hwsim.Chip("NandXOR", "a, b", "out",
		Nand("a=a, b=b, out=nandAB"),
		Nand("a=a, b=nandAB, out=w0"),
		Nand("a=b, b=nandAB, out=w1"),
		Nand("a=w0, b=w1, out=out"),
	)
}

// Designs returns the built-in designs sorted by name.
//
func Designs() []Design {
	r := make([]Design, 0, len(designs))
	for _, d := range designs {
		r = append(r, d)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Name < r[j].Name })
	return r
}

// LookupDesign returns the named built-in design.
//
func LookupDesign(name string) (Design, bool) {
	d, ok := designs[name]
	return d, ok
}
