// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"strings"
	"testing"
	"testing/quick"

	hw "github.com/db47h/tbench/hwsim"
	hl "github.com/db47h/tbench/hwlib"
)

const testSettle = 4

func settle(c *hw.Circuit, n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

func testGate(t *testing.T, gate hw.NewPartFn, result [][]bool) {
	t.Helper()
	part := gate("").PartSpec // build dummy gate just to get to the partspec
	var w []string
	for _, n := range part.Inputs {
		w = append(w, n+"="+n)
	}
	for _, n := range part.Outputs {
		w = append(w, n+"="+n)
	}
	c, err := hw.NewCircuit(strings.Join(part.Inputs, ", "), strings.Join(part.Outputs, ", "), gate(strings.Join(w, ", ")))
	if err != nil {
		t.Fatal(err)
	}

	inputs := make([]uint64, len(part.Inputs))
	tot := 1 << uint(len(part.Inputs))
	for i := 0; i < tot; i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = uint64(i>>uint(bit)) & 1
		}
		for n, name := range part.Inputs {
			if err := c.SetInput(name, inputs[n]); err != nil {
				t.Fatal(err)
			}
		}
		settle(c, testSettle)
		for o, name := range part.Outputs {
			v, err := c.Value(name)
			if err != nil {
				t.Fatal(err)
			}
			if exp := result[o][i]; exp != (v != 0) {
				t.Errorf("%s %v: expected %s = %v, got %v", part.Name, inputs, name, exp, v != 0)
			}
		}
	}
}

func Test_gate_builtin(t *testing.T) {
	tr, err := hw.Chip("TRUE", "a", "out",
		hl.And("a=true, b=true, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	fa, err := hw.Chip("FALSE", "a", "out",
		hl.Or("a=false, b=false, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	nx, err := hl.NandXor()
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name   string
		gate   hw.NewPartFn
		result [][]bool // a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1
	}{
		{"NOT", hl.Not, [][]bool{{true, false}}},
		{"AND", hl.And, [][]bool{{false, false, false, true}}},
		{"NAND", hl.Nand, [][]bool{{true, true, true, false}}},
		{"OR", hl.Or, [][]bool{{false, true, true, true}}},
		{"NOR", hl.Nor, [][]bool{{true, false, false, false}}},
		{"XOR", hl.Xor, [][]bool{{false, true, true, false}}},
		{"XNOR", hl.Xnor, [][]bool{{true, false, false, true}}},
		{"NandXOR", nx, [][]bool{{false, true, true, false}}},
		{"TRUE", tr, [][]bool{{true, true}}},
		{"FALSE", fa, [][]bool{{false, false}}},
		{"MUX", hl.Mux, [][]bool{{false, false, false, true, true, false, true, true}}},
		{"DMUX", hl.DMux, [][]bool{{false, false, true, false}, {false, false, false, true}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

func Test_gateN_builtin(t *testing.T) {
	td := []struct {
		name string
		gate hw.Part
		ctrl func(a, b uint16) uint16
	}{
		{"AND16", hl.GateN("AND", 16, func(a, b bool) bool { return a && b })("a=a, b=b, out=out"), func(a, b uint16) uint16 { return a & b }},
		{"OR16", hl.GateN("OR", 16, func(a, b bool) bool { return a || b })("a=a, b=b, out=out"), func(a, b uint16) uint16 { return a | b }},
		{"NOR16", hl.GateN("NOR", 16, func(a, b bool) bool { return !(a || b) })("a=a, b=b, out=out"), func(a, b uint16) uint16 { return ^(a | b) }},
		{"NOT16", hl.NotN(16)("in=a, out=out"), func(a, b uint16) uint16 { return ^a }},
		{"MUX16", hl.MuxN(16)("a=a, b=b, sel=true, out=out"), func(a, b uint16) uint16 { return b }},
	}

	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			c, err := hw.NewCircuit("a[16], b[16]", "out[16]", d.gate)
			if err != nil {
				t.Fatal(err)
			}
			f := func(x, y uint16) bool {
				if err := c.SetInput("a", uint64(x)); err != nil {
					t.Fatal(err)
				}
				if err := c.SetInput("b", uint64(y)); err != nil {
					t.Fatal(err)
				}
				settle(c, 1)
				out, _ := c.Value("out")
				return uint16(out) == d.ctrl(x, y)
			}
			if err = quick.Check(f, nil); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestNWay(t *testing.T) {
	c, err := hw.NewCircuit("in[5]", "any, all",
		hl.OrNWay(5)("in=in, out=any"),
		hl.AndNWay(5)("in=in, out=all"),
	)
	if err != nil {
		t.Fatal(err)
	}
	for v := uint64(0); v < 32; v++ {
		if err = c.SetInput("in", v); err != nil {
			t.Fatal(err)
		}
		settle(c, 1)
		anyV, _ := c.Value("any")
		allV, _ := c.Value("all")
		if (anyV == 1) != (v != 0) || (allV == 1) != (v == 31) {
			t.Fatalf("in=%05b: any=%d all=%d", v, anyV, allV)
		}
	}
}
