// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim_test

import (
	"strings"
	"testing"

	hw "github.com/db47h/tbench/hwsim"
	hl "github.com/db47h/tbench/hwlib"
)

func TestCircuit_propagation(t *testing.T) {
	// a chain of 3 inverters needs 3 steps to settle.
	c, err := hw.NewCircuit("in", "out",
		hl.Not("in=in, out=w0"),
		hl.Not("in=w0, out=w1"),
		hl.Not("in=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size() != 3 {
		t.Fatalf("expected 3 components, got %d", c.Size())
	}
	for i := 0; i < 3; i++ {
		c.Step()
	}
	if v, _ := c.Value("out"); v != 1 {
		t.Fatalf("expected out = 1 with in = 0, got %d", v)
	}
	if err = c.SetInput("in", 1); err != nil {
		t.Fatal(err)
	}
	var seen []uint64
	for i := 0; i < 4; i++ {
		c.Step()
		v, _ := c.Value("out")
		seen = append(seen, v)
	}
	exp := []uint64{1, 1, 0, 0}
	for i := range exp {
		if seen[i] != exp[i] {
			t.Fatalf("expected %v, got %v", exp, seen)
		}
	}
	if c.Steps() != 7 {
		t.Fatalf("expected 7 steps, got %d", c.Steps())
	}
}

func TestCircuit_ports(t *testing.T) {
	c, err := hw.NewCircuit("clk, data[4]", "q[4]",
		hl.DFFN(4)("in=data, clk=clk, out=q"),
	)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range c.Ports() {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "clk,data,q" {
		t.Fatalf("unexpected ports %s", got)
	}
	if p, ok := c.Port("data"); !ok || !p.Input || p.Width() != 4 {
		t.Fatalf("unexpected data port %+v", p)
	}
	if p, ok := c.Port("q"); !ok || p.Input || p.Width() != 4 {
		t.Fatalf("unexpected q port %+v", p)
	}

	for _, d := range []struct {
		port string
		v    uint64
		err  string
	}{
		{"data", 15, ""},
		{"data", 16, "does not fit in 4 bit port"},
		{"clk", 2, "does not fit in 1 bit port"},
		{"q", 1, "not an input"},
		{"nope", 0, "unknown port"},
	} {
		err := c.SetInput(d.port, d.v)
		switch {
		case d.err == "" && err != nil:
			t.Errorf("%s=%d: unexpected error %v", d.port, d.v, err)
		case d.err != "" && (err == nil || !strings.Contains(err.Error(), d.err)):
			t.Errorf("%s=%d: expected error %q, got %v", d.port, d.v, d.err, err)
		}
	}
	if _, err = c.Value("nope"); err == nil {
		t.Fatal("expected an error for an unknown port")
	}
}

func TestChip_errors(t *testing.T) {
	td := []struct {
		name  string
		in    string
		out   string
		parts []hw.Part
		err   string
	}{
		{"constant", "a", "out", []hw.Part{hl.Not("in=a, out=true")}, "connected to constant"},
		{"drives input", "a", "out", []hw.Part{hl.Not("in=out, out=a"), hl.Not("in=a, out=out")}, "drives chip input"},
		{"two drivers", "a", "out", []hw.Part{hl.Not("in=a, out=out"), hl.Not("in=a, out=out")}, "driven by both"},
		{"floating", "a", "out", []hw.Part{hl.Not("in=w, out=out")}, "not connected to any output"},
		{"undriven output", "a", "out, x", []hw.Part{hl.Not("in=a, out=out")}, "output x not connected"},
		{"bad pin", "a", "out", []hw.Part{hl.Not("input=a, out=out")}, "invalid pin name input"},
		{"twice", "a", "out", []hw.Part{hl.And("a=a, a=a, out=out")}, "connected more than once"},
		{"width", "a[2]", "out[3]", []hw.Part{hl.NotN(3)("in=a[0..1], out=out")}, "pin count mismatch"},
		{"syntax", "a", "out", []hw.Part{hl.Not("in=a out=out")}, "unexpected identifier"},
		{"io", "a", "a", []hw.Part{hl.Not("in=a, out=a")}, "both an input and an output"},
		{"bad io", "a[", "out", []hw.Part{hl.Not("in=a, out=out")}, "integer value expected"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := hw.Chip("test", d.in, d.out, d.parts...)
			if err == nil || !strings.Contains(err.Error(), d.err) {
				t.Fatalf("expected error %q, got %v", d.err, err)
			}
		})
	}
	if _, err := hw.NewCircuit("a", "b"); err == nil {
		t.Fatal("expected an error for an empty circuit")
	}
}

func TestChip_nested(t *testing.T) {
	// two instances of the same chip get private internal wires.
	buf, err := hw.Chip("BUF", "in", "out",
		hl.Not("in=in, out=n"),
		hl.Not("in=n, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	c, err := hw.NewCircuit("a, b", "x, y",
		buf("in=a, out=x"),
		buf("in=b, out=y"),
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range [][2]uint64{{0, 1}, {1, 0}, {1, 1}} {
		if err = c.SetInput("a", v[0]); err != nil {
			t.Fatal(err)
		}
		if err = c.SetInput("b", v[1]); err != nil {
			t.Fatal(err)
		}
		c.Step()
		c.Step()
		x, _ := c.Value("x")
		y, _ := c.Value("y")
		if x != v[0] || y != v[1] {
			t.Fatalf("a=%d b=%d: x=%d y=%d", v[0], v[1], x, y)
		}
	}
}

func TestIO(t *testing.T) {
	if got := strings.Join(hw.IO("a, b[2]"), ","); got != "a,b[0],b[1]" {
		t.Fatalf("unexpected expansion %s", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("IO did not panic on a syntax error")
		}
	}()
	hw.IO("a[")
}
