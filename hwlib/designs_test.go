// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"testing"

	hl "github.com/db47h/tbench/hwlib"
)

func TestDesigns(t *testing.T) {
	ds := hl.Designs()
	if len(ds) == 0 {
		t.Fatal("no built-in design")
	}
	for i, d := range ds {
		if i > 0 && ds[i-1].Name >= d.Name {
			t.Fatalf("designs not sorted: %s before %s", ds[i-1].Name, d.Name)
		}
		c, err := d.New()
		if err != nil {
			t.Fatalf("%s: %v", d.Name, err)
		}
		if len(c.Ports()) == 0 {
			t.Fatalf("%s: no ports", d.Name)
		}
		if l, ok := hl.LookupDesign(d.Name); !ok || l.Name != d.Name {
			t.Fatalf("lookup %s failed", d.Name)
		}
	}
	if _, ok := hl.LookupDesign("nope"); ok {
		t.Fatal("unknown design found")
	}
}

func TestDesign_blinky(t *testing.T) {
	d, _ := hl.LookupDesign("blinky")
	c, err := d.New()
	if err != nil {
		t.Fatal(err)
	}
	set(t, c, "rst", 1)
	tick(t, c)
	if v := value(t, c, "led"); v != 0 {
		t.Fatalf("led on during reset")
	}
	set(t, c, "rst", 0)
	for i := uint64(1); i <= 6; i++ {
		tick(t, c)
		if v := value(t, c, "led"); v != i&1 {
			t.Fatalf("cycle %d: led = %d", i, v)
		}
	}
}

func TestDesign_adder(t *testing.T) {
	d, _ := hl.LookupDesign("adder")
	c, err := d.New()
	if err != nil {
		t.Fatal(err)
	}
	set(t, c, "a", 200)
	set(t, c, "b", 100)
	settle(c, 1)
	if v := value(t, c, "out"); v != 300&0xff {
		t.Fatalf("expected %d, got %d", 300&0xff, v)
	}
	if v := value(t, c, "c"); v != 1 {
		t.Fatal("carry not set")
	}
}
