// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/db47h/tbench/hwsim"
)

func connString(pins ...[]string) string {
	var b strings.Builder
	for _, ps := range pins {
		for _, n := range ps {
			if b.Len() > 0 {
				b.WriteRune(',')
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(n)
		}
	}
	return b.String()
}

// pinList turns expanded pin names back into a pin description.
func pinList(in []string) string {
	width := make(map[string]int)
	var names []string
	for _, n := range in {
		b := strings.IndexRune(n, '[')
		if b < 0 {
			names = append(names, n)
			continue
		}
		bn := n[:b]
		idx, err := strconv.Atoi(n[b+1 : strings.IndexRune(n, ']')])
		if err != nil {
			panic(err)
		}
		if _, ok := width[bn]; !ok {
			names = append(names, bn)
		}
		if idx+1 > width[bn] {
			width[bn] = idx + 1
		}
	}
	for i, n := range names {
		if w, ok := width[n]; ok {
			names[i] = n + "[" + strconv.Itoa(w) + "]"
		}
	}
	return strings.Join(names, ", ")
}

// ComparePart takes two parts and compares their outputs given the same
// inputs. Both parts must have the same Input/Output interface. Each input
// vector is held for settle steps before outputs are compared.
//
func ComparePart(t *testing.T, settle int, part1, part2 hwsim.NewPartFn) {
	t.Helper()

	spec := part1("")
	if spec.PartSpec == nil {
		t.Fatal("nil part spec")
	}
	conns := connString(spec.Inputs, spec.Outputs)
	p1, p2 := part1(conns), part2(conns)
	if strings.Join(p1.Inputs, ",") != strings.Join(p2.Inputs, ",") {
		t.Fatalf("inputs differ: %v != %v", p1.Inputs, p2.Inputs)
	}
	if strings.Join(p1.Outputs, ",") != strings.Join(p2.Outputs, ",") {
		t.Fatalf("outputs differ: %v != %v", p1.Outputs, p2.Outputs)
	}

	ins, outs := pinList(p1.Inputs), pinList(p1.Outputs)
	c1, err := hwsim.NewCircuit(ins, outs, p1)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := hwsim.NewCircuit(ins, outs, p2)
	if err != nil {
		t.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(int64(len(conns))))
	iter := len(p1.Inputs)
	if iter > 12 {
		iter = 12
	}
	iter = 1 << uint(iter)

	check := func(vec func(w int) uint64) {
		var in strings.Builder
		for _, p := range c1.Ports() {
			if !p.Input {
				continue
			}
			v := vec(p.Width())
			if err := c1.SetInput(p.Name, v); err != nil {
				t.Fatal(err)
			}
			if err := c2.SetInput(p.Name, v); err != nil {
				t.Fatal(err)
			}
			in.WriteString(" " + p.Name + "=" + strconv.FormatUint(v, 10))
		}
		for i := 0; i < settle; i++ {
			c1.Step()
			c2.Step()
		}
		for _, p := range c1.Ports() {
			if p.Input {
				continue
			}
			v1, _ := c1.Value(p.Name)
			v2, _ := c2.Value(p.Name)
			if v1 != v2 {
				t.Fatalf("inputs%s: expected %s=%d, got %d", in.String(), p.Name, v1, v2)
			}
		}
	}

	mask := func(w int) uint64 {
		if w >= 64 {
			return ^uint64(0)
		}
		return 1<<uint(w) - 1
	}
	check(func(int) uint64 { return 0 })
	check(mask)
	for i := 0; i < iter; i++ {
		check(func(w int) uint64 { return rnd.Uint64() & mask(w) })
	}
}
