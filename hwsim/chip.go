// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"github.com/db47h/tbench/internal/hdl"
	"github.com/pkg/errors"
)

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := hwsim.Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned NewPartFn can be used to compose the new part with others:
//
//	xnor, err := hwsim.Chip("XNOR", "a, b", "out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
func Chip(name string, inputs, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := hdl.ParseIO(inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "chip %s inputs", name)
	}
	outs, err := hdl.ParseIO(outputs)
	if err != nil {
		return nil, errors.Wrapf(err, "chip %s outputs", name)
	}
	spec, err := chip(name, ins, outs, parts)
	if err != nil {
		return nil, err
	}
	return spec.NewPart, nil
}

const (
	pinInternal = iota
	pinInput
	pinOutput
)

func chip(name string, ins, outs []string, parts []Part) (*PartSpec, error) {
	kind := make(map[string]int, len(ins)+len(outs))
	for _, n := range ins {
		kind[n] = pinInput
	}
	for _, n := range outs {
		if _, ok := kind[n]; ok {
			return nil, errors.Errorf("chip %s: pin %s is both an input and an output", name, n)
		}
		kind[n] = pinOutput
	}

	// wire name to the part pin driving it
	driven := make(map[string]string)
	for _, p := range parts {
		if p.PartSpec == nil {
			return nil, errors.Errorf("chip %s: nil part", name)
		}
		if p.err != nil {
			return nil, errors.Wrapf(p.err, "chip %s", name)
		}
		for _, k := range p.Outputs {
			v, ok := p.wires[k]
			if !ok {
				continue
			}
			switch {
			case isConstant(v):
				return nil, errors.Errorf("chip %s: output %s.%s connected to constant %s", name, p.Name, k, v)
			case kind[v] == pinInput:
				return nil, errors.Errorf("chip %s: output %s.%s drives chip input %s", name, p.Name, k, v)
			}
			if d, ok := driven[v]; ok {
				return nil, errors.Errorf("chip %s: wire %s driven by both %s and %s.%s", name, v, d, p.Name, k)
			}
			driven[v] = p.Name + "." + k
		}
	}
	for _, p := range parts {
		for _, k := range p.Inputs {
			v, ok := p.wires[k]
			if !ok || isConstant(v) || kind[v] == pinInput {
				continue
			}
			if _, ok := driven[v]; !ok {
				return nil, errors.Errorf("chip %s: pin %s (%s.%s) not connected to any output", name, v, p.Name, k)
			}
		}
	}
	for _, o := range outs {
		if _, ok := driven[o]; !ok {
			return nil, errors.Errorf("chip %s: output %s not connected to any part output", name, o)
		}
	}

	return &PartSpec{
		Name:    name,
		Inputs:  ins,
		Outputs: outs,
		Mount: func(s *Socket) []Component {
			var cs []Component
			for _, p := range parts {
				cs = append(cs, s.mount(p)...)
			}
			return cs
		},
	}, nil
}
