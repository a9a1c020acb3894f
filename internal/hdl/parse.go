// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl parses the pin descriptions and connection strings used to
// build circuits.
//
// A pin description is a comma separated list of pin names where buses are
// declared with their width:
//
//	a, b, bus[4]
//
// A connection string maps pins of a part to pins of its container:
//
//	a=x, b=y[2], out[0..3]=bus[4..7]
//
// A colon can be used instead of the equal sign.
//
package hdl

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type token int

const (
	tokEOF token = iota
	tokIdent
	tokInt
	tokOpen  // [
	tokClose // ]
	tokRange // ..
	tokComma
	tokEqual
)

var tokNames = [...]string{"end of input", "identifier", "integer", "'['", "']'", "'..'", "','", "'='"}

func (t token) String() string { return tokNames[t] }

type item struct {
	tok token
	pos int
	val string
}

type scanner struct {
	in  string
	pos int
}

func isLetter(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func (s *scanner) next() (item, error) {
	for s.pos < len(s.in) && strings.IndexByte(" \t\r\n", s.in[s.pos]) >= 0 {
		s.pos++
	}
	start := s.pos
	if s.pos >= len(s.in) {
		return item{tokEOF, start, ""}, nil
	}
	c := s.in[s.pos]
	s.pos++
	switch {
	case c == '[':
		return item{tokOpen, start, "["}, nil
	case c == ']':
		return item{tokClose, start, "]"}, nil
	case c == ',':
		return item{tokComma, start, ","}, nil
	case c == '=' || c == ':':
		return item{tokEqual, start, "="}, nil
	case c == '.':
		if s.pos < len(s.in) && s.in[s.pos] == '.' {
			s.pos++
			return item{tokRange, start, ".."}, nil
		}
	case isDigit(c):
		for s.pos < len(s.in) && isDigit(s.in[s.pos]) {
			s.pos++
		}
		return item{tokInt, start, s.in[start:s.pos]}, nil
	case isLetter(c):
		for s.pos < len(s.in) && (isLetter(s.in[s.pos]) || isDigit(s.in[s.pos])) {
			s.pos++
		}
		return item{tokIdent, start, s.in[start:s.pos]}, nil
	}
	return item{}, parseError(s.in, start, "unexpected character "+strconv.QuoteRune(rune(c)))
}

// Pin is a pin reference in a description or connection string. Start and
// End are -1 for plain names. An indexed pin p[i] has Start == End == i.
//
type Pin struct {
	Name  string
	Start int
	End   int
	Pos   int
}

// Plain returns true if p has no index or range.
//
func (p Pin) Plain() bool { return p.Start < 0 }

// Names expands p into individual pin names.
//
func (p Pin) Names() []string {
	if p.Plain() {
		return []string{p.Name}
	}
	step := 1
	if p.End < p.Start {
		step = -1
	}
	var r []string
	for i := p.Start; ; i += step {
		r = append(r, BusPinName(p.Name, i))
		if i == p.End {
			return r
		}
	}
}

func (p Pin) String() string {
	switch {
	case p.Plain():
		return p.Name
	case p.Start == p.End:
		return BusPinName(p.Name, p.Start)
	}
	return p.Name + "[" + strconv.Itoa(p.Start) + ".." + strconv.Itoa(p.End) + "]"
}

// BusPinName returns the name of pin i in bus.
//
func BusPinName(bus string, i int) string {
	return bus + "[" + strconv.Itoa(i) + "]"
}

type parser struct {
	s   scanner
	cur item
}

func (p *parser) advance() error {
	var err error
	p.cur, err = p.s.next()
	return err
}

func (p *parser) pin() (Pin, error) {
	if p.cur.tok != tokIdent {
		return Pin{}, parseError(p.s.in, p.cur.pos, "expected pin name, got "+p.cur.tok.String())
	}
	pin := Pin{Name: p.cur.val, Start: -1, End: -1, Pos: p.cur.pos}
	if err := p.advance(); err != nil {
		return pin, err
	}
	if p.cur.tok != tokOpen {
		return pin, nil
	}
	if err := p.advance(); err != nil {
		return pin, err
	}
	n, err := p.int("after '['")
	if err != nil {
		return pin, err
	}
	pin.Start, pin.End = n, n
	if p.cur.tok == tokRange {
		if err = p.advance(); err != nil {
			return pin, err
		}
		if pin.End, err = p.int("after '..'"); err != nil {
			return pin, err
		}
	}
	if p.cur.tok != tokClose {
		return pin, parseError(p.s.in, p.cur.pos, "closing ']' expected after index or range")
	}
	return pin, p.advance()
}

func (p *parser) int(where string) (int, error) {
	if p.cur.tok != tokInt {
		return 0, parseError(p.s.in, p.cur.pos, "integer value expected "+where)
	}
	n, err := strconv.Atoi(p.cur.val)
	if err != nil {
		return 0, parseError(p.s.in, p.cur.pos, err.Error())
	}
	return n, p.advance()
}

// separator consumes a comma or reports whether the end of input is reached.
func (p *parser) separator() (done bool, err error) {
	switch p.cur.tok {
	case tokEOF:
		return true, nil
	case tokComma:
		return false, p.advance()
	}
	return false, parseError(p.s.in, p.cur.pos, "unexpected "+p.cur.tok.String())
}

func newParser(in string) (*parser, error) {
	p := &parser{s: scanner{in: in}}
	return p, p.advance()
}

// ParseIO parses a pin description and returns the expanded pin names. A bus
// declared as bus[n] expands to bus[0] through bus[n-1].
//
func ParseIO(in string) ([]string, error) {
	p, err := newParser(in)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]bool)
	for done := p.cur.tok == tokEOF; !done; {
		pin, err := p.pin()
		if err != nil {
			return nil, err
		}
		var ns []string
		switch {
		case pin.Plain():
			ns = []string{pin.Name}
		case pin.Start != pin.End:
			return nil, parseError(in, pin.Pos, "bus width expected, got a range")
		case pin.Start < 1:
			return nil, parseError(in, pin.Pos, "bus width must be at least 1")
		default:
			for i := 0; i < pin.Start; i++ {
				ns = append(ns, BusPinName(pin.Name, i))
			}
		}
		for _, n := range ns {
			if seen[n] {
				return nil, parseError(in, pin.Pos, "duplicate pin name "+n)
			}
			seen[n] = true
		}
		names = append(names, ns...)
		if done, err = p.separator(); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// Connection connects a pin of a part to a pin of its container.
//
type Connection struct {
	Part Pin
	Chip Pin
}

// ParseConnections parses a connection string. Ranges are not expanded here
// since bus widths are only known by the part specifications.
//
func ParseConnections(in string) ([]Connection, error) {
	p, err := newParser(in)
	if err != nil {
		return nil, err
	}
	var cs []Connection
	for done := p.cur.tok == tokEOF; !done; {
		lhs, err := p.pin()
		if err != nil {
			return nil, err
		}
		if p.cur.tok != tokEqual {
			return nil, parseError(in, p.cur.pos, "expected '=' after part pin, got "+p.cur.tok.String())
		}
		if err = p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.pin()
		if err != nil {
			return nil, err
		}
		cs = append(cs, Connection{lhs, rhs})
		if done, err = p.separator(); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
