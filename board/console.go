// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package board provides visualization boards for tbench simulations.
//
// A board is refreshed by the phase controller around reset transitions. The
// Console board prints the current value of the model signals as a single
// line per refresh:
//
//	[1] clk=0 rst=1 count=0x0 max=0
//
package board

import (
	"bufio"
	"io"
	"strconv"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

// Console is a text board printing model signals to an io.Writer.
//
type Console struct {
	w       *bufio.Writer
	c       io.Closer
	s       tbench.Snapshotter
	pins    map[string]bool
	buf     []tbench.Sample
	updates int
}

var _ tbench.Board = (*Console)(nil)

// NewConsole returns a board printing the signals of m to w. m must implement
// tbench.Snapshotter. If pins are given, only the named signals are printed.
// If w implements io.Closer, it is closed along with the board.
//
func NewConsole(w io.Writer, m tbench.Model, pins ...string) (*Console, error) {
	s, ok := m.(tbench.Snapshotter)
	if !ok {
		return nil, errors.Errorf("model %T has no observable signals", m)
	}
	c := &Console{w: bufio.NewWriter(w), s: s}
	if cl, ok := w.(io.Closer); ok {
		c.c = cl
	}
	if len(pins) > 0 {
		c.pins = make(map[string]bool, len(pins))
		for _, p := range pins {
			c.pins[p] = true
		}
	}
	return c, nil
}

// Opener returns a tbench.BoardOpener for a console board on w. The writer is
// not closed by the board.
//
func Opener(w io.Writer, pins ...string) tbench.BoardOpener {
	return func(m tbench.Model) (tbench.Board, error) {
		return NewConsole(struct{ io.Writer }{w}, m, pins...)
	}
}

// Updates returns the number of refreshes so far.
//
func (c *Console) Updates() int { return c.updates }

// Update implements tbench.Board.
//
func (c *Console) Update() error {
	c.updates++
	c.buf = c.s.Snapshot(c.buf[:0])
	b := make([]byte, 0, 64)
	b = append(b, '[')
	b = strconv.AppendInt(b, int64(c.updates), 10)
	b = append(b, ']')
	for _, smp := range c.buf {
		if c.pins != nil && !c.pins[smp.Name] {
			continue
		}
		b = append(b, ' ')
		b = append(b, smp.Name...)
		b = append(b, '=')
		if smp.Width == 1 {
			b = strconv.AppendUint(b, smp.Value, 10)
		} else {
			b = append(b, "0x"...)
			b = strconv.AppendUint(b, smp.Value, 16)
		}
	}
	b = append(b, '\n')
	if _, err := c.w.Write(b); err != nil {
		return err
	}
	return c.w.Flush()
}

// Close flushes the board and closes the underlying writer if it is an
// io.Closer.
//
func (c *Console) Close() error {
	err := c.w.Flush()
	if c.c != nil {
		if cerr := c.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
