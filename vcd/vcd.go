// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd implements a tbench trace sink writing Value Change Dump files.
//
// The header is written on the first dump, from the signals returned by the
// model's Snapshot method. Following dumps only write the signals whose value
// changed, and nothing at all when no signal changed.
//
package vcd

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

// Writer is a VCD trace sink.
//
type Writer struct {
	w      *bufio.Writer
	c      io.Closer
	m      tbench.Snapshotter
	ts     string
	scope  string
	ids    []string
	prev   []tbench.Sample
	cur    []tbench.Sample
	header bool
	err    error
}

var _ tbench.Sink = (*Writer)(nil)

// Option configures a Writer.
//
type Option func(*Writer)

// Timescale sets the duration of one tick. Defaults to "1ns".
//
func Timescale(ts string) Option {
	return func(w *Writer) { w.ts = ts }
}

// Scope sets the name of the module scope holding all signals. Defaults to
// "top".
//
func Scope(name string) Option {
	return func(w *Writer) { w.scope = name }
}

// NewWriter returns a Writer dumping the signals of m to w. If w implements
// io.Closer, it is closed by Close.
//
func NewWriter(w io.Writer, m tbench.Snapshotter, opts ...Option) *Writer {
	vw := &Writer{w: bufio.NewWriter(w), m: m, ts: "1ns", scope: "top"}
	if c, ok := w.(io.Closer); ok {
		vw.c = c
	}
	for _, o := range opts {
		o(vw)
	}
	return vw
}

// Create creates the named file and returns a Writer for it.
//
func Create(name string, m tbench.Snapshotter, opts ...Option) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewWriter(f, m, opts...), nil
}

// Open is a tbench.SinkFunc creating a VCD file at cfg.TracePath.
//
func Open(cfg *tbench.Config, m tbench.Model) (tbench.Sink, error) {
	s, ok := m.(tbench.Snapshotter)
	if !ok {
		return nil, errors.Errorf("model %T does not support snapshots", m)
	}
	return Create(cfg.TracePath, s)
}

// id returns the identifier code of signal n.
func id(n int) string {
	const first, count = '!', '~' - '!' + 1
	var b []byte
	for {
		b = append(b, byte(first+n%count))
		n /= count
		if n == 0 {
			return string(b)
		}
		n--
	}
}

func (w *Writer) write(ss ...string) {
	for _, s := range ss {
		if w.err != nil {
			return
		}
		_, w.err = w.w.WriteString(s)
	}
}

func (w *Writer) value(s tbench.Sample, id string) {
	if s.Width == 1 {
		w.write(strconv.FormatUint(s.Value&1, 10), id, "\n")
		return
	}
	w.write("b", strconv.FormatUint(s.Value, 2), " ", id, "\n")
}

func (w *Writer) writeHeader() {
	w.write("$version tbench $end\n",
		"$timescale ", w.ts, " $end\n",
		"$scope module ", w.scope, " $end\n")
	for i, s := range w.cur {
		w.ids = append(w.ids, id(i))
		w.write("$var wire ", strconv.Itoa(s.Width), " ", w.ids[i], " ", s.Name)
		if s.Width > 1 {
			w.write(" [", strconv.Itoa(s.Width-1), ":0]")
		}
		w.write(" $end\n")
	}
	w.write("$upscope $end\n", "$enddefinitions $end\n")
}

// Dump implements tbench.Sink.
//
func (w *Writer) Dump(t tbench.Tick) error {
	if w.err != nil {
		return w.err
	}
	w.cur = w.m.Snapshot(w.cur[:0])
	ts := "#" + strconv.FormatUint(uint64(t), 10) + "\n"
	if !w.header {
		w.header = true
		w.writeHeader()
		w.write(ts, "$dumpvars\n")
		for i, s := range w.cur {
			w.value(s, w.ids[i])
		}
		w.write("$end\n")
	} else {
		if len(w.cur) != len(w.prev) {
			w.err = errors.Errorf("signal count changed from %d to %d at tick %d", len(w.prev), len(w.cur), t)
			return w.err
		}
		stamped := false
		for i, s := range w.cur {
			if s.Value == w.prev[i].Value {
				continue
			}
			if !stamped {
				w.write(ts)
				stamped = true
			}
			w.value(s, w.ids[i])
		}
	}
	w.prev, w.cur = w.cur, w.prev
	return w.err
}

// Close flushes buffered data and closes the underlying writer.
//
func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.err != nil {
		err = w.err
	}
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
		w.c = nil
	}
	return errors.WithStack(err)
}
