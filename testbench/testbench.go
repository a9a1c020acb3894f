// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package testbench loads test bench descriptions from CSV files.
//
// The first row is a header and is ignored. Each following row may carry up
// to three independent entries:
//
//	column  1-3: INITIAL block event (time, pin, value), note in column 4
//	column  6-8: FOREVER block event (time, pin, value), note in column 9
//	column 10-11: configuration (name, value), note in column 12
//
// Entries with an empty field are skipped. Times are integers, values accept
// the 0x, 0b and 0o prefixes.
//
package testbench

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

const (
	colInitial = 1
	colForever = 6
	colConfig  = 10
)

type entry struct {
	line  int
	time  string
	pin   string
	value string
}

// config holds the CSV level settings that do not map 1:1 to tbench.Config.
type config struct {
	tbench.Config
	clockInput bool
	clockPin   string
}

func setBool(p *bool, v string) (err error) {
	*p, err = parseBool(v)
	return err
}

func setString(p *string, v string) error {
	*p = v
	return nil
}

func setTick(p *tbench.Tick, v string) (err error) {
	n, err := strconv.ParseUint(v, 0, 64)
	*p = tbench.Tick(n)
	return err
}

// settings maps lower case configuration names to setters.
var settings = map[string]func(c *config, v string) error{
	"enable limit time stimulation":    func(c *config, v string) error { return setBool(&c.LimitRun, v) },
	"max stimulate time":               func(c *config, v string) error { return setTick(&c.MaxRunTicks, v) },
	"half clock cycle":                 func(c *config, v string) error { return setTick(&c.ClockHalfPeriod, v) },
	"enable clock input":               func(c *config, v string) error { return setBool(&c.clockInput, v) },
	"clock pin name":                   func(c *config, v string) error { return setString(&c.clockPin, v) },
	"enable initial block":             func(c *config, v string) error { return setBool(&c.InitialEnabled, v) },
	"initial block reset time":         func(c *config, v string) error { return setTick(&c.InitialBound1, v) },
	"initial block max stimulate time": func(c *config, v string) error { return setTick(&c.InitialBound2, v) },
	"reset pin name":                   func(c *config, v string) error { return setString(&c.ResetPort, v) },
	"enable forever block":             func(c *config, v string) error { return setBool(&c.SteadyEnabled, v) },
	"forever block cycle":              func(c *config, v string) error { return setTick(&c.SteadyBurstTicks, v) },
	"enable wavefrom acquisition":      func(c *config, v string) error { return setBool(&c.TraceEnabled, v) },
	"enable waveform acquisition":      func(c *config, v string) error { return setBool(&c.TraceEnabled, v) },
	"wave file":                        func(c *config, v string) error { return setString(&c.TracePath, v) },
	"wave format":                      func(c *config, v string) error { return setString(&c.TraceFormat, v) },
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, errors.Errorf("invalid boolean %q", v)
}

// Read parses a test bench from r and returns the corresponding simulation
// configuration. Events dropped because they fall outside of their block are
// reported as warnings on logger. A nil logger uses slog.Default().
//
// Only the events of enabled blocks are returned. The returned configuration
// has been validated.
//
func Read(r io.Reader, logger *slog.Logger) (tbench.Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var initial, forever []entry
	c := config{Config: tbench.DefaultConfig(), clockPin: "clk"}
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tbench.Config{}, errors.Wrap(err, "read testbench")
		}
		if line == 1 {
			continue
		}
		if e, ok := field3(row, colInitial, line); ok {
			initial = append(initial, e)
		}
		if e, ok := field3(row, colForever, line); ok {
			forever = append(forever, e)
		}
		name, value := field(row, colConfig), field(row, colConfig+1)
		if name == "" || value == "" {
			continue
		}
		set, ok := settings[strings.ToLower(name)]
		if !ok {
			return tbench.Config{}, errors.Errorf("line %d: unknown configuration %q", line, name)
		}
		if err = set(&c, value); err != nil {
			return tbench.Config{}, errors.Wrapf(err, "line %d: configuration %q", line, name)
		}
	}

	cfg := c.Config
	if c.clockInput {
		cfg.ClockPort = c.clockPin
	}
	var err error
	if cfg.InitialEnabled {
		if cfg.Events, err = events("INITIAL", initial, cfg.InitialBound2, logger); err != nil {
			return tbench.Config{}, err
		}
	}
	if cfg.SteadyEnabled {
		if cfg.BurstEvents, err = events("FOREVER", forever, cfg.SteadyBurstTicks, logger); err != nil {
			return tbench.Config{}, err
		}
	}
	if err = cfg.Validate(); err != nil {
		return tbench.Config{}, err
	}
	return cfg, nil
}

// ReadFile loads the test bench in file name.
//
func ReadFile(name string, logger *slog.Logger) (tbench.Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return tbench.Config{}, err
	}
	defer f.Close()
	cfg, err := Read(f, logger)
	return cfg, errors.Wrap(err, name)
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func field3(row []string, col, line int) (entry, bool) {
	e := entry{line, field(row, col), field(row, col+1), field(row, col+2)}
	return e, e.time != "" && e.pin != "" && e.value != ""
}

// events converts the entries of a block into events. Events at or after
// bound are dropped. Pins without an assignment at time 0 are set to 0 at
// time 0.
func events(block string, es []entry, bound tbench.Tick, logger *slog.Logger) ([]tbench.Event, error) {
	type key struct {
		pin string
		at  tbench.Tick
	}
	var (
		out  []tbench.Event
		seen = make(map[key]bool)
		used = make(map[string]bool)
		pins []string
	)
	for _, e := range es {
		at, err := strconv.ParseUint(e.time, 10, 64)
		if err != nil {
			return nil, errors.Errorf("line %d: %s block: time %q is not a valid integer", e.line, block, e.time)
		}
		v, err := strconv.ParseUint(e.value, 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: %s block: value of pin %s", e.line, block, e.pin)
		}
		if tbench.Tick(at) >= bound {
			logger.Warn("event dropped: time past block bound", "block", block, "line", e.line, "pin", e.pin, "time", at, "bound", uint64(bound))
			continue
		}
		k := key{e.pin, tbench.Tick(at)}
		if seen[k] {
			return nil, errors.Errorf("line %d: %s block: pin %s assigned more than once at time %d", e.line, block, e.pin, at)
		}
		seen[k] = true
		if !used[e.pin] {
			used[e.pin] = true
			pins = append(pins, e.pin)
		}
		out = append(out, tbench.Event{Port: e.pin, At: tbench.Tick(at), Value: v})
	}
	var zero []tbench.Event
	for _, p := range pins {
		if !seen[key{p, 0}] {
			zero = append(zero, tbench.Event{Port: p})
		}
	}
	out = append(zero, out...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out, nil
}
