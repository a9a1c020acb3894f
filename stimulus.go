// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import (
	"strconv"
)

// An Event is a scheduled, one-time input value change: Value is written to
// Port when the tick equals At.
//
type Event struct {
	Port  string
	At    Tick
	Value uint64
}

func (e Event) String() string {
	return e.Port + "=" + strconv.FormatUint(e.Value, 10) + "@" + strconv.FormatUint(uint64(e.At), 10)
}

// Schedule is an immutable set of stimulus events indexed by tick.
//
// Events sharing a tick are applied in declaration order. There is no catch-up:
// an event is only ever applied at its own tick.
//
type Schedule struct {
	byTick map[Tick][]Event
	count  int
}

// NewSchedule builds a schedule from the given events. Two events targeting
// the same port at the same tick are rejected with a ConfigError.
//
func NewSchedule(events []Event) (*Schedule, error) {
	return newSchedule("events", events)
}

func newSchedule(field string, events []Event) (*Schedule, error) {
	s := &Schedule{byTick: make(map[Tick][]Event), count: len(events)}
	type key struct {
		port string
		at   Tick
	}
	seen := make(map[key]int, len(events))
	for i, e := range events {
		if e.Port == "" {
			return nil, configErrorf(field, "event #%d: empty port name", i)
		}
		k := key{e.Port, e.At}
		if j, ok := seen[k]; ok {
			return nil, configErrorf(field, "events #%d and #%d both drive port %q at tick %d", j, i, e.Port, e.At)
		}
		seen[k] = i
		s.byTick[e.At] = append(s.byTick[e.At], e)
	}
	return s, nil
}

// Len returns the number of events in the schedule.
//
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Due returns the events scheduled at exactly tick, in declaration order.
// The returned slice must not be modified.
//
func (s *Schedule) Due(tick Tick) []Event {
	if s == nil {
		return nil
	}
	return s.byTick[tick]
}

// ApplyDue writes every event due at tick to the model and returns them.
// On error, the events applied so far are returned along with the error.
//
func (s *Schedule) ApplyDue(tick Tick, m Model) ([]Event, error) {
	due := s.Due(tick)
	for i, e := range due {
		if err := m.SetInput(e.Port, e.Value); err != nil {
			return due[:i], err
		}
	}
	return due, nil
}
