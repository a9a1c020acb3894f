// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

// Clock derives a square wave from the tick counter. The signal starts low
// and flips on every tick that is a multiple of the half period.
//
// A half period of 1 toggles on every tick, so both edges are never observed
// within a single tick; use 2 or more for a proper square wave.
//
type Clock struct {
	half  Tick
	state bool
}

// NewClock returns a clock with the given half period. The half period must be
// at least 1 (see Config.Validate).
//
func NewClock(half Tick) Clock {
	if half < 1 {
		panic("clock half period must be >= 1")
	}
	return Clock{half: half}
}

// HalfPeriod returns the clock half period in ticks.
//
func (c *Clock) HalfPeriod() Tick { return c.half }

// State returns the current clock level.
//
func (c *Clock) State() bool { return c.state }

// ToggleIfDue flips the clock if tick is a multiple of the half period. It
// returns the (possibly new) state and whether a toggle occurred.
//
func (c *Clock) ToggleIfDue(tick Tick) (state bool, toggled bool) {
	if ClockEdge(tick, c.half) {
		c.state = !c.state
		toggled = true
	}
	return c.state, toggled
}

// ClockEdge returns true if a clock with the given half period toggles at tick.
//
func ClockEdge(tick, half Tick) bool {
	return tick%half == 0
}

// ClockLevel returns the level of a clock with the given half period once
// tick has been processed. It is the closed form of repeated ToggleIfDue calls
// over ticks 0 to tick: the clock has toggled tick/half+1 times.
//
func ClockLevel(tick, half Tick) bool {
	return (tick/half)&1 == 0
}
