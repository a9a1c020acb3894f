// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

// Tick is a unit of simulated logical time. Tick and model time advance 1:1.
// Overflow is not handled.
//
type Tick uint64

// TimeBase is a monotonic tick counter starting at 0.
//
type TimeBase struct {
	now Tick
}

// Now returns the current tick.
//
func (tb *TimeBase) Now() Tick { return tb.now }

// Advance increments the counter by exactly one tick.
//
func (tb *TimeBase) Advance() { tb.now++ }

// Termination is the policy limiting how far a run may go. The zero value
// runs until the model signals completion.
//
type Termination struct {
	Bounded bool
	Max     Tick
}

// Unbounded returns a policy that only stops when the model finishes.
//
func Unbounded() Termination { return Termination{} }

// UntilTick returns a policy that stops when the model finishes or at tick max,
// whichever comes first.
//
func UntilTick(max Tick) Termination { return Termination{Bounded: true, Max: max} }

// Allows returns true if the policy allows processing tick now. The model
// finished flag is checked separately by the engine.
//
func (p Termination) Allows(now Tick) bool {
	return !p.Bounded || now < p.Max
}
