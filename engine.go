// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// State is the state of an Engine.
//
type State int

// Engine states.
const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "terminated"
}

// Reason tells why an engine terminated.
//
type Reason int

// Termination reasons.
const (
	NotTerminated Reason = iota // engine still running
	ModelFinished               // the model raised its finished flag
	MaxTicks                    // the tick limit was reached
	Stopped                     // an external stop predicate fired
	Fault                       // a model or sink error occurred
	Completed                   // all phases ran to their bounds (Result only)
)

var reasonNames = [...]string{"running", "finished", "max_ticks", "stopped", "fault", "completed"}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Engine is the stepping engine. It owns the time base, the clock, the
// stimulus schedules and, for the duration of a run, the model and trace
// sink.
//
// Each tick, in this order: check termination, toggle the clock if due, write
// the clock to the clock port, apply due stimulus, evaluate the model, dump the
// trace, advance time.
//
// An Engine is not safe for concurrent use. Build one per run.
//
type Engine struct {
	model   Model
	sink    Sink // nil when tracing is disabled
	sched   *Schedule
	burst   *Schedule
	clk     Clock
	clkPort string
	tb      TimeBase
	term    Termination
	stop    func() bool

	state  State
	reason Reason

	burstOn    bool
	burstStart Tick

	evals   uint64
	applied uint64
	digest  hash.Hash
	buf     [8]byte
}

// EngineConfig holds the parameters of an Engine.
//
type EngineConfig struct {
	HalfPeriod  Tick
	ClockPort   string // "" leaves the clock unwired
	Termination Termination
	Schedule    *Schedule // absolute tick events, may be nil
	Burst       *Schedule // events relative to the current burst start, may be nil
	Sink        Sink      // nil disables tracing
	// Stop is an additional termination predicate checked together with the
	// termination policy, once per tick. May be nil.
	Stop func() bool
}

// NewEngine returns a new engine driving m.
//
func NewEngine(m Model, cfg EngineConfig) (*Engine, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	if cfg.HalfPeriod < 1 {
		return nil, configErrorf("clock_half_period", "must be >= 1, got %d", cfg.HalfPeriod)
	}
	d, err := blake2b.New256(nil)
	if err != nil {
		return nil, errors.Wrap(err, "digest")
	}
	return &Engine{
		model:   m,
		sink:    cfg.Sink,
		sched:   cfg.Schedule,
		burst:   cfg.Burst,
		clk:     NewClock(cfg.HalfPeriod),
		clkPort: cfg.ClockPort,
		term:    cfg.Termination,
		stop:    cfg.Stop,
		digest:  d,
	}, nil
}

// Now returns the current tick.
//
func (e *Engine) Now() Tick { return e.tb.Now() }

// State returns the engine state.
//
func (e *Engine) State() State { return e.state }

// Reason returns the termination reason, or NotTerminated.
//
func (e *Engine) Reason() Reason { return e.reason }

// Clock returns the current clock level.
//
func (e *Engine) Clock() bool { return e.clk.State() }

// Evaluations returns the number of successful model evaluations so far.
//
func (e *Engine) Evaluations() uint64 { return e.evals }

// Applied returns the number of stimulus events applied so far.
//
func (e *Engine) Applied() uint64 { return e.applied }

// Digest returns the hex encoded BLAKE2b-256 digest of every (tick, port,
// value) application so far. Two runs of the same configuration against
// equivalent models produce the same digest.
//
func (e *Engine) Digest() string {
	return hex.EncodeToString(e.digest.Sum(nil))
}

// StartBurst marks the current tick as the start of a steady-state burst.
// Burst events are applied relative to it.
//
func (e *Engine) StartBurst() {
	e.burstOn = true
	e.burstStart = e.tb.Now()
}

// SetInput writes v to port outside of the schedule, as the phase controller
// does for reset. It is recorded in the digest like scheduled stimulus.
//
func (e *Engine) SetInput(port string, v uint64) error {
	if err := e.model.SetInput(port, v); err != nil {
		return e.fail(&ModelError{Tick: e.tb.Now(), Op: "set_input", Err: errors.Wrap(err, port)})
	}
	e.record(port, v)
	return nil
}

// Poll evaluates the termination policy without stepping and terminates the
// engine if it no longer allows running. It returns true while running.
//
func (e *Engine) Poll() bool {
	if e.state != Running {
		return false
	}
	if r := e.shouldStop(); r != NotTerminated {
		e.state, e.reason = Terminated, r
		return false
	}
	return true
}

// shouldStop queries the model on every call: evaluation earlier in the same
// tick may have raised the finished flag.
//
func (e *Engine) shouldStop() Reason {
	switch {
	case e.model.Finished():
		return ModelFinished
	case !e.term.Allows(e.tb.Now()):
		return MaxTicks
	case e.stop != nil && e.stop():
		return Stopped
	}
	return NotTerminated
}

// StepUntil steps the engine while the current tick is lower than bound and
// the engine is running. Reaching bound leaves the engine running.
//
func (e *Engine) StepUntil(bound Tick) error {
	for e.tb.Now() < bound {
		if !e.Poll() {
			return nil
		}
		if err := e.step(); err != nil {
			return err
		}
	}
	return nil
}

// Run steps the engine until it terminates.
//
// With an unbounded termination policy, no stop predicate, and a model that
// never finishes, Run never returns.
//
func (e *Engine) Run() error {
	for e.Poll() {
		if err := e.step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) step() error {
	now := e.tb.Now()
	lvl, _ := e.clk.ToggleIfDue(now)
	if e.clkPort != "" {
		var v uint64
		if lvl {
			v = 1
		}
		if err := e.model.SetInput(e.clkPort, v); err != nil {
			return e.fail(&ModelError{Tick: now, Op: "set_input", Err: errors.Wrap(err, e.clkPort)})
		}
	}
	if err := e.apply(e.sched, now, now); err != nil {
		return err
	}
	if e.burstOn && now >= e.burstStart {
		if err := e.apply(e.burst, now, now-e.burstStart); err != nil {
			return err
		}
	}
	if err := e.model.Eval(); err != nil {
		return e.fail(&ModelError{Tick: now, Op: "eval", Err: err})
	}
	e.evals++
	if e.sink != nil {
		if err := e.sink.Dump(now); err != nil {
			return e.fail(resourceError("trace", err, "dump"))
		}
	}
	e.tb.Advance()
	return nil
}

func (e *Engine) apply(s *Schedule, now, at Tick) error {
	applied, err := s.ApplyDue(at, e.model)
	for _, ev := range applied {
		e.record(ev.Port, ev.Value)
	}
	if err != nil {
		return e.fail(&ModelError{Tick: now, Op: "set_input", Err: err})
	}
	return nil
}

func (e *Engine) record(port string, v uint64) {
	e.applied++
	binary.LittleEndian.PutUint64(e.buf[:], uint64(e.tb.Now()))
	e.digest.Write(e.buf[:])
	e.digest.Write([]byte(port))
	e.digest.Write([]byte{0})
	binary.LittleEndian.PutUint64(e.buf[:], v)
	e.digest.Write(e.buf[:])
}

func (e *Engine) fail(err error) error {
	e.state, e.reason = Terminated, Fault
	return errors.WithStack(err)
}
