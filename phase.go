// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import "github.com/pkg/errors"

// Phase identifies a stepping regime.
//
type Phase int

// Phases.
const (
	Initial Phase = iota
	SteadyState
)

func (p Phase) String() string {
	if p == Initial {
		return "initial"
	}
	return "steady"
}

// InitialPhase asserts ResetPort, steps to Bound1, releases it and steps to
// Bound2. The board is refreshed before each of the two stretches. Nothing is
// written once the engine has terminated.
//
type InitialPhase struct {
	Enabled   bool
	ResetPort string
	Bound1    Tick
	Bound2    Tick
}

// SteadyPhase steps the engine in bursts of Burst ticks until it terminates.
//
type SteadyPhase struct {
	Enabled bool
	Burst   Tick
}

// Phases sequences the initial and steady-state phases. If both are
// disabled, nothing is stepped.
//
type Phases struct {
	Initial InitialPhase
	Steady  SteadyPhase
}

// PhasesFromConfig returns the phases described by cfg.
//
func PhasesFromConfig(cfg *Config) Phases {
	return Phases{
		Initial: InitialPhase{
			Enabled:   cfg.InitialEnabled,
			ResetPort: cfg.ResetPort,
			Bound1:    cfg.InitialBound1,
			Bound2:    cfg.InitialBound2,
		},
		Steady: SteadyPhase{
			Enabled: cfg.SteadyEnabled,
			Burst:   cfg.SteadyBurstTicks,
		},
	}
}

// Run runs the enabled phases in order. b may be nil.
//
func (p *Phases) Run(e *Engine, b Board) error {
	if err := p.Initial.Run(e, b); err != nil {
		return err
	}
	return p.Steady.Run(e)
}

// Run runs the initial phase if enabled.
//
func (p *InitialPhase) Run(e *Engine, b Board) error {
	if !p.Enabled {
		return nil
	}
	for _, s := range [...]struct {
		reset uint64
		bound Tick
	}{{1, p.Bound1}, {0, p.Bound2}} {
		if !e.Poll() {
			break
		}
		if p.ResetPort != "" {
			if err := e.SetInput(p.ResetPort, s.reset); err != nil {
				return err
			}
		}
		if err := refresh(b); err != nil {
			return err
		}
		if err := e.StepUntil(s.bound); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the steady-state phase if enabled. It only returns once the engine
// has terminated, so an unbounded run against a model that never finishes
// does not return.
//
func (p *SteadyPhase) Run(e *Engine) error {
	if !p.Enabled {
		return nil
	}
	if p.Burst < 1 {
		return configErrorf("steady_state_burst_ticks", "must be >= 1")
	}
	for e.Poll() {
		e.StartBurst()
		if err := e.StepUntil(e.Now() + p.Burst); err != nil {
			return err
		}
	}
	return nil
}

func refresh(b Board) error {
	if b == nil {
		return nil
	}
	if err := b.Update(); err != nil {
		return errors.WithStack(&ResourceError{Resource: "board", Err: errors.Wrap(err, "update")})
	}
	return nil
}
