// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package tbench provides a deterministic, discrete-time test bench driver for
hardware models under simulation.

A run advances a tick counter one tick at a time. On each tick the engine
toggles a generated clock if due, writes it to the model's clock port, applies
the stimulus events scheduled at exactly that tick, evaluates the model and
dumps its state to an optional trace sink. The run stops when the model raises
its finished flag or, if configured, when the tick counter reaches a limit.

Runs are organized in two optional phases: an initial phase that holds a reset
input asserted for a number of ticks, then releases it and lets the design
settle, and a steady-state phase that steps the engine in fixed size bursts
until the run terminates.

The model itself is opaque. Anything implementing Model can be driven; the
hwsim package provides a gate-level circuit simulator that does.

	cfg := tbench.DefaultConfig()
	cfg.ClockPort = "clk"
	cfg.ResetPort = "rst"
	res, err := tbench.Run(ctx, cfg, newModel)

Beware that an unbounded run (LimitRun false) against a model that never
finishes never returns unless its context is cancelled.

*/
package tbench
