// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

// Trace formats.
const (
	FormatVCD    = "vcd"
	FormatSQLite = "sqlite"
)

// Config is the configuration of a simulation run. All options are read once
// at the start of the run.
//
type Config struct {
	// LimitRun enables the MaxRunTicks bound. When false, the run only ends
	// when the model signals completion.
	LimitRun    bool
	MaxRunTicks Tick

	// ClockHalfPeriod is the number of ticks between clock toggles. Must be >= 1.
	ClockHalfPeriod Tick
	// ClockPort is the model input driven by the generated clock. If empty,
	// the clock is not wired to the model.
	ClockPort string

	// Initial phase: ResetPort is held at 1 until tick InitialBound1, then
	// released to 0 until tick InitialBound2.
	InitialEnabled bool
	InitialBound1  Tick
	InitialBound2  Tick
	ResetPort      string // "" = no reset input

	// Steady-state phase: bursts of SteadyBurstTicks, repeated until the run
	// terminates.
	SteadyEnabled    bool
	SteadyBurstTicks Tick

	TraceEnabled bool
	TracePath    string
	TraceFormat  string // FormatVCD if empty

	// Events are applied at absolute ticks.
	Events []Event
	// BurstEvents are applied in every steady-state burst; their At field is
	// an offset from the start of the burst.
	BurstEvents []Event
}

// DefaultConfig returns a configuration with a 2 tick half period, an initial
// phase of 10 reset ticks followed by 10 settle ticks, and a 20 tick limit.
//
func DefaultConfig() Config {
	return Config{
		LimitRun:         true,
		MaxRunTicks:      20,
		ClockHalfPeriod:  2,
		InitialEnabled:   true,
		InitialBound1:    10,
		InitialBound2:    20,
		SteadyBurstTicks: 20,
	}
}

// Termination returns the termination policy selected by c.
//
func (c *Config) Termination() Termination {
	if c.LimitRun {
		return UntilTick(c.MaxRunTicks)
	}
	return Unbounded()
}

// Format returns the trace format, defaulting to FormatVCD.
//
func (c *Config) Format() string {
	if c.TraceFormat == "" {
		return FormatVCD
	}
	return c.TraceFormat
}

// SteadyStart returns the tick at which the steady-state phase starts,
// provided the initial phase did not terminate the run.
//
func (c *Config) SteadyStart() Tick {
	if c.InitialEnabled {
		return c.InitialBound2
	}
	return 0
}

// Validate checks the configuration. It returns a *ConfigError (possibly
// wrapped) describing the first problem found.
//
func (c *Config) Validate() error {
	if c.ClockHalfPeriod < 1 {
		return configErrorf("clock_half_period", "must be >= 1, got %d", c.ClockHalfPeriod)
	}
	if c.TraceEnabled && c.TracePath == "" {
		return configErrorf("trace_output_path", "required when tracing is enabled")
	}
	if f := c.Format(); f != FormatVCD && f != FormatSQLite {
		return configErrorf("trace_format", "unsupported format %q", f)
	}
	if c.InitialEnabled && c.InitialBound2 < c.InitialBound1 {
		return configErrorf("initial_phase_bound_2", "%d is lower than initial_phase_bound_1 (%d)", c.InitialBound2, c.InitialBound1)
	}
	if c.SteadyEnabled && c.SteadyBurstTicks < 1 {
		return configErrorf("steady_state_burst_ticks", "must be >= 1 when the steady-state phase is enabled")
	}
	if _, err := newSchedule("stimulus_events", c.Events); err != nil {
		return err
	}
	if _, err := newSchedule("burst_events", c.BurstEvents); err != nil {
		return err
	}
	if err := c.validateDriven(); err != nil {
		return err
	}
	if len(c.BurstEvents) == 0 || !c.SteadyEnabled {
		return nil
	}
	for i, e := range c.BurstEvents {
		if e.At >= c.SteadyBurstTicks {
			return configErrorf("burst_events", "event #%d (%s): offset must be lower than the burst length %d", i, e, c.SteadyBurstTicks)
		}
	}
	// an absolute event must not hit the same port as a burst event on the
	// same tick.
	start := c.SteadyStart()
	type key struct {
		port string
		off  Tick
	}
	offs := make(map[key]int, len(c.BurstEvents))
	for i, e := range c.BurstEvents {
		offs[key{e.Port, e.At}] = i
	}
	for i, e := range c.Events {
		if e.At < start {
			continue
		}
		if j, ok := offs[key{e.Port, (e.At - start) % c.SteadyBurstTicks}]; ok {
			return configErrorf("stimulus_events", "event #%d (%s) collides with burst event #%d (%s)", i, e, j, c.BurstEvents[j])
		}
	}
	return nil
}

// validateDriven rejects events on ports written outside of the schedules: the
// clock port on every tick, and the reset port at tick 0 and at
// InitialBound1.
//
func (c *Config) validateDriven() error {
	reset := c.InitialEnabled && c.ResetPort != ""
	for i, e := range c.Events {
		switch {
		case c.ClockPort != "" && e.Port == c.ClockPort:
			return configErrorf("stimulus_events", "event #%d (%s) drives the clock port", i, e)
		case reset && e.Port == c.ResetPort && (e.At == 0 || e.At == c.InitialBound1):
			return configErrorf("stimulus_events", "event #%d (%s) collides with the reset write at tick %d", i, e, e.At)
		}
	}
	for i, e := range c.BurstEvents {
		switch {
		case c.ClockPort != "" && e.Port == c.ClockPort:
			return configErrorf("burst_events", "event #%d (%s) drives the clock port", i, e)
		// the first burst starts on the reset release tick
		case reset && c.SteadyEnabled && e.Port == c.ResetPort && e.At == 0 && c.InitialBound2 == c.InitialBound1:
			return configErrorf("burst_events", "event #%d (%s) collides with the reset release at tick %d", i, e, c.InitialBound1)
		}
	}
	return nil
}
