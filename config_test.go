package tbench_test

import (
	"strings"
	"testing"

	"github.com/db47h/tbench"
	"github.com/pkg/errors"
)

func TestConfig_Validate(t *testing.T) {
	td := []struct {
		name  string
		mod   func(c *tbench.Config)
		field string // expected field in error, "" for success
	}{
		{"default", func(c *tbench.Config) {}, ""},
		{"half period", func(c *tbench.Config) { c.ClockHalfPeriod = 0 }, "clock_half_period"},
		{"half period 1", func(c *tbench.Config) { c.ClockHalfPeriod = 1 }, ""},
		{"trace path", func(c *tbench.Config) { c.TraceEnabled = true }, "trace_output_path"},
		{"trace path ok", func(c *tbench.Config) { c.TraceEnabled, c.TracePath = true, "out.vcd" }, ""},
		{"trace format", func(c *tbench.Config) { c.TraceFormat = "fst" }, "trace_format"},
		{"bounds", func(c *tbench.Config) { c.InitialBound1, c.InitialBound2 = 10, 5 }, "initial_phase_bound_2"},
		{"bounds ignored when disabled", func(c *tbench.Config) {
			c.InitialEnabled = false
			c.InitialBound1, c.InitialBound2 = 10, 5
		}, ""},
		{"burst", func(c *tbench.Config) { c.SteadyEnabled, c.SteadyBurstTicks = true, 0 }, "steady_state_burst_ticks"},
		{"duplicate", func(c *tbench.Config) {
			c.Events = []tbench.Event{{Port: "a", At: 3, Value: 1}, {Port: "a", At: 3, Value: 0}}
		}, "stimulus_events"},
		{"same tick other ports", func(c *tbench.Config) {
			c.Events = []tbench.Event{{Port: "a", At: 3, Value: 1}, {Port: "b", At: 3, Value: 0}}
		}, ""},
		{"empty port", func(c *tbench.Config) { c.Events = []tbench.Event{{At: 3}} }, "stimulus_events"},
		{"burst duplicate", func(c *tbench.Config) {
			c.BurstEvents = []tbench.Event{{Port: "a", At: 1, Value: 1}, {Port: "a", At: 1, Value: 1}}
		}, "burst_events"},
		{"burst offset", func(c *tbench.Config) {
			c.SteadyEnabled = true
			c.BurstEvents = []tbench.Event{{Port: "a", At: 20, Value: 1}}
		}, "burst_events"},
		{"burst collision", func(c *tbench.Config) {
			c.SteadyEnabled, c.SteadyBurstTicks = true, 5
			c.BurstEvents = []tbench.Event{{Port: "a", At: 2, Value: 1}}
			c.Events = []tbench.Event{{Port: "a", At: 32, Value: 0}}
		}, "stimulus_events"},
		{"reset at tick 0", func(c *tbench.Config) {
			c.ResetPort = "rst"
			c.Events = []tbench.Event{{Port: "rst", At: 0, Value: 0}}
		}, "stimulus_events"},
		{"reset release", func(c *tbench.Config) {
			c.ResetPort = "rst"
			c.Events = []tbench.Event{{Port: "rst", At: 10, Value: 1}}
		}, "stimulus_events"},
		{"reset between writes", func(c *tbench.Config) {
			c.ResetPort = "rst"
			c.Events = []tbench.Event{{Port: "rst", At: 5, Value: 0}}
		}, ""},
		{"reset port without initial phase", func(c *tbench.Config) {
			c.InitialEnabled, c.ResetPort = false, "rst"
			c.Events = []tbench.Event{{Port: "rst", At: 0, Value: 0}}
		}, ""},
		{"reset release burst", func(c *tbench.Config) {
			c.ResetPort = "rst"
			c.InitialBound2 = c.InitialBound1
			c.SteadyEnabled, c.SteadyBurstTicks = true, 5
			c.BurstEvents = []tbench.Event{{Port: "rst", At: 0, Value: 1}}
		}, "burst_events"},
		{"clock event", func(c *tbench.Config) {
			c.ClockPort = "clk"
			c.Events = []tbench.Event{{Port: "clk", At: 7, Value: 1}}
		}, "stimulus_events"},
		{"clock burst event", func(c *tbench.Config) {
			c.ClockPort = "clk"
			c.SteadyEnabled, c.SteadyBurstTicks = true, 5
			c.BurstEvents = []tbench.Event{{Port: "clk", At: 1, Value: 1}}
		}, "burst_events"},
		{"no collision before steady start", func(c *tbench.Config) {
			c.SteadyEnabled, c.SteadyBurstTicks = true, 5
			c.BurstEvents = []tbench.Event{{Port: "a", At: 2, Value: 1}}
			c.Events = []tbench.Event{{Port: "a", At: 12, Value: 0}, {Port: "b", At: 22, Value: 0}}
		}, ""},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			c := tbench.DefaultConfig()
			d.mod(&c)
			err := c.Validate()
			if d.field == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			var ce *tbench.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected a config error, got %v", err)
			}
			if ce.Field != d.field {
				t.Fatalf("expected error on %s, got %v", d.field, err)
			}
			if !strings.HasPrefix(err.Error(), "config: "+d.field) {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestConfig_Termination(t *testing.T) {
	c := tbench.DefaultConfig()
	if p := c.Termination(); !p.Bounded || p.Max != 20 || p.Allows(20) || !p.Allows(19) {
		t.Fatalf("unexpected policy %+v", p)
	}
	c.LimitRun = false
	if p := c.Termination(); p.Bounded || !p.Allows(1<<62) {
		t.Fatalf("unexpected policy %+v", p)
	}
	if c.Format() != tbench.FormatVCD {
		t.Fatalf("unexpected default format %q", c.Format())
	}
}
