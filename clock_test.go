package tbench_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/tbench"
)

func TestClock_edges(t *testing.T) {
	f := func(half uint8, n uint16) bool {
		h := tbench.Tick(half%31) + 2
		c := tbench.NewClock(h)
		prev := c.State()
		if prev {
			return false
		}
		for tick := tbench.Tick(0); tick < tbench.Tick(n%4096); tick++ {
			lvl, toggled := c.ToggleIfDue(tick)
			if toggled != (tick%h == 0) {
				t.Logf("half %d: toggled=%v at tick %d", h, toggled, tick)
				return false
			}
			if (lvl != prev) != toggled {
				return false
			}
			if lvl != tbench.ClockLevel(tick, h) {
				t.Logf("half %d: level %v at tick %d, expected %v", h, lvl, tick, tbench.ClockLevel(tick, h))
				return false
			}
			prev = lvl
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestClock_halfPeriodOne(t *testing.T) {
	c := tbench.NewClock(1)
	for tick := tbench.Tick(0); tick < 8; tick++ {
		lvl, toggled := c.ToggleIfDue(tick)
		if !toggled {
			t.Fatalf("no toggle at tick %d", tick)
		}
		if exp := tick%2 == 0; lvl != exp {
			t.Fatalf("tick %d: expected %v, got %v", tick, exp, lvl)
		}
	}
}

// The clock seen by the model only depends on the tick count, whatever the
// stimulus applied along with it.
func TestClock_independentOfStimulus(t *testing.T) {
	f := func(half uint8, n uint8, ev []uint16) bool {
		h := tbench.Tick(half%15) + 2
		cfg := tbench.Config{
			LimitRun:         true,
			MaxRunTicks:      tbench.Tick(n) + 1,
			ClockHalfPeriod:  h,
			ClockPort:        "clk",
			SteadyEnabled:    true,
			SteadyBurstTicks: 3,
		}
		seen := make(map[tbench.Tick]bool)
		for _, e := range ev {
			at := tbench.Tick(e % 300)
			if seen[at] {
				continue
			}
			seen[at] = true
			cfg.Events = append(cfg.Events, tbench.Event{Port: "in", At: at, Value: uint64(e)})
		}
		m := newModel()
		if _, err := run(cfg, m); err != nil {
			t.Log(err)
			return false
		}
		for tick, v := range m.Seen["clk"] {
			if (v == 1) != tbench.ClockLevel(tbench.Tick(tick), h) {
				return false
			}
		}
		return len(m.Seen["clk"]) == int(n)+1
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
