// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package board_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/db47h/tbench"
	"github.com/db47h/tbench/board"
	"github.com/db47h/tbench/hwlib"
	"github.com/db47h/tbench/hwsim"
	"github.com/db47h/tbench/hwtest"
)

func TestConsole_update(t *testing.T) {
	m := hwtest.NewModel("a", "b")
	var buf bytes.Buffer
	c, err := board.NewConsole(&buf, m, "b")
	if err != nil {
		t.Fatal(err)
	}
	if err = m.SetInput("b", 10); err != nil {
		t.Fatal(err)
	}
	if err = c.Update(); err != nil {
		t.Fatal(err)
	}
	if exp := "[1] b=0xa\n"; buf.String() != exp {
		t.Fatalf("expected %q, got %q", exp, buf.String())
	}
	if err = c.Close(); err != nil {
		t.Fatal(err)
	}
}

type noSnapshot struct{ tbench.Model }

func TestConsole_noSnapshot(t *testing.T) {
	if _, err := board.NewConsole(&bytes.Buffer{}, noSnapshot{hwtest.NewModel()}); err == nil {
		t.Fatal("expected an error for a model without signals")
	}
}

// The initial phase refreshes the board once before and once after reset
// release.
func TestConsole_run(t *testing.T) {
	d, ok := hwlib.LookupDesign("counter")
	if !ok {
		t.Fatal("counter design not found")
	}
	cfg := tbench.DefaultConfig()
	cfg.ClockPort, cfg.ResetPort = "clk", "rst"
	cfg.InitialBound1, cfg.InitialBound2, cfg.MaxRunTicks = 4, 8, 8
	var buf bytes.Buffer
	_, err := tbench.Run(context.Background(), cfg, func() (tbench.Model, error) {
		c, err := d.New()
		if err != nil {
			return nil, err
		}
		return hwsim.NewModel(c, 4), nil
	}, tbench.WithBoard(board.Opener(&buf, "rst", "count")))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 board updates, got %q", buf.String())
	}
	if lines[0] != "[1] rst=1 count=0x0" || !strings.HasPrefix(lines[1], "[2] rst=0 count=") {
		t.Fatalf("unexpected board output %q", lines)
	}
}
