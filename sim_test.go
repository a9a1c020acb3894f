package tbench_test

import (
	"context"
	"testing"

	"github.com/db47h/tbench"
	"github.com/db47h/tbench/hwtest"
	"github.com/pkg/errors"
)

func TestOpen_configError(t *testing.T) {
	called := false
	cfg := scenarioConfig()
	cfg.ClockHalfPeriod = 0
	_, err := tbench.Open(cfg, func() (tbench.Model, error) {
		called = true
		return newModel(), nil
	}, quiet)
	if !tbench.IsConfigError(err) {
		t.Fatalf("expected a config error, got %v", err)
	}
	if called {
		t.Fatal("model created despite an invalid configuration")
	}
}

func TestOpen_releaseOnError(t *testing.T) {
	// model creation failure
	_, err := tbench.Open(scenarioConfig(), func() (tbench.Model, error) { return nil, errors.New("no such design") }, quiet)
	if !tbench.IsResourceError(err) {
		t.Fatalf("expected a resource error, got %v", err)
	}

	// sink failure releases the model
	m := newModel()
	cfg := scenarioConfig()
	cfg.TraceEnabled, cfg.TracePath = true, "/nonexistent/out.vcd"
	_, err = tbench.Open(cfg, modelFunc(m), quiet, failingSink("permission denied"))
	if !tbench.IsResourceError(err) {
		t.Fatalf("expected a resource error, got %v", err)
	}
	if !m.Closed {
		t.Fatal("model not released")
	}

	// missing sink
	m = newModel()
	_, err = tbench.Open(cfg, modelFunc(m), quiet)
	if !tbench.IsResourceError(err) || !m.Closed {
		t.Fatalf("expected a resource error and a released model, got %v", err)
	}

	// board failure releases sink and model
	m = newModel()
	sink := &hwtest.Sink{}
	_, err = tbench.Open(cfg, modelFunc(m), quiet, sinkOf(sink),
		tbench.WithBoard(func(tbench.Model) (tbench.Board, error) { return nil, errors.New("no display") }))
	if !tbench.IsResourceError(err) || !m.Closed || !sink.Closed {
		t.Fatalf("expected released resources, got %v", err)
	}
}

func TestSimulation_lifecycle(t *testing.T) {
	m := newModel()
	s, err := tbench.Open(scenarioConfig(), modelFunc(m), quiet, tbench.WithRunID("run-1"))
	if err != nil {
		t.Fatal(err)
	}
	if s.RunID() != "run-1" {
		t.Fatalf("unexpected run ID %q", s.RunID())
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID != "run-1" || res.Ticks != 20 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err = s.Run(context.Background()); err == nil {
		t.Fatal("second run succeeded")
	}
	if err = s.Close(); err != nil {
		t.Fatal(err)
	}
	if !m.Closed {
		t.Fatal("model not closed")
	}
	if err = s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err = s.Run(context.Background()); err == nil {
		t.Fatal("run after close succeeded")
	}
}

type cancelModel struct {
	*hwtest.Model
	at     uint64
	cancel func()
}

func (m *cancelModel) Eval() error {
	err := m.Model.Eval()
	if m.Evals == m.at {
		m.cancel()
	}
	return err
}

func TestSimulation_cancel(t *testing.T) {
	cfg := scenarioConfig()
	cfg.LimitRun = false

	ctx, cancel := context.WithCancel(context.Background())
	m := &cancelModel{Model: newModel(), at: 42, cancel: cancel}
	res, err := tbench.Run(ctx, cfg, modelFunc(m), quiet)
	if errors.Cause(err) != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Reason != tbench.Stopped || res.Ticks != 42 || m.Evals != 42 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !m.Closed {
		t.Fatal("model not released")
	}

	// already cancelled
	m2 := newModel()
	res, err = tbench.Run(ctx, cfg, modelFunc(m2), quiet)
	if err == nil || res.Ticks != 0 || m2.Evals != 0 {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
}

type closeErrModel struct{ *hwtest.Model }

func (closeErrModel) Close() error { return errors.New("close failed") }

func TestRun_closeError(t *testing.T) {
	_, err := run(scenarioConfig(), closeErrModel{newModel()})
	if !tbench.IsResourceError(err) {
		t.Fatalf("expected a resource error, got %v", err)
	}
}
