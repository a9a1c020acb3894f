// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result summarizes a run.
//
type Result struct {
	RunID       string
	Ticks       Tick   // final tick count
	Evaluations uint64 // model evaluations
	Applied     uint64 // stimulus events applied, including reset writes
	Reason      Reason
	Digest      string // see Engine.Digest
}

// Simulation owns every resource of a single run: the model, the trace sink,
// the board and the stepping engine.
//
// Callers must call Close once the simulation is no longer needed, on every
// path. Close is idempotent.
//
type Simulation struct {
	cfg    Config
	o      options
	model  Model
	sink   Sink
	board  Board
	engine *Engine
	ms     *metrics
	tracer trace.Tracer
	ctx    context.Context
	ran    bool
	closed bool
}

// Open validates cfg and acquires the resources of a run. Configuration errors
// are reported before anything is acquired. If acquiring a resource fails, the
// ones acquired before it are released.
//
func Open(cfg Config, newModel ModelFunc, opts ...Option) (_ *Simulation, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sched, err := NewSchedule(cfg.Events)
	if err != nil {
		return nil, err
	}
	burst, err := newSchedule("burst_events", cfg.BurstEvents)
	if err != nil {
		return nil, err
	}

	o := resolve(opts)
	if o.runID == "" {
		o.runID = uuid.New().String()
	}
	o.logger = o.logger.With("run_id", o.runID)
	ms, err := newMetrics(o.mp)
	if err != nil {
		o.logger.Warn("metrics disabled", "error", err)
		ms = noopMetrics()
	}

	s := &Simulation{cfg: cfg, o: o, ms: ms, tracer: o.tp.Tracer(instrumentationName)}
	defer func() {
		if err != nil {
			if cerr := s.release(); cerr != nil {
				o.logger.Error("release after failed open", "error", cerr)
			}
		}
	}()

	if newModel == nil {
		return nil, resourceError("model", errors.New("no model constructor"), "create")
	}
	m, err := newModel()
	if err != nil {
		return nil, resourceError("model", err, "create")
	}
	if m == nil {
		return nil, resourceError("model", errors.New("nil model"), "create")
	}
	s.model = m

	if cfg.TraceEnabled {
		if o.sink == nil {
			return nil, resourceError("trace", errors.New("no sink configured"), "open "+cfg.TracePath)
		}
		if s.sink, err = o.sink(&s.cfg, m); err != nil {
			return nil, resourceError("trace", err, "open "+cfg.TracePath)
		}
	}
	if o.board != nil {
		if s.board, err = o.board(m); err != nil {
			return nil, resourceError("board", err, "open")
		}
	}

	s.engine, err = NewEngine(m, EngineConfig{
		HalfPeriod:  cfg.ClockHalfPeriod,
		ClockPort:   cfg.ClockPort,
		Termination: cfg.Termination(),
		Schedule:    sched,
		Burst:       burst,
		Sink:        s.sink,
		Stop:        s.stopped,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RunID returns the run identifier.
//
func (s *Simulation) RunID() string { return s.o.runID }

// Engine returns the stepping engine of the simulation.
//
func (s *Simulation) Engine() *Engine { return s.engine }

func (s *Simulation) stopped() bool {
	return s.ctx != nil && s.ctx.Err() != nil
}

// Run runs the enabled phases. Cancelling ctx stops the run at the next tick
// boundary, in which case the context error is returned along with the
// partial result. A simulation can only be run once.
//
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	if s.closed {
		return Result{}, errors.New("simulation closed")
	}
	if s.ran {
		return Result{}, errors.New("simulation already ran")
	}
	s.ran = true
	s.ctx = ctx
	defer func() { s.ctx = nil }()

	ctx, span := s.tracer.Start(ctx, "tbench.run", trace.WithAttributes(
		attribute.String("tbench.run_id", s.o.runID),
		attribute.Int64("tbench.half_period", int64(s.cfg.ClockHalfPeriod)),
		attribute.Bool("tbench.trace", s.cfg.TraceEnabled),
	))
	defer span.End()

	log := s.o.logger
	log.Info("simulation started",
		"limit", s.cfg.LimitRun, "max_ticks", uint64(s.cfg.MaxRunTicks),
		"half_period", uint64(s.cfg.ClockHalfPeriod), "clock_port", s.cfg.ClockPort,
		"events", len(s.cfg.Events), "burst_events", len(s.cfg.BurstEvents))
	start := time.Now()

	ph := PhasesFromConfig(&s.cfg)
	err := s.phase(ctx, Initial, ph.Initial.Enabled, func() error { return ph.Initial.Run(s.engine, s.board) })
	if err == nil {
		err = s.phase(ctx, SteadyState, ph.Steady.Enabled, func() error { return ph.Steady.Run(s.engine) })
	}
	if err == nil {
		s.engine.Poll()
	}

	e := s.engine
	res := Result{
		RunID:       s.o.runID,
		Ticks:       e.Now(),
		Evaluations: e.Evaluations(),
		Applied:     e.Applied(),
		Reason:      e.Reason(),
		Digest:      e.Digest(),
	}
	if res.Reason == NotTerminated {
		res.Reason = Completed
	}
	if err == nil && res.Reason == Stopped {
		err = errors.Wrap(ctx.Err(), "simulation stopped")
	}
	elapsed := time.Since(start)
	s.ms.record(ctx, &res, elapsed)
	span.SetAttributes(
		attribute.Int64("tbench.ticks", int64(res.Ticks)),
		attribute.String("tbench.reason", res.Reason.String()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("simulation failed", "tick", uint64(res.Ticks), "reason", res.Reason.String(), "error", err)
		return res, err
	}
	log.Info("simulation done", "ticks", uint64(res.Ticks), "evaluations", res.Evaluations,
		"reason", res.Reason.String(), "elapsed", elapsed)
	return res, nil
}

func (s *Simulation) phase(ctx context.Context, p Phase, enabled bool, run func() error) error {
	if !enabled {
		s.o.logger.Debug("phase disabled", "phase", p.String())
		return nil
	}
	_, span := s.tracer.Start(ctx, "tbench.phase."+p.String())
	defer span.End()
	s.o.logger.Debug("phase started", "phase", p.String(), "tick", uint64(s.engine.Now()))
	err := run()
	span.SetAttributes(attribute.Int64("tbench.tick", int64(s.engine.Now())))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.o.logger.Debug("phase done", "phase", p.String(), "tick", uint64(s.engine.Now()),
		"state", s.engine.State().String())
	return nil
}

// Close releases the resources acquired by Open: the trace sink first, then
// the board and the model.
//
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	return s.release()
}

func (s *Simulation) release() error {
	s.closed = true
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			keep(resourceError("trace", err, "close"))
		}
		s.sink = nil
	}
	if c, ok := s.board.(io.Closer); ok {
		if err := c.Close(); err != nil {
			keep(resourceError("board", err, "close"))
		}
	}
	s.board = nil
	if c, ok := s.model.(io.Closer); ok {
		if err := c.Close(); err != nil {
			keep(resourceError("model", err, "close"))
		}
	}
	s.model = nil
	return first
}

// Run opens a simulation, runs it and releases it. Close errors are returned
// only if the run itself succeeded.
//
func Run(ctx context.Context, cfg Config, newModel ModelFunc, opts ...Option) (res Result, err error) {
	s, err := Open(cfg, newModel, opts...)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return s.Run(ctx)
}

// Logger returns the logger of the simulation, annotated with the run ID.
//
func (s *Simulation) Logger() *slog.Logger { return s.o.logger }
