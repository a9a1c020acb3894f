// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ModelFunc creates the model instance for a run.
//
type ModelFunc func() (Model, error)

// SinkFunc opens the trace sink for a run. It is only called when tracing is
// enabled. Most sinks need m to implement Snapshotter.
//
type SinkFunc func(cfg *Config, m Model) (Sink, error)

// BoardOpener attaches a visualization board to the model of a run.
//
type BoardOpener func(m Model) (Board, error)

// Option configures a Simulation.
//
type Option func(*options)

type options struct {
	logger *slog.Logger
	sink   SinkFunc
	board  BoardOpener
	runID  string
	mp     metric.MeterProvider
	tp     trace.TracerProvider
}

// WithLogger sets the structured logger. Defaults to slog.Default().
//
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSink sets the function used to open the trace sink when tracing is
// enabled. Opening a simulation with tracing enabled and no sink fails.
//
func WithSink(f SinkFunc) Option {
	return func(o *options) { o.sink = f }
}

// WithBoard attaches a visualization board. Boards implementing io.Closer are
// closed with the simulation.
//
func WithBoard(f BoardOpener) Option {
	return func(o *options) { o.board = f }
}

// WithRunID forces the run ID. A random UUID is used by default.
//
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// WithMeterProvider sets the OpenTelemetry meter provider. Defaults to the
// global provider.
//
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.mp = mp }
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Defaults to the
// global provider.
//
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

func resolve(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.mp == nil {
		o.mp = otel.GetMeterProvider()
	}
	if o.tp == nil {
		o.tp = otel.GetTracerProvider()
	}
	return o
}
