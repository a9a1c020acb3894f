// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/db47h/tbench"

type metrics struct {
	runs     metric.Int64Counter
	ticks    metric.Int64Counter
	evals    metric.Int64Counter
	applied  metric.Int64Counter
	duration metric.Float64Histogram
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	m := mp.Meter(instrumentationName)
	var (
		ms  metrics
		err error
	)
	if ms.runs, err = m.Int64Counter("tbench.runs",
		metric.WithDescription("Completed simulation runs")); err != nil {
		return nil, err
	}
	if ms.ticks, err = m.Int64Counter("tbench.ticks",
		metric.WithDescription("Simulated ticks"), metric.WithUnit("{tick}")); err != nil {
		return nil, err
	}
	if ms.evals, err = m.Int64Counter("tbench.evaluations",
		metric.WithDescription("Model evaluations")); err != nil {
		return nil, err
	}
	if ms.applied, err = m.Int64Counter("tbench.stimulus.applied",
		metric.WithDescription("Stimulus events applied to the model")); err != nil {
		return nil, err
	}
	if ms.duration, err = m.Float64Histogram("tbench.run.duration",
		metric.WithDescription("Wall clock duration of simulation runs"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &ms, nil
}

func noopMetrics() *metrics {
	ms, _ := newMetrics(noop.NewMeterProvider())
	return ms
}

// record is called once per run, never per tick.
func (ms *metrics) record(ctx context.Context, r *Result, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("reason", r.Reason.String()))
	ms.runs.Add(ctx, 1, attrs)
	ms.ticks.Add(ctx, int64(r.Ticks))
	ms.evals.Add(ctx, int64(r.Evaluations))
	ms.applied.Add(ctx, int64(r.Applied))
	ms.duration.Record(ctx, elapsed.Seconds(), attrs)
}
