package tbench_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/db47h/tbench"
	"github.com/db47h/tbench/hwtest"
	"github.com/pkg/errors"
)

var quiet = tbench.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func newModel(ports ...string) *hwtest.Model {
	return hwtest.NewModel(ports...)
}

func modelFunc(m tbench.Model) tbench.ModelFunc {
	return func() (tbench.Model, error) { return m, nil }
}

func run(cfg tbench.Config, m tbench.Model, opts ...tbench.Option) (tbench.Result, error) {
	return tbench.Run(context.Background(), cfg, modelFunc(m), append([]tbench.Option{quiet}, opts...)...)
}

func sinkOf(s tbench.Sink) tbench.Option {
	return tbench.WithSink(func(*tbench.Config, tbench.Model) (tbench.Sink, error) { return s, nil })
}

func failingSink(msg string) tbench.Option {
	return tbench.WithSink(func(*tbench.Config, tbench.Model) (tbench.Sink, error) { return nil, errors.New(msg) })
}

func ticks(n int) []tbench.Tick {
	out := make([]tbench.Tick, n)
	for i := range out {
		out[i] = tbench.Tick(i)
	}
	return out
}

// trace logs the stack trace attached to err, if any.
func trace(t interface{ Logf(string, ...interface{}) }, err error) {
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}
