// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"
	"reflect"
	"testing"

	"github.com/db47h/tbench"
)

// CompareRuns runs cfg twice against fresh models and fails t if the two runs
// did not apply the exact same (tick, port, value) sequence, or ended in a
// different state. It returns the model of the first run.
//
func CompareRuns(t *testing.T, cfg tbench.Config, newModel func() *Model) *Model {
	t.Helper()

	run := func() (*Model, tbench.Result) {
		m := newModel()
		res, err := tbench.Run(context.Background(), cfg,
			func() (tbench.Model, error) { return m, nil },
			tbench.WithSink(func(*tbench.Config, tbench.Model) (tbench.Sink, error) { return &Sink{}, nil }),
		)
		if err != nil {
			t.Fatal(err)
		}
		return m, res
	}

	m1, r1 := run()
	m2, r2 := run()
	if !reflect.DeepEqual(m1.Calls, m2.Calls) {
		t.Fatalf("input sequences differ:\n%v\n%v", m1.Calls, m2.Calls)
	}
	if r1.Digest != r2.Digest {
		t.Fatalf("digests differ: %s != %s", r1.Digest, r2.Digest)
	}
	r1.RunID, r2.RunID = "", ""
	if r1 != r2 {
		t.Fatalf("results differ: %+v != %+v", r1, r2)
	}
	return m1
}
