// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

// Model is the boundary to the evaluated hardware model. The engine only ever
// touches named input ports and the finished flag.
//
// Errors returned by SetInput or Eval are treated as fatal model faults.
// A Model that also implements io.Closer is closed when the Simulation owning
// it is released.
//
type Model interface {
	// SetInput sets the value of the named input port.
	SetInput(port string, v uint64) error
	// Eval evaluates the model. It may raise the finished flag.
	Eval() error
	// Finished returns true once the model has signaled completion.
	Finished() bool
}

// A Sample is the value of one observable signal.
//
type Sample struct {
	Name  string
	Width int // in bits, 1 to 64
	Value uint64
}

// Snapshotter is implemented by models whose observable state can be dumped.
// Trace sinks and boards use it; the engine never does.
//
type Snapshotter interface {
	// Snapshot appends the current value of all observable signals to dst
	// and returns the extended slice. Signals must be returned in the same
	// order on every call.
	Snapshot(dst []Sample) []Sample
}

// Sink is the trace boundary. Dump records the model's observable state
// keyed by t. Dumps are issued in strictly increasing tick order.
//
type Sink interface {
	Dump(t Tick) error
	Close() error
}

// Board is the visualization boundary (a virtual FPGA board or similar). The
// phase controller refreshes it around reset transitions.
//
type Board interface {
	Update() error
}

// BoardFunc adapts a plain function to the Board interface.
//
type BoardFunc func() error

// Update calls f().
//
func (f BoardFunc) Update() error { return f() }
