// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tbench

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// A ConfigError reports an invalid configuration. It is always returned
// before the first tick is processed.
//
type ConfigError struct {
	Field string // configuration field, may be empty
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Msg
	}
	return "config: " + e.Field + ": " + e.Msg
}

func configErrorf(field, format string, args ...interface{}) error {
	return errors.WithStack(&ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)})
}

// A ResourceError reports a failure to acquire, use or release an external
// resource: the model instance, the trace sink or the board.
//
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string { return e.Resource + ": " + e.Err.Error() }

// Cause returns the underlying error.
//
func (e *ResourceError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
//
func (e *ResourceError) Unwrap() error { return e.Err }

func resourceError(resource string, err error, msg string) error {
	return errors.WithStack(&ResourceError{Resource: resource, Err: errors.Wrap(err, msg)})
}

// A ModelError reports an internal fault signaled by the model. It stops the
// run. Ticks are never retried: once the model has seen a clock edge,
// simulated time cannot be replayed.
//
type ModelError struct {
	Tick Tick
	Op   string // "set_input", "eval"
	Err  error
}

func (e *ModelError) Error() string {
	return "model: " + e.Op + " at tick " + strconv.FormatUint(uint64(e.Tick), 10) + ": " + e.Err.Error()
}

// Cause returns the underlying error.
//
func (e *ModelError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
//
func (e *ModelError) Unwrap() error { return e.Err }

// IsConfigError returns true if err is or wraps a *ConfigError.
//
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsResourceError returns true if err is or wraps a *ResourceError.
//
func IsResourceError(err error) bool {
	var e *ResourceError
	return errors.As(err, &e)
}

// IsModelError returns true if err is or wraps a *ModelError.
//
func IsModelError(err error) bool {
	var e *ModelError
	return errors.As(err, &e)
}
