// Package schedule implements the static-schedule compiler: it traces
// one define-by-run execution of a subgraph, freezes the recorded
// operation calls into a replayable schedule, and substitutes the
// schedule for graph construction and backward propagation on later
// iterations with matching input signatures.
package schedule

import "github.com/pkg/errors"

// ErrNestedTrace is returned when a static region is traced inside
// another static region. Only the outermost region may be compiled.
var ErrNestedTrace = errors.New("schedule: nested static regions are not supported; compile only the outermost region")

// ErrNotBuilt is returned when replay is requested before the schedule
// has been built (FinishIteration after the tracing iteration).
var ErrNotBuilt = errors.New("schedule: replay requested before the schedule was built")

// ErrNoSuchPass is returned when a replay requests a pass depth that
// the tracing iteration never recorded (e.g. a double-backward replay
// of a schedule traced without one).
var ErrNoSuchPass = errors.New("schedule: no recorded pass at requested depth")

// ErrWrongState is returned when a compiler operation is invalid in the
// entry's current lifecycle state, such as a Forward for a key that is
// still tracing.
var ErrWrongState = errors.New("schedule: operation not valid in current state")
