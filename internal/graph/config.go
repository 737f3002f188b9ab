package graph

import "github.com/ember-ml/ember/internal/array"

// Config is the immutable set of mode flags threaded through Apply and
// Backward. There is no process-wide mutable state: callers derive new
// contexts instead of flipping globals, so independent model instances
// can run with different modes in one process.
type Config struct {
	// Tracking enables graph construction. With it off, Apply runs the
	// pure computation and attaches no function node.
	Tracking bool
	// Train selects training mode; the schedule cache keys on it.
	Train bool
	// Debug enables the expensive validation pass: gradient shape and
	// dtype checks and NaN detection during backward.
	Debug bool
}

// Context carries a Config plus the optional schedule recorder hook.
// Contexts are immutable; the With* methods return derived copies.
type Context struct {
	cfg Config
	rec Recorder
}

// NewContext returns the default context: tracking on, training mode,
// debug checks off.
func NewContext() *Context {
	return &Context{cfg: Config{Tracking: true, Train: true}}
}

// Config returns the context's mode flags.
func (c *Context) Config() Config { return c.cfg }

// Tracking reports whether graph construction is enabled.
func (c *Context) Tracking() bool { return c.cfg.Tracking }

// WithNoGrad returns a context with gradient tracking disabled.
func (c *Context) WithNoGrad() *Context {
	d := *c
	d.cfg.Tracking = false
	return &d
}

// WithTracking returns a context with gradient tracking set to v.
func (c *Context) WithTracking(v bool) *Context {
	d := *c
	d.cfg.Tracking = v
	return &d
}

// WithTrain returns a context with training mode set to v.
func (c *Context) WithTrain(v bool) *Context {
	d := *c
	d.cfg.Train = v
	return &d
}

// WithDebug returns a context with debug validation set to v.
func (c *Context) WithDebug(v bool) *Context {
	d := *c
	d.cfg.Debug = v
	return &d
}

// WithRecorder returns a context whose operation calls are observed by
// r. The schedule compiler installs its recorder this way; passing nil
// detaches recording.
func (c *Context) WithRecorder(r Recorder) *Context {
	d := *c
	d.rec = r
	return &d
}

// Recorder returns the installed recorder, or nil.
func (c *Context) Recorder() Recorder { return c.rec }

// Recorder observes qualifying operation calls so the schedule compiler
// can build a replayable schedule. Implemented by internal/schedule;
// the graph engine only emits events.
type Recorder interface {
	// RecordApply is called after each successful forward computation.
	// copyBack flags outputs retained by the operator's gradient
	// formula: on replay those table slots must be refreshed by an
	// in-place copy rather than a reference swap.
	RecordApply(op Op, inputs, outputs []*array.RawArray, copyBack []bool)

	// BeginBackward/EndBackward bracket one backward pass so recorded
	// calls land in the per-depth call list (0 = forward, 1 = first
	// backward, 2 = double backward).
	BeginBackward()
	EndBackward()

	// RecordGradient binds a leaf's data array to its gradient array so
	// replayed backward passes can publish gradients without a graph.
	RecordGradient(leaf, grad *array.RawArray)
}
