package schedule

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// TraceFunc is the computation a Compiler manages. It is executed
// define-by-run on the tracing iteration and replayed from the recorded
// schedule afterwards, so it must be shape-static: the same inputs
// signature must produce the same operation sequence.
type TraceFunc func(ctx *graph.Context, inputs []*graph.Variable) ([]*graph.Variable, error)

// Compiler caches replayable schedules for one computation, keyed by
// input signature and mode flags. The first Forward per key traces and
// records; FinishIteration builds the schedule; later Forwards with the
// same key replay it without constructing a graph.
type Compiler struct {
	name string
	fn   TraceFunc

	mu      sync.Mutex
	entries map[string]*entry
	// In-flight training replays of this iteration, keyed by entry, so
	// FinishIteration can return them to the pool.
	loaned map[*entry][]*Schedule
	// The entry currently tracing, if any. One trace per iteration.
	tracing *entry
}

// entry is one cache slot: the built schedule plus its instance pool.
type entry struct {
	key      string
	state    State
	template *Schedule
	free     []*Schedule
}

// NewCompiler wraps fn in a schedule compiler. The name is used in logs.
func NewCompiler(name string, fn TraceFunc) *Compiler {
	return &Compiler{
		name:    name,
		fn:      fn,
		entries: map[string]*entry{},
		loaned:  map[*entry][]*Schedule{},
	}
}

// Key derives the cache key for a set of input specs under the given
// mode flags. Schedules traced in training mode are never replayed in
// evaluation mode or vice versa.
func Key(cfg graph.Config, specs []array.Spec) string {
	var b strings.Builder
	for i, s := range specs {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s%v", s.DType, s.Shape)
	}
	fmt.Fprintf(&b, "|train=%t|track=%t", cfg.Train, cfg.Tracking)
	return b.String()
}

// StateFor reports the lifecycle state of the cache entry for key.
func (c *Compiler) StateFor(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return Empty
}

// NumCached returns how many distinct signatures have been traced.
func (c *Compiler) NumCached() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Run is one invocation of the compiled computation: either the tracing
// execution or a replay. Backward and Gradient go through the Run so
// trace and replay iterations share one call pattern.
type Run struct {
	c       *Compiler
	entry   *entry
	outs    []*graph.Variable
	tracing bool

	// trace-iteration state
	tctx *graph.Context
	rec  *recorder

	// replay state
	sched *Schedule

	backwards int
}

// Forward runs the computation. The first call for a given input
// signature traces fn and records its schedule; subsequent calls replay
// the schedule directly against the backends.
func (c *Compiler) Forward(ctx *graph.Context, inputs []*graph.Variable) (*Run, error) {
	raws := make([]*array.RawArray, len(inputs))
	specs := make([]array.Spec, len(inputs))
	for i, in := range inputs {
		raws[i] = in.Data()
		specs[i] = array.SpecOf(in.Data())
	}
	key := Key(ctx.Config(), specs)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key}
		c.entries[key] = e
	}
	c.mu.Unlock()

	switch e.state {
	case Built, Replaying:
		return c.replay(ctx, e, raws)
	case Tracing:
		return nil, errors.Wrapf(ErrWrongState, "%s: key %q is still tracing; FinishIteration must run first", c.name, key)
	default:
		return c.trace(ctx, e, inputs, raws)
	}
}

func (c *Compiler) trace(ctx *graph.Context, e *entry, inputs []*graph.Variable, raws []*array.RawArray) (*Run, error) {
	if ctx.Recorder() != nil {
		return nil, errors.Wrapf(ErrNestedTrace, "%s", c.name)
	}
	c.mu.Lock()
	if c.tracing != nil {
		c.mu.Unlock()
		return nil, errors.Wrapf(ErrWrongState, "%s: key %q traced while %q is still tracing; FinishIteration must run first",
			c.name, e.key, c.tracing.key)
	}
	c.mu.Unlock()
	klog.V(1).Infof("schedule: %s tracing key %q", c.name, e.key)

	sched := newSchedule(e.key)
	sched.markInputs(raws)
	rec := &recorder{sched: sched}
	tctx := ctx.WithRecorder(rec)

	outs, err := c.fn(tctx, inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "schedule: %s: tracing", c.name)
	}
	outRaws := make([]*array.RawArray, len(outs))
	for i, o := range outs {
		outRaws[i] = o.Data()
	}
	sched.markOutputs(outRaws)

	c.mu.Lock()
	e.state = Tracing
	e.template = sched
	c.tracing = e
	c.mu.Unlock()

	return &Run{c: c, entry: e, outs: outs, tracing: true, tctx: tctx, rec: rec}, nil
}

func (c *Compiler) replay(ctx *graph.Context, e *entry, raws []*array.RawArray) (*Run, error) {
	if ctx.Recorder() != nil {
		// A replay inside another trace would leave the outer schedule
		// blind to these operations.
		return nil, errors.Wrapf(ErrNestedTrace, "%s", c.name)
	}

	c.mu.Lock()
	var sched *Schedule
	if !ctx.Config().Train {
		// Evaluation replays reuse the built instance freely.
		sched = e.template
	} else if n := len(e.free); n > 0 {
		sched = e.free[n-1]
		e.free = e.free[:n-1]
		c.loaned[e] = append(c.loaned[e], sched)
	} else {
		sched = e.template.clone()
		c.loaned[e] = append(c.loaned[e], sched)
		klog.V(2).Infof("schedule: %s pool empty for key %q, cloned instance %s", c.name, e.key, sched.id)
	}
	e.state = Replaying
	c.mu.Unlock()

	if err := sched.setInputs(raws); err != nil {
		return nil, err
	}
	if err := sched.runPass(0); err != nil {
		return nil, err
	}
	outs := make([]*graph.Variable, 0, len(sched.outputSlots))
	for _, raw := range sched.outputs() {
		outs = append(outs, graph.New(raw))
	}
	return &Run{c: c, entry: e, outs: outs, sched: sched}, nil
}

// Outputs returns the computation's outputs for this run. Replay
// outputs carry no creator: the graph was never built.
func (r *Run) Outputs() []*graph.Variable { return r.outs }

// Context returns the context the run executes under; during tracing it
// carries the recorder, so callers composing extra operations (losses,
// penalties) inside the region must use it.
func (r *Run) Context(ctx *graph.Context) *graph.Context {
	if r.tracing {
		return r.tctx
	}
	return ctx
}

// Schedule returns the replay instance backing this run, or nil during
// the tracing iteration.
func (r *Run) Schedule() *Schedule {
	if r.tracing {
		return nil
	}
	return r.sched
}

// Backward runs (and on the tracing iteration, records) the next
// backward pass: the first call is the backward of the outputs, the
// second differentiates the first's gradients (double backward), and so
// on. On replay the recorded pass at that depth is executed.
func (r *Run) Backward(outputs []*graph.Variable, opts graph.BackwardOptions) ([]*graph.Variable, error) {
	r.backwards++
	if r.tracing {
		// Deeper passes re-enter the propagator at the top level; aim
		// the recorder at the matching pass list.
		r.rec.depth = r.backwards - 1
		return graph.Backward(r.tctx, outputs, opts)
	}
	if err := r.sched.runPass(r.backwards); err != nil {
		return nil, err
	}
	if len(opts.Targets) == 0 {
		return nil, nil
	}
	grads := make([]*graph.Variable, len(opts.Targets))
	for i, t := range opts.Targets {
		grads[i] = r.Gradient(t)
	}
	return grads, nil
}

// Gradient returns the gradient published for v by the most recent
// backward pass of this run, or nil if none. During tracing it reads
// v's accumulated gradient; during replay it resolves the recorded
// leaf-to-gradient binding.
func (r *Run) Gradient(v *graph.Variable) *graph.Variable {
	if r.tracing {
		return v.Grad()
	}
	raw := r.sched.gradArray(v.Data(), r.backwards)
	if raw == nil {
		return nil
	}
	return graph.New(raw)
}

// FinishIteration ends the current training iteration: a traced
// schedule is built and becomes the pool template, and replay instances
// handed out this iteration are returned to their pools.
func (c *Compiler) FinishIteration() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.tracing; e != nil {
		e.template.build()
		e.free = append(e.free, e.template)
		e.state = Built
		c.tracing = nil
	}
	for e, scheds := range c.loaned {
		e.free = append(e.free, scheds...)
		e.state = Built
		delete(c.loaned, e)
	}
}
