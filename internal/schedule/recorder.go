package schedule

import (
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// recorder captures operation applications into a Schedule while a
// tracing iteration runs. It implements graph.Recorder.
//
// depth tracks how many backward propagations are in flight: calls made
// at depth 0 are the forward pass, depth 1 the backward pass, depth 2
// the double-backward pass, and so on. Gradient accumulation runs
// through the same apply path, so accumulate calls land in the pass
// that produced them and stay differentiable on replay.
type recorder struct {
	sched *Schedule
	depth int
}

var _ graph.Recorder = (*recorder)(nil)

func (r *recorder) RecordApply(op graph.Op, inputs, outputs []*array.RawArray, copyBack []bool) {
	c := call{op: op, device: inputs[0].Device()}
	c.pre = make([]hook, len(inputs))
	for i, in := range inputs {
		c.pre[i] = hook{pos: i, slot: r.sched.intern(in)}
	}
	c.post = make([]hook, len(outputs))
	for i, out := range outputs {
		// An output already present in the table is a passthrough of an
		// earlier array; interning keeps the slot stable either way.
		c.post[i] = hook{pos: i, slot: r.sched.intern(out), copyBack: copyBack[i]}
	}
	r.sched.passes[r.depth] = append(r.sched.passes[r.depth], c)
	if klog.V(4).Enabled() {
		klog.Infof("schedule %s record: pass=%d op=%s in=%d out=%d",
			r.sched.id, r.depth, op.Name(), len(inputs), len(outputs))
	}
}

func (r *recorder) BeginBackward() {
	r.depth++
	for len(r.sched.passes) <= r.depth {
		r.sched.passes = append(r.sched.passes, nil)
	}
}

func (r *recorder) EndBackward() {
	r.depth--
}

func (r *recorder) RecordGradient(leaf, grad *array.RawArray) {
	r.sched.bindings = append(r.sched.bindings, gradBinding{
		depth:    r.depth,
		leafSlot: r.sched.intern(leaf),
		gradSlot: r.sched.intern(grad),
	})
}
