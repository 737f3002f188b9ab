package graph

import (
	"fmt"
	"weak"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/array"
)

// Apply runs one operation through the graph builder: type check,
// backend dispatch, forward computation, and (when tracking is enabled
// and any input requires a gradient) wiring of a function node with
// weak output references and declared retention.
func Apply(ctx *Context, op Op, inputs ...*Variable) ([]*Variable, error) {
	if len(inputs) == 0 {
		return nil, errors.Errorf("%s: apply requires at least one input", op.Name())
	}

	specs := make([]array.Spec, len(inputs))
	device := inputs[0].Data().Device()
	for i, in := range inputs {
		if in.Data() == nil {
			return nil, errors.Errorf("%s: input[%d] has no array (pending value)", op.Name(), i)
		}
		if in.Data().Device() != device {
			return nil, NewTypeCheckError(op.Name(), i,
				"all inputs must share one device, got %s and %s", device, in.Data().Device())
		}
		specs[i] = array.SpecOf(in.Data())
	}
	if err := op.CheckTypes(specs); err != nil {
		return nil, err
	}

	// Backend dispatch is a capability lookup on the device tag.
	be, err := array.BackendFor(device)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: backend dispatch", op.Name())
	}

	raws := make([]*array.RawArray, len(inputs))
	for i, in := range inputs {
		raws[i] = in.Data()
	}
	outs, err := op.Forward(be, raws)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: forward", op.Name())
	}
	if len(outs) == 0 {
		return nil, errors.Errorf("%s: forward produced no outputs", op.Name())
	}

	retainIn, retainOut := retention(op)
	validateRetention(op.Name(), retainIn, len(inputs), "input")
	validateRetention(op.Name(), retainOut, len(outs), "output")

	tracking := ctx.Tracking() && anyRequiresGrad(inputs)

	outputs := make([]*Variable, len(outs))
	if !tracking {
		// Pure computation: plain output variables, no node attached.
		for i, raw := range outs {
			outputs[i] = &Variable{data: raw, requiresGrad: false}
		}
	} else {
		node := &FunctionNode{
			op:          op,
			inputs:      inputs,
			rank:        1 + maxRank(inputs),
			retainIn:    retainIn,
			retainOut:   retainOut,
			retainedOut: map[int]*Variable{},
			outputSpecs: make([]array.Spec, len(outs)),
			outputs:     make([]weak.Pointer[Variable], len(outs)),
		}
		for i, raw := range outs {
			v := &Variable{
				data:         raw,
				creator:      node,
				rank:         node.rank,
				requiresGrad: raw.DType().IsFloat(),
			}
			outputs[i] = v
			node.outputs[i] = weak.Make(v)
			node.outputSpecs[i] = array.SpecOf(raw)
		}
		for _, i := range retainOut {
			node.retainedOut[i] = outputs[i]
		}
		if klog.V(3).Enabled() {
			klog.Infof("apply %s rank=%d inputs=%d outputs=%d", op.Name(), node.rank, len(inputs), len(outs))
		}
	}

	if rec := ctx.Recorder(); rec != nil {
		copyBack := make([]bool, len(outs))
		for _, i := range retainOut {
			copyBack[i] = true
		}
		rec.RecordApply(op, raws, outs, copyBack)
	}
	return outputs, nil
}

// Apply1 is Apply for the common single-output case.
func Apply1(ctx *Context, op Op, inputs ...*Variable) (*Variable, error) {
	outs, err := Apply(ctx, op, inputs...)
	if err != nil {
		return nil, err
	}
	if len(outs) != 1 {
		return nil, errors.Errorf("%s: expected a single output, got %d", op.Name(), len(outs))
	}
	return outs[0], nil
}

func validateRetention(op string, idx []int, n int, kind string) {
	for _, i := range idx {
		if i < 0 || i >= n {
			// Programming contract violation: fail fast.
			panic(fmt.Sprintf("%s: retention of %s %d out of range (have %d)", op, kind, i, n))
		}
	}
}

func anyRequiresGrad(inputs []*Variable) bool {
	for _, in := range inputs {
		if in.requiresGrad {
			return true
		}
	}
	return false
}

func maxRank(inputs []*Variable) int {
	r := 0
	for _, in := range inputs {
		if in.rank > r {
			r = in.rank
		}
	}
	return r
}
