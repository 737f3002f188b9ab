// Package ops implements the built-in operator catalog against the
// graph core's plug-in contract. One file per operator, following the
// layout of the autodiff packages this engine grew out of.
//
// Every backward formula is written in terms of other operators applied
// through graph.Apply, so a backward pass executed with tracking
// enabled produces a differentiable graph (double backprop).
package ops

import (
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// checkFloats validates that there are exactly n inputs, all
// floating-point with identical shape and dtype.
func checkFloats(op string, inputs []array.Spec, n int) error {
	if len(inputs) != n {
		return graph.NewTypeCheckError(op, -1, "want %d inputs, got %d", n, len(inputs))
	}
	for i, in := range inputs {
		if !in.DType.IsFloat() {
			return graph.NewTypeCheckError(op, i, "dtype must be float, got %s", in.DType)
		}
	}
	for i := 1; i < len(inputs); i++ {
		if inputs[i].DType != inputs[0].DType {
			return graph.NewTypeCheckError(op, i, "dtype %s != input[0] dtype %s",
				inputs[i].DType, inputs[0].DType)
		}
		if !inputs[i].Shape.Equal(inputs[0].Shape) {
			return graph.NewTypeCheckError(op, i, "shape %v != input[0] shape %v",
				inputs[i].Shape, inputs[0].Shape)
		}
	}
	return nil
}

// nilGrads is the all-nil gradient result used when no gradient flows
// through an operation's output.
func nilGrads(n int) []*graph.Variable {
	return make([]*graph.Variable, n)
}

// warnIfZero emits a NumericalWarning when the array contains a zero
// and the derivative is undefined there. Non-fatal: the computation
// proceeds with the operator's documented convention.
func warnIfZero(op string, r *array.RawArray) {
	if !r.DType().IsFloat() {
		return
	}
	for i := 0; i < r.NumElements(); i++ {
		if r.Float64At(i) == 0 {
			klog.Warningf("NumericalWarning: %s derivative is undefined at 0 (element %d)", op, i)
			return
		}
	}
}
