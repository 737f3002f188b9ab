package graph

import (
	"math"

	"github.com/ember-ml/ember/internal/array"
)

// accumOp sums two gradient contributions. The propagator expresses
// accumulation through Apply so that (a) double backprop sees it as a
// differentiable operation and (b) the schedule recorder captures it.
type accumOp struct{}

func (accumOp) Name() string { return "accumulate" }

func (accumOp) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 2 {
		return NewTypeCheckError("accumulate", -1, "want 2 inputs, got %d", len(inputs))
	}
	if !inputs[0].Shape.Equal(inputs[1].Shape) || inputs[0].DType != inputs[1].DType {
		return NewTypeCheckError("accumulate", 1, "gradient contributions must agree: %s%v vs %s%v",
			inputs[0].DType, inputs[0].Shape, inputs[1].DType, inputs[1].Shape)
	}
	return nil
}

func (accumOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Add(inputs[0], inputs[1])}, nil
}

func (accumOp) Backward(ctx *Context, node *FunctionNode, gradOutputs []*Variable) ([]*Variable, error) {
	return []*Variable{gradOutputs[0], gradOutputs[0]}, nil
}

// addGrads sums two gradient variables, tolerating nil on either side.
func addGrads(ctx *Context, a, b *Variable) (*Variable, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	return Apply1(ctx, accumOp{}, a, b)
}

// hasNaN scans a float array for NaN values. Debug mode only.
func hasNaN(r *array.RawArray) bool {
	switch r.DType() {
	case array.Float16:
		for _, v := range r.AsFloat16() {
			if v.IsNaN() {
				return true
			}
		}
	case array.Float32:
		for _, v := range r.AsFloat32() {
			if math.IsNaN(float64(v)) {
				return true
			}
		}
	case array.Float64:
		for _, v := range r.AsFloat64() {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}
