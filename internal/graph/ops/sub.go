package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// subOp is element-wise subtraction.
type subOp struct{}

func (subOp) Name() string { return "sub" }

func (subOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("sub", inputs, 2)
}

func (subOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Sub(inputs[0], inputs[1])}, nil
}

func (subOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(2), nil
	}
	gb, err := Neg(ctx, gy)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gy, gb}, nil
}

// Sub computes the element-wise difference a - b.
func Sub(ctx *graph.Context, a, b *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, subOp{}, a, b)
}
