package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// addOp is element-wise addition. d(a+b)/da = 1, d(a+b)/db = 1.
type addOp struct{}

func (addOp) Name() string { return "add" }

func (addOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("add", inputs, 2)
}

func (addOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Add(inputs[0], inputs[1])}, nil
}

func (addOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(2), nil
	}
	return []*graph.Variable{gy, gy}, nil
}

// Add computes the element-wise sum of two variables.
func Add(ctx *graph.Context, a, b *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, addOp{}, a, b)
}
