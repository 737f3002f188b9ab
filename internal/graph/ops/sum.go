package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// sumOp reduces an array to a scalar. Its gradient broadcasts the
// scalar output gradient back to the input's shape.
type sumOp struct{}

func (sumOp) Name() string { return "sum" }

func (sumOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("sum", inputs, 1)
}

func (sumOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Sum(inputs[0])}, nil
}

func (sumOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	gx, err := BroadcastTo(ctx, gy, node.Inputs()[0].Data().Shape())
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Sum reduces a variable to a rank-0 scalar.
func Sum(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, sumOp{}, x)
}
