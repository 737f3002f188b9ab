package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// negOp is element-wise negation.
type negOp struct{}

func (negOp) Name() string { return "neg" }

func (negOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("neg", inputs, 1)
}

func (negOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Neg(inputs[0])}, nil
}

func (negOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	gx, err := Neg(ctx, gy)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Neg negates a variable element-wise.
func Neg(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, negOp{}, x)
}
