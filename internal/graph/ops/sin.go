package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// sinOp is the element-wise sine. d(sin x)/dx = cos x.
type sinOp struct{}

func (sinOp) Name() string { return "sin" }

func (sinOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("sin", inputs, 1)
}

func (sinOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Sin(inputs[0])}, nil
}

func (sinOp) RetainInputs() []int  { return []int{0} }
func (sinOp) RetainOutputs() []int { return nil }

func (sinOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	c, err := Cos(ctx, node.RetainedInput(0))
	if err != nil {
		return nil, err
	}
	gx, err := Mul(ctx, gy, c)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Sin computes the element-wise sine.
func Sin(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, sinOp{}, x)
}
