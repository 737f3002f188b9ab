package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// expOp is the element-wise exponential. d(eˣ)/dx = eˣ, so the forward
// output is retained instead of the input.
type expOp struct{}

func (expOp) Name() string { return "exp" }

func (expOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("exp", inputs, 1)
}

func (expOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Exp(inputs[0])}, nil
}

func (expOp) RetainInputs() []int  { return nil }
func (expOp) RetainOutputs() []int { return []int{0} }

func (expOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	y := node.RetainedOutput(0)
	gx, err := Mul(ctx, gy, y)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Exp computes the element-wise exponential.
func Exp(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, expOp{}, x)
}
