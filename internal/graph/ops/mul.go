package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// mulOp is element-wise multiplication. The gradient formula needs the
// concrete input values, so both inputs are declared retained.
type mulOp struct{}

func (mulOp) Name() string { return "mul" }

func (mulOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("mul", inputs, 2)
}

func (mulOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Mul(inputs[0], inputs[1])}, nil
}

func (mulOp) RetainInputs() []int  { return []int{0, 1} }
func (mulOp) RetainOutputs() []int { return nil }

func (mulOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(2), nil
	}
	a := node.RetainedInput(0)
	b := node.RetainedInput(1)
	ga, err := Mul(ctx, gy, b)
	if err != nil {
		return nil, err
	}
	gb, err := Mul(ctx, gy, a)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{ga, gb}, nil
}

// Mul computes the element-wise product of two variables.
func Mul(ctx *graph.Context, a, b *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, mulOp{}, a, b)
}
