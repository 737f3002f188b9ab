package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// divOp is element-wise division.
//
// d(a/b)/da = 1/b
// d(a/b)/db = -a/b²
type divOp struct{}

func (divOp) Name() string { return "div" }

func (divOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("div", inputs, 2)
}

func (divOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Div(inputs[0], inputs[1])}, nil
}

func (divOp) RetainInputs() []int  { return []int{0, 1} }
func (divOp) RetainOutputs() []int { return nil }

func (divOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(2), nil
	}
	a := node.RetainedInput(0)
	b := node.RetainedInput(1)

	ga, err := Div(ctx, gy, b)
	if err != nil {
		return nil, err
	}
	// gb = -gy * a / b²
	bb, err := Mul(ctx, b, b)
	if err != nil {
		return nil, err
	}
	t, err := Mul(ctx, gy, a)
	if err != nil {
		return nil, err
	}
	t, err = Div(ctx, t, bb)
	if err != nil {
		return nil, err
	}
	gb, err := Neg(ctx, t)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{ga, gb}, nil
}

// Div computes the element-wise quotient a / b.
func Div(ctx *graph.Context, a, b *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, divOp{}, a, b)
}
