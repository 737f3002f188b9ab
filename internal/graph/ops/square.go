package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// squareOp is element-wise squaring. d(x²)/dx = 2x.
type squareOp struct{}

func (squareOp) Name() string { return "square" }

func (squareOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("square", inputs, 1)
}

func (squareOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Mul(inputs[0], inputs[0])}, nil
}

func (squareOp) RetainInputs() []int  { return []int{0} }
func (squareOp) RetainOutputs() []int { return nil }

func (squareOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	x := node.RetainedInput(0)
	t, err := Mul(ctx, gy, x)
	if err != nil {
		return nil, err
	}
	gx, err := Scale(ctx, t, 2)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Square computes the element-wise square.
func Square(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, squareOp{}, x)
}
