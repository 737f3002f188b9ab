package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// sqrtOp is the element-wise square root. d(√x)/dx = 1/(2√x), so the
// forward output is retained.
type sqrtOp struct{}

func (sqrtOp) Name() string { return "sqrt" }

func (sqrtOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("sqrt", inputs, 1)
}

func (sqrtOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Sqrt(inputs[0])}, nil
}

func (sqrtOp) RetainInputs() []int  { return nil }
func (sqrtOp) RetainOutputs() []int { return []int{0} }

func (sqrtOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	y := node.RetainedOutput(0)
	if ctx.Config().Debug {
		warnIfZero("sqrt", y.Data())
	}
	t, err := Div(ctx, gy, y)
	if err != nil {
		return nil, err
	}
	gx, err := Scale(ctx, t, 0.5)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Sqrt computes the element-wise square root.
func Sqrt(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, sqrtOp{}, x)
}
