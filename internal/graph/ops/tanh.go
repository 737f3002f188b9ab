package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// tanhOp is the hyperbolic tangent. d(tanh x)/dx = 1 - tanh²x, computed
// from the retained forward output.
type tanhOp struct{}

func (tanhOp) Name() string { return "tanh" }

func (tanhOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("tanh", inputs, 1)
}

func (tanhOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Tanh(inputs[0])}, nil
}

func (tanhOp) RetainInputs() []int  { return nil }
func (tanhOp) RetainOutputs() []int { return []int{0} }

func (tanhOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	y := node.RetainedOutput(0)
	yy, err := Mul(ctx, y, y)
	if err != nil {
		return nil, err
	}
	t, err := Neg(ctx, yy)
	if err != nil {
		return nil, err
	}
	t, err = AddScalar(ctx, t, 1)
	if err != nil {
		return nil, err
	}
	gx, err := Mul(ctx, gy, t)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Tanh computes the element-wise hyperbolic tangent.
func Tanh(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, tanhOp{}, x)
}
