package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// cosOp is the element-wise cosine. d(cos x)/dx = -sin x.
type cosOp struct{}

func (cosOp) Name() string { return "cos" }

func (cosOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("cos", inputs, 1)
}

func (cosOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Cos(inputs[0])}, nil
}

func (cosOp) RetainInputs() []int  { return []int{0} }
func (cosOp) RetainOutputs() []int { return nil }

func (cosOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	s, err := Sin(ctx, node.RetainedInput(0))
	if err != nil {
		return nil, err
	}
	t, err := Mul(ctx, gy, s)
	if err != nil {
		return nil, err
	}
	gx, err := Neg(ctx, t)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Cos computes the element-wise cosine.
func Cos(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, cosOp{}, x)
}
