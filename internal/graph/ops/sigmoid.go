package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// sigmoidOp is the logistic function σ(x) = 1/(1+e⁻ˣ).
//
// dσ/dx = σ(x)(1 - σ(x)): the formula needs the forward output, not the
// input, which is exactly the identity-preserving retention case.
type sigmoidOp struct{}

func (sigmoidOp) Name() string { return "sigmoid" }

func (sigmoidOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("sigmoid", inputs, 1)
}

func (sigmoidOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Sigmoid(inputs[0])}, nil
}

func (sigmoidOp) RetainInputs() []int  { return nil }
func (sigmoidOp) RetainOutputs() []int { return []int{0} }

func (sigmoidOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	y := node.RetainedOutput(0)
	// 1 - y
	ny, err := Neg(ctx, y)
	if err != nil {
		return nil, err
	}
	oneMinus, err := AddScalar(ctx, ny, 1)
	if err != nil {
		return nil, err
	}
	t, err := Mul(ctx, y, oneMinus)
	if err != nil {
		return nil, err
	}
	gx, err := Mul(ctx, gy, t)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Sigmoid computes the element-wise logistic function.
func Sigmoid(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, sigmoidOp{}, x)
}
