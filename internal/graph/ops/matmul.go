package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// matMulOp multiplies two rank-2 matrices.
//
// d(A@B)/dA = grad @ Bᵀ
// d(A@B)/dB = Aᵀ @ grad
type matMulOp struct{}

func (matMulOp) Name() string { return "matmul" }

func (matMulOp) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 2 {
		return graph.NewTypeCheckError("matmul", -1, "want 2 inputs, got %d", len(inputs))
	}
	for i, in := range inputs {
		if len(in.Shape) != 2 {
			return graph.NewTypeCheckError("matmul", i, "ndim == 2, got %d", len(in.Shape))
		}
		if in.DType != array.Float32 && in.DType != array.Float64 {
			return graph.NewTypeCheckError("matmul", i, "dtype must be float32 or float64, got %s", in.DType)
		}
	}
	if inputs[0].DType != inputs[1].DType {
		return graph.NewTypeCheckError("matmul", 1, "dtype %s != input[0] dtype %s",
			inputs[1].DType, inputs[0].DType)
	}
	if inputs[0].Shape[1] != inputs[1].Shape[0] {
		return graph.NewTypeCheckError("matmul", 1, "inner dimensions must agree: %v @ %v",
			inputs[0].Shape, inputs[1].Shape)
	}
	return nil
}

func (matMulOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.MatMul(inputs[0], inputs[1])}, nil
}

func (matMulOp) RetainInputs() []int  { return []int{0, 1} }
func (matMulOp) RetainOutputs() []int { return nil }

func (matMulOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(2), nil
	}
	a := node.RetainedInput(0)
	b := node.RetainedInput(1)

	bt, err := Transpose(ctx, b)
	if err != nil {
		return nil, err
	}
	ga, err := MatMul(ctx, gy, bt)
	if err != nil {
		return nil, err
	}
	at, err := Transpose(ctx, a)
	if err != nil {
		return nil, err
	}
	gb, err := MatMul(ctx, at, gy)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{ga, gb}, nil
}

// MatMul multiplies two rank-2 variables.
func MatMul(ctx *graph.Context, a, b *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, matMulOp{}, a, b)
}
