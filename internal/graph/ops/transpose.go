package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// transposeOp transposes a rank-2 matrix. Its gradient is the
// transposed output gradient.
type transposeOp struct{}

func (transposeOp) Name() string { return "transpose" }

func (transposeOp) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 1 {
		return graph.NewTypeCheckError("transpose", -1, "want 1 input, got %d", len(inputs))
	}
	if len(inputs[0].Shape) != 2 {
		return graph.NewTypeCheckError("transpose", 0, "ndim == 2, got %d", len(inputs[0].Shape))
	}
	if !inputs[0].DType.IsFloat() {
		return graph.NewTypeCheckError("transpose", 0, "dtype must be float, got %s", inputs[0].DType)
	}
	return nil
}

func (transposeOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Transpose2D(inputs[0])}, nil
}

func (transposeOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	gx, err := Transpose(ctx, gy)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Transpose transposes a rank-2 variable.
func Transpose(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, transposeOp{}, x)
}
