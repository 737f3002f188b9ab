package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// reshapeOp reinterprets an array under a new shape of equal element
// count. Forward is a storage-sharing view; backward reshapes the
// gradient back to the input's shape.
type reshapeOp struct {
	shape array.Shape
}

func (op reshapeOp) Name() string { return fmt.Sprintf("reshape%v", op.shape) }

func (op reshapeOp) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 1 {
		return graph.NewTypeCheckError("reshape", -1, "want 1 input, got %d", len(inputs))
	}
	if inputs[0].Shape.NumElements() != op.shape.NumElements() {
		return graph.NewTypeCheckError("reshape", 0, "element count must be preserved: %v -> %v",
			inputs[0].Shape, op.shape)
	}
	return nil
}

func (op reshapeOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	out, err := inputs[0].View(op.shape)
	if err != nil {
		return nil, err
	}
	return []*array.RawArray{out}, nil
}

func (op reshapeOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	gx, err := Reshape(ctx, gy, node.Inputs()[0].Data().Shape())
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Reshape returns a view of x with the given shape.
func Reshape(ctx *graph.Context, x *graph.Variable, shape array.Shape) (*graph.Variable, error) {
	return graph.Apply1(ctx, reshapeOp{shape: shape.Clone()}, x)
}
