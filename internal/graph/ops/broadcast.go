package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// broadcastToOp expands a scalar to a full shape. It is the adjoint of
// sumOp: its gradient is the full reduction of the output gradient.
type broadcastToOp struct {
	shape array.Shape
}

func (op broadcastToOp) Name() string { return fmt.Sprintf("broadcast_to%v", op.shape) }

func (op broadcastToOp) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 1 {
		return graph.NewTypeCheckError("broadcast_to", -1, "want 1 input, got %d", len(inputs))
	}
	if !inputs[0].DType.IsFloat() {
		return graph.NewTypeCheckError("broadcast_to", 0, "dtype must be float, got %s", inputs[0].DType)
	}
	if !inputs[0].Shape.IsScalar() {
		return graph.NewTypeCheckError("broadcast_to", 0, "input must be scalar, got shape %v", inputs[0].Shape)
	}
	return nil
}

func (op broadcastToOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Broadcast(inputs[0], op.shape)}, nil
}

func (op broadcastToOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	gx, err := Sum(ctx, gy)
	if err != nil {
		return nil, err
	}
	// Shape the reduced gradient like the scalar input (it may be
	// rank-0 or [1]).
	inShape := node.Inputs()[0].Data().Shape()
	if !gx.Data().Shape().Equal(inShape) {
		gx, err = Reshape(ctx, gx, inShape)
		if err != nil {
			return nil, err
		}
	}
	return []*graph.Variable{gx}, nil
}

// BroadcastTo expands a scalar variable to the given shape.
func BroadcastTo(ctx *graph.Context, x *graph.Variable, shape array.Shape) (*graph.Variable, error) {
	return graph.Apply1(ctx, broadcastToOp{shape: shape.Clone()}, x)
}
