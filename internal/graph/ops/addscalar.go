package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// addScalarOp adds a constant to every element.
type addScalarOp struct {
	s float64
}

func (op addScalarOp) Name() string { return fmt.Sprintf("add_scalar(%g)", op.s) }

func (op addScalarOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("add_scalar", inputs, 1)
}

func (op addScalarOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.AddScalar(inputs[0], op.s)}, nil
}

func (op addScalarOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	return []*graph.Variable{gy}, nil
}

// AddScalar adds the scalar constant s to a variable.
func AddScalar(ctx *graph.Context, x *graph.Variable, s float64) (*graph.Variable, error) {
	return graph.Apply1(ctx, addScalarOp{s: s}, x)
}
