package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// scaleOp multiplies every element by a constant.
type scaleOp struct {
	s float64
}

func (op scaleOp) Name() string { return fmt.Sprintf("scale(%g)", op.s) }

func (op scaleOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("scale", inputs, 1)
}

func (op scaleOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Scale(inputs[0], op.s)}, nil
}

func (op scaleOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	gx, err := Scale(ctx, gy, op.s)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Scale multiplies a variable by the scalar constant s.
func Scale(ctx *graph.Context, x *graph.Variable, s float64) (*graph.Variable, error) {
	return graph.Apply1(ctx, scaleOp{s: s}, x)
}
