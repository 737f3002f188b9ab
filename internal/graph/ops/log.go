package ops

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// logOp is the element-wise natural logarithm. d(log x)/dx = 1/x.
type logOp struct{}

func (logOp) Name() string { return "log" }

func (logOp) CheckTypes(inputs []array.Spec) error {
	return checkFloats("log", inputs, 1)
}

func (logOp) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Log(inputs[0])}, nil
}

func (logOp) RetainInputs() []int  { return []int{0} }
func (logOp) RetainOutputs() []int { return nil }

func (logOp) Backward(ctx *graph.Context, node *graph.FunctionNode, gradOutputs []*graph.Variable) ([]*graph.Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return nilGrads(1), nil
	}
	x := node.RetainedInput(0)
	if ctx.Config().Debug {
		warnIfZero("log", x.Data())
	}
	gx, err := Div(ctx, gy, x)
	if err != nil {
		return nil, err
	}
	return []*graph.Variable{gx}, nil
}

// Log computes the element-wise natural logarithm.
func Log(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
	return graph.Apply1(ctx, logOp{}, x)
}
