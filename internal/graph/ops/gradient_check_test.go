package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/array"
	_ "github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/graph"
)

type unaryFn func(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error)

func scalarVar(t *testing.T, v float64) *graph.Variable {
	t.Helper()
	raw, err := array.Scalar64(v, array.Float64, array.CPU)
	require.NoError(t, err)
	return graph.New(raw)
}

func scalar32Var(t *testing.T, v float64) *graph.Variable {
	t.Helper()
	raw, err := array.Scalar64(v, array.Float32, array.CPU)
	require.NoError(t, err)
	return graph.New(raw)
}

// numericalGrad estimates df/dx at x0 by central difference, with graph
// construction off.
func numericalGrad(t *testing.T, f unaryFn, mk func(*testing.T, float64) *graph.Variable, x0, h float64) float64 {
	t.Helper()
	ctx := graph.NewContext().WithNoGrad()
	eval := func(v float64) float64 {
		y, err := f(ctx, mk(t, v))
		require.NoError(t, err)
		return y.Data().Float64At(0)
	}
	return (eval(x0+h) - eval(x0-h)) / (2 * h)
}

// analyticalGrad runs a real backward pass and reads the leaf gradient.
func analyticalGrad(t *testing.T, f unaryFn, mk func(*testing.T, float64) *graph.Variable, x0 float64) float64 {
	t.Helper()
	ctx := graph.NewContext()
	x := mk(t, x0)
	y, err := f(ctx, x)
	require.NoError(t, err)
	require.NoError(t, y.Backward(ctx))
	require.NotNil(t, x.Grad())
	return x.GradArray().Float64At(0)
}

var unaryGradCases = []struct {
	name string
	f    unaryFn
	x0   float64
}{
	{"exp", Exp, 0.5},
	{"log", Log, 0.7},
	{"sqrt", Sqrt, 0.9},
	{"sin", Sin, 0.6},
	{"cos", Cos, 0.6},
	{"tanh", Tanh, 0.4},
	{"sigmoid", Sigmoid, 0.3},
	{"square", Square, 1.2},
	{"neg", Neg, 0.8},
	{"scale", func(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
		return Scale(ctx, x, 2.5)
	}, 0.8},
	{"add_scalar", func(ctx *graph.Context, x *graph.Variable) (*graph.Variable, error) {
		return AddScalar(ctx, x, 1.5)
	}, 0.8},
}

func TestUnaryGradientsFloat64(t *testing.T) {
	for _, tt := range unaryGradCases {
		t.Run(tt.name, func(t *testing.T) {
			want := numericalGrad(t, tt.f, scalarVar, tt.x0, 1e-6)
			got := analyticalGrad(t, tt.f, scalarVar, tt.x0)
			assert.InDelta(t, want, got, 1e-5)
		})
	}
}

func TestUnaryGradientsFloat32(t *testing.T) {
	for _, tt := range unaryGradCases {
		t.Run(tt.name, func(t *testing.T) {
			// Wider step and tolerance: single-precision storage limits
			// the finite-difference resolution.
			want := numericalGrad(t, tt.f, scalar32Var, tt.x0, 1e-3)
			got := analyticalGrad(t, tt.f, scalar32Var, tt.x0)
			assert.InDelta(t, want, got, 5e-3)
		})
	}
}

func TestBinaryGradients(t *testing.T) {
	tests := []struct {
		name   string
		f      func(ctx *graph.Context, a, b *graph.Variable) (*graph.Variable, error)
		ga, gb float64 // analytic at a=1.3, b=0.7
	}{
		{"add", Add, 1, 1},
		{"sub", Sub, 1, -1},
		{"mul", Mul, 0.7, 1.3},
		{"div", Div, 1 / 0.7, -1.3 / (0.7 * 0.7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := graph.NewContext()
			a := scalarVar(t, 1.3)
			b := scalarVar(t, 0.7)
			y, err := tt.f(ctx, a, b)
			require.NoError(t, err)
			require.NoError(t, y.Backward(ctx))
			assert.InDelta(t, tt.ga, a.GradArray().Float64At(0), 1e-12)
			assert.InDelta(t, tt.gb, b.GradArray().Float64At(0), 1e-12)
		})
	}
}

func TestSinDoubleBackward(t *testing.T) {
	// d2/dx2 sin(x) = -sin(x).
	ctx := graph.NewContext()
	x := scalarVar(t, 0.9)
	y, err := Sin(ctx, x)
	require.NoError(t, err)

	grads, err := graph.Backward(ctx, []*graph.Variable{y}, graph.BackwardOptions{
		Targets:     []*graph.Variable{x},
		CreateGraph: true,
	})
	require.NoError(t, err)
	gx := grads[0]
	assert.InDelta(t, math.Cos(0.9), gx.Data().Float64At(0), 1e-12)

	grads2, err := graph.Backward(ctx, []*graph.Variable{gx}, graph.BackwardOptions{
		Targets: []*graph.Variable{x},
	})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.9), grads2[0].Data().Float64At(0), 1e-12)
}

func TestExpDoubleBackward(t *testing.T) {
	// Every derivative of exp is exp; exercises retained-output ops
	// under CreateGraph.
	ctx := graph.NewContext()
	x := scalarVar(t, 0.4)
	y, err := Exp(ctx, x)
	require.NoError(t, err)

	grads, err := graph.Backward(ctx, []*graph.Variable{y}, graph.BackwardOptions{
		Targets:     []*graph.Variable{x},
		CreateGraph: true,
	})
	require.NoError(t, err)

	grads2, err := graph.Backward(ctx, []*graph.Variable{grads[0]}, graph.BackwardOptions{
		Targets: []*graph.Variable{x},
	})
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(0.4), grads2[0].Data().Float64At(0), 1e-12)
}

func TestTanhSecondDerivative(t *testing.T) {
	// d2/dx2 tanh = -2 tanh (1 - tanh^2).
	ctx := graph.NewContext()
	x := scalarVar(t, 0.25)
	y, err := Tanh(ctx, x)
	require.NoError(t, err)

	grads, err := graph.Backward(ctx, []*graph.Variable{y}, graph.BackwardOptions{
		Targets:     []*graph.Variable{x},
		CreateGraph: true,
	})
	require.NoError(t, err)

	grads2, err := graph.Backward(ctx, []*graph.Variable{grads[0]}, graph.BackwardOptions{
		Targets: []*graph.Variable{x},
	})
	require.NoError(t, err)

	th := math.Tanh(0.25)
	assert.InDelta(t, -2*th*(1-th*th), grads2[0].Data().Float64At(0), 1e-10)
}
