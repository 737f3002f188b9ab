package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/array"
)

func f32(t *testing.T, data []float32, shape array.Shape) *array.RawArray {
	t.Helper()
	r, err := array.FromSlice(data, shape, array.CPU)
	require.NoError(t, err)
	return r
}

func f64(t *testing.T, data []float64, shape array.Shape) *array.RawArray {
	t.Helper()
	r, err := array.FromSlice(data, shape, array.CPU)
	require.NoError(t, err)
	return r
}

func TestRegistersOnInit(t *testing.T) {
	b, err := array.BackendFor(array.CPU)
	require.NoError(t, err)
	assert.Equal(t, "cpu", b.Name())
	assert.Equal(t, array.CPU, b.Device())
}

func TestElementwiseBinary(t *testing.T) {
	b := New()
	x := f32(t, []float32{1, 2, 3, 4}, array.Shape{4})
	y := f32(t, []float32{10, 20, 30, 40}, array.Shape{4})

	assert.Equal(t, []float32{11, 22, 33, 44}, b.Add(x, y).AsFloat32())
	assert.Equal(t, []float32{-9, -18, -27, -36}, b.Sub(x, y).AsFloat32())
	assert.Equal(t, []float32{10, 40, 90, 160}, b.Mul(x, y).AsFloat32())
	assert.Equal(t, []float32{0.1, 0.1, 0.1, 0.1}, b.Div(x, y).AsFloat32())
}

func TestElementwiseBinaryInt(t *testing.T) {
	b := New()
	x, err := array.FromSlice([]int64{3, 5}, array.Shape{2}, array.CPU)
	require.NoError(t, err)
	y, err := array.FromSlice([]int64{2, 2}, array.Shape{2}, array.CPU)
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 7}, b.Add(x, y).AsInt64())
	assert.Equal(t, []int64{6, 10}, b.Mul(x, y).AsInt64())
}

func TestElementwiseUnary(t *testing.T) {
	b := New()
	x := f64(t, []float64{0, 1}, array.Shape{2})

	exp := b.Exp(x).AsFloat64()
	assert.InDelta(t, 1.0, exp[0], 1e-12)
	assert.InDelta(t, math.E, exp[1], 1e-12)

	neg := b.Neg(x).AsFloat64()
	assert.Equal(t, []float64{0, -1}, neg)

	sig := b.Sigmoid(x).AsFloat64()
	assert.InDelta(t, 0.5, sig[0], 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-1)), sig[1], 1e-12)

	tanh := b.Tanh(x).AsFloat64()
	assert.InDelta(t, math.Tanh(1), tanh[1], 1e-12)
}

func TestUnaryFloat16(t *testing.T) {
	b := New()
	x, err := array.Float16FromSlice([]float32{4.0}, array.Shape{1}, array.CPU)
	require.NoError(t, err)

	out := b.Sqrt(x)
	assert.Equal(t, array.Float16, out.DType())
	assert.InDelta(t, 2.0, out.Float64At(0), 1e-3)
}

func TestScalarOps(t *testing.T) {
	b := New()
	x := f32(t, []float32{1, 2}, array.Shape{2})

	assert.Equal(t, []float32{3, 6}, b.Scale(x, 3).AsFloat32())
	assert.Equal(t, []float32{1.5, 2.5}, b.AddScalar(x, 0.5).AsFloat32())
}

func TestMatMulFloat32(t *testing.T) {
	b := New()
	// (2x3) @ (3x2)
	x := f32(t, []float32{1, 2, 3, 4, 5, 6}, array.Shape{2, 3})
	y := f32(t, []float32{7, 8, 9, 10, 11, 12}, array.Shape{3, 2})

	out := b.MatMul(x, y)
	require.True(t, out.Shape().Equal(array.Shape{2, 2}))
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMulFloat64(t *testing.T) {
	b := New()
	x := f64(t, []float64{1, 2, 3, 4}, array.Shape{2, 2})
	y := f64(t, []float64{5, 6, 7, 8}, array.Shape{2, 2})

	out := b.MatMul(x, y)
	assert.Equal(t, []float64{19, 22, 43, 50}, out.AsFloat64())
}

func TestTranspose2D(t *testing.T) {
	b := New()
	x := f32(t, []float32{1, 2, 3, 4, 5, 6}, array.Shape{2, 3})

	out := b.Transpose2D(x)
	require.True(t, out.Shape().Equal(array.Shape{3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestSumAndBroadcast(t *testing.T) {
	b := New()
	x := f64(t, []float64{1, 2, 3, 4}, array.Shape{2, 2})

	s := b.Sum(x)
	require.True(t, s.Shape().IsScalar())
	assert.InDelta(t, 10.0, s.Float64At(0), 1e-12)

	full := b.Broadcast(s, array.Shape{3})
	assert.Equal(t, []float64{10, 10, 10}, full.AsFloat64())
}

func TestCopyTo(t *testing.T) {
	b := New()
	src := f32(t, []float32{1, 2, 3}, array.Shape{3})
	dst := f32(t, []float32{0, 0, 0}, array.Shape{3})

	b.CopyTo(dst, src)
	assert.Equal(t, []float32{1, 2, 3}, dst.AsFloat32())

	bad := f32(t, []float32{0}, array.Shape{1})
	assert.Panics(t, func() { b.CopyTo(bad, src) })
}
