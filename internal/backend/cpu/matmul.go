package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/parallel"
)

// MatMul multiplies two rank-2 arrays: [M, K] @ [K, N] -> [M, N].
// float64 goes through gonum/mat, float32 through gonum/blas/blas32.
func (b *CPUBackend) MatMul(x, y *array.RawArray) *array.RawArray {
	xs, ys := x.Shape(), y.Shape()
	if len(xs) != 2 || len(ys) != 2 || xs[1] != ys[0] {
		panic(fmt.Sprintf("cpu: MatMul shape mismatch: %v @ %v", xs, ys))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("cpu: MatMul dtype mismatch: %s vs %s", x.DType(), y.DType()))
	}
	m, k, n := xs[0], xs[1], ys[1]

	out, err := array.NewRaw(array.Shape{m, n}, x.DType(), x.Device())
	if err != nil {
		panic(err)
	}

	switch x.DType() {
	case array.Float32:
		a := blas32.General{Rows: m, Cols: k, Stride: k, Data: x.AsFloat32()}
		c := blas32.General{Rows: k, Cols: n, Stride: n, Data: y.AsFloat32()}
		dst := blas32.General{Rows: m, Cols: n, Stride: n, Data: out.AsFloat32()}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, a, c, 0, dst)
	case array.Float64:
		a := mat.NewDense(m, k, x.AsFloat64())
		c := mat.NewDense(k, n, y.AsFloat64())
		dst := mat.NewDense(m, n, out.AsFloat64())
		dst.Mul(a, c)
	default:
		panic(fmt.Sprintf("cpu: MatMul requires float32 or float64, got %s", x.DType()))
	}
	return out
}

// Transpose2D transposes a rank-2 array.
func (b *CPUBackend) Transpose2D(x *array.RawArray) *array.RawArray {
	xs := x.Shape()
	if len(xs) != 2 {
		panic(fmt.Sprintf("cpu: Transpose2D requires rank 2, got %v", xs))
	}
	rows, cols := xs[0], xs[1]
	out, err := array.NewRaw(array.Shape{cols, rows}, x.DType(), x.Device())
	if err != nil {
		panic(err)
	}
	// Chunk by source row: each worker writes a disjoint column stripe.
	switch x.DType() {
	case array.Float32:
		xv, ov := x.AsFloat32(), out.AsFloat32()
		parallel.Range(rows, b.par, func(s, e int) {
			for i := s; i < e; i++ {
				for j := 0; j < cols; j++ {
					ov[j*rows+i] = xv[i*cols+j]
				}
			}
		})
	case array.Float64:
		xv, ov := x.AsFloat64(), out.AsFloat64()
		parallel.Range(rows, b.par, func(s, e int) {
			for i := s; i < e; i++ {
				for j := 0; j < cols; j++ {
					ov[j*rows+i] = xv[i*cols+j]
				}
			}
		})
	default:
		panic(fmt.Sprintf("cpu: Transpose2D requires float32 or float64, got %s", x.DType()))
	}
	return out
}
