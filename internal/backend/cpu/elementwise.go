package cpu

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/parallel"
)

// binaryFloat applies f element-wise over two same-shape arrays,
// chunked across workers. Float16 operands are computed in float32 and
// converted back.
func binaryFloat(a, b *array.RawArray, cfg parallel.Config, name string, f func(x, y float64) float64) *array.RawArray {
	if a.DType() != b.DType() || !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("cpu: %s operand mismatch: %s%v vs %s%v",
			name, a.DType(), a.Shape(), b.DType(), b.Shape()))
	}
	out := newLike(a)
	n := out.NumElements()
	switch a.DType() {
	case array.Float16:
		av, bv, ov := a.AsFloat16(), b.AsFloat16(), out.AsFloat16()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = float16.Fromfloat32(float32(f(float64(av[i].Float32()), float64(bv[i].Float32()))))
			}
		})
	case array.Float32:
		av, bv, ov := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = float32(f(float64(av[i]), float64(bv[i])))
			}
		})
	case array.Float64:
		av, bv, ov := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = f(av[i], bv[i])
			}
		})
	case array.Int32:
		av, bv, ov := a.AsInt32(), b.AsInt32(), out.AsInt32()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = int32(f(float64(av[i]), float64(bv[i])))
			}
		})
	case array.Int64:
		av, bv, ov := a.AsInt64(), b.AsInt64(), out.AsInt64()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = int64(f(float64(av[i]), float64(bv[i])))
			}
		})
	case array.Uint8:
		av, bv, ov := a.AsUint8(), b.AsUint8(), out.AsUint8()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = uint8(f(float64(av[i]), float64(bv[i])))
			}
		})
	default:
		panic(fmt.Sprintf("cpu: %s unsupported dtype %s", name, a.DType()))
	}
	return out
}

// unaryFloat applies f element-wise over one float array.
func unaryFloat(x *array.RawArray, cfg parallel.Config, name string, f func(v float64) float64) *array.RawArray {
	out := newLike(x)
	n := out.NumElements()
	switch x.DType() {
	case array.Float16:
		xv, ov := x.AsFloat16(), out.AsFloat16()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = float16.Fromfloat32(float32(f(float64(xv[i].Float32()))))
			}
		})
	case array.Float32:
		xv, ov := x.AsFloat32(), out.AsFloat32()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = float32(f(float64(xv[i])))
			}
		})
	case array.Float64:
		xv, ov := x.AsFloat64(), out.AsFloat64()
		parallel.Range(n, cfg, func(s, e int) {
			for i := s; i < e; i++ {
				ov[i] = f(xv[i])
			}
		})
	default:
		panic(fmt.Sprintf("cpu: %s requires a float array, got %s", name, x.DType()))
	}
	return out
}

// Add performs element-wise addition.
func (b *CPUBackend) Add(x, y *array.RawArray) *array.RawArray {
	return binaryFloat(x, y, b.par, "Add", func(a, c float64) float64 { return a + c })
}

// Sub performs element-wise subtraction.
func (b *CPUBackend) Sub(x, y *array.RawArray) *array.RawArray {
	return binaryFloat(x, y, b.par, "Sub", func(a, c float64) float64 { return a - c })
}

// Mul performs element-wise multiplication.
func (b *CPUBackend) Mul(x, y *array.RawArray) *array.RawArray {
	return binaryFloat(x, y, b.par, "Mul", func(a, c float64) float64 { return a * c })
}

// Div performs element-wise division.
func (b *CPUBackend) Div(x, y *array.RawArray) *array.RawArray {
	return binaryFloat(x, y, b.par, "Div", func(a, c float64) float64 { return a / c })
}

// Neg negates every element.
func (b *CPUBackend) Neg(x *array.RawArray) *array.RawArray {
	if !x.DType().IsFloat() {
		return negInt(x)
	}
	return unaryFloat(x, b.par, "Neg", func(v float64) float64 { return -v })
}

func negInt(x *array.RawArray) *array.RawArray {
	out := newLike(x)
	switch x.DType() {
	case array.Int32:
		xv, ov := x.AsInt32(), out.AsInt32()
		for i := range ov {
			ov[i] = -xv[i]
		}
	case array.Int64:
		xv, ov := x.AsInt64(), out.AsInt64()
		for i := range ov {
			ov[i] = -xv[i]
		}
	default:
		panic(fmt.Sprintf("cpu: Neg unsupported dtype %s", x.DType()))
	}
	return out
}

// Exp computes the element-wise exponential.
func (b *CPUBackend) Exp(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Exp", math.Exp)
}

// Log computes the element-wise natural logarithm.
func (b *CPUBackend) Log(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Log", math.Log)
}

// Sqrt computes the element-wise square root.
func (b *CPUBackend) Sqrt(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Sqrt", math.Sqrt)
}

// Sin computes the element-wise sine.
func (b *CPUBackend) Sin(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Sin", math.Sin)
}

// Cos computes the element-wise cosine.
func (b *CPUBackend) Cos(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Cos", math.Cos)
}

// Tanh computes the element-wise hyperbolic tangent.
func (b *CPUBackend) Tanh(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Tanh", math.Tanh)
}

// Sigmoid computes the element-wise logistic function.
func (b *CPUBackend) Sigmoid(x *array.RawArray) *array.RawArray {
	return unaryFloat(x, b.par, "Sigmoid", func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}

// Scale multiplies every element by s.
func (b *CPUBackend) Scale(x *array.RawArray, s float64) *array.RawArray {
	return unaryFloat(x, b.par, "Scale", func(v float64) float64 { return v * s })
}

// AddScalar adds s to every element.
func (b *CPUBackend) AddScalar(x *array.RawArray, s float64) *array.RawArray {
	return unaryFloat(x, b.par, "AddScalar", func(v float64) float64 { return v + s })
}
