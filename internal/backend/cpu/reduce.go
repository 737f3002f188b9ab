package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/ember-ml/ember/internal/array"
)

// Sum reduces an array to a rank-0 scalar of the same dtype.
// Float16 accumulates in float32 to limit rounding drift.
func (b *CPUBackend) Sum(x *array.RawArray) *array.RawArray {
	out, err := array.NewRaw(array.Shape{}, x.DType(), x.Device())
	if err != nil {
		panic(err)
	}
	switch x.DType() {
	case array.Float16:
		var acc float32
		for _, v := range x.AsFloat16() {
			acc += v.Float32()
		}
		out.AsFloat16()[0] = float16.Fromfloat32(acc)
	case array.Float32:
		var acc float32
		for _, v := range x.AsFloat32() {
			acc += v
		}
		out.AsFloat32()[0] = acc
	case array.Float64:
		var acc float64
		for _, v := range x.AsFloat64() {
			acc += v
		}
		out.AsFloat64()[0] = acc
	case array.Int32:
		var acc int32
		for _, v := range x.AsInt32() {
			acc += v
		}
		out.AsInt32()[0] = acc
	case array.Int64:
		var acc int64
		for _, v := range x.AsInt64() {
			acc += v
		}
		out.AsInt64()[0] = acc
	default:
		panic(fmt.Sprintf("cpu: Sum unsupported dtype %s", x.DType()))
	}
	return out
}

// Broadcast expands a scalar array to the given shape.
func (b *CPUBackend) Broadcast(x *array.RawArray, shape array.Shape) *array.RawArray {
	if !x.Shape().IsScalar() {
		panic(fmt.Sprintf("cpu: Broadcast requires a scalar source, got shape %v", x.Shape()))
	}
	out, err := array.NewRaw(shape, x.DType(), x.Device())
	if err != nil {
		panic(err)
	}
	if err := array.Fill(out, x.Float64At(0)); err != nil {
		panic(err)
	}
	return out
}
