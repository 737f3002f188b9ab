package array

import (
	"fmt"

	"github.com/x448/float16"
)

// Zeros creates a zero-filled array.
func Zeros(shape Shape, dtype DataType, device Device) (*RawArray, error) {
	return NewRaw(shape, dtype, device)
}

// Ones creates an array filled with ones.
func Ones(shape Shape, dtype DataType, device Device) (*RawArray, error) {
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if err := Fill(r, 1); err != nil {
		return nil, err
	}
	return r, nil
}

// Full creates an array filled with the given scalar value.
func Full[T Scalar](shape Shape, value T, dtype DataType, device Device) (*RawArray, error) {
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if err := Fill(r, float64(value)); err != nil {
		return nil, err
	}
	return r, nil
}

// Fill sets every element of the array to the given value, converted to
// the array's dtype.
func Fill(r *RawArray, value float64) error {
	switch r.DType() {
	case Float16:
		data := r.AsFloat16()
		v := float16.Fromfloat32(float32(value))
		for i := range data {
			data[i] = v
		}
	case Float32:
		data := r.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Int32:
		data := r.AsInt32()
		for i := range data {
			data[i] = int32(value)
		}
	case Int64:
		data := r.AsInt64()
		for i := range data {
			data[i] = int64(value)
		}
	case Uint8:
		data := r.AsUint8()
		for i := range data {
			data[i] = uint8(value)
		}
	default:
		return fmt.Errorf("fill: unsupported dtype %s", r.DType())
	}
	return nil
}

// FromSlice creates an array from a Go slice. The element type decides
// the dtype; data is copied.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawArray, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("from slice: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	var dummy T
	dtype := inferDataType(dummy)
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	switch src := any(data).(type) {
	case []float32:
		copy(r.AsFloat32(), src)
	case []float64:
		copy(r.AsFloat64(), src)
	case []int32:
		copy(r.AsInt32(), src)
	case []int64:
		copy(r.AsInt64(), src)
	case []uint8:
		copy(r.AsUint8(), src)
	case []bool:
		copy(r.AsBool(), src)
	default:
		panic("unreachable: DType constraint violated")
	}
	return r, nil
}

// Float16FromSlice creates a Float16 array from float32 data.
func Float16FromSlice(data []float32, shape Shape, device Device) (*RawArray, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("from slice: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	r, err := NewRaw(shape, Float16, device)
	if err != nil {
		return nil, err
	}
	dst := r.AsFloat16()
	for i, v := range data {
		dst[i] = float16.Fromfloat32(v)
	}
	return r, nil
}

// Scalar64 creates a rank-0 array holding one value.
func Scalar64(value float64, dtype DataType, device Device) (*RawArray, error) {
	r, err := NewRaw(Shape{}, dtype, device)
	if err != nil {
		return nil, err
	}
	if err := Fill(r, value); err != nil {
		return nil, err
	}
	return r, nil
}
