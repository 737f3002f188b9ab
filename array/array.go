// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public API for n-dimensional arrays in the
// Ember ML framework.
//
// The package defines the storage layer the autodiff engine computes
// over:
//   - RawArray: reference-counted n-dimensional buffer
//   - Shape, DataType, Device: core type definitions
//   - Backend: interface for device-specific compute implementations
//
// Example:
//
//	x, _ := array.Zeros(array.Shape{2, 3}, array.Float32, array.CPU)
//	y, _ := array.FromSlice([]float32{1, 2, 3, 4, 5, 6}, array.Shape{2, 3}, array.CPU)
package array

import (
	"github.com/ember-ml/ember/internal/array"
)

// DType is a constraint for array element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = array.DType

// Scalar is a constraint for numeric fill values.
type Scalar = array.Scalar

// DataType represents the underlying element type of an array.
type DataType = array.DataType

// Data type constants.
const (
	Float16 DataType = array.Float16
	Float32 DataType = array.Float32
	Float64 DataType = array.Float64
	Int32   DataType = array.Int32
	Int64   DataType = array.Int64
	Uint8   DataType = array.Uint8
	Bool    DataType = array.Bool
)

// Device represents the device where array data resides.
type Device = array.Device

// Device constants.
const (
	CPU    Device = array.CPU
	CUDA   Device = array.CUDA
	Vulkan Device = array.Vulkan
	Metal  Device = array.Metal
	WebGPU Device = array.WebGPU
)

// Shape represents the dimensions of an array.
// Example: Shape{2, 3, 4} is a 3D array with dimensions 2×3×4.
type Shape = array.Shape

// Spec is an array's shape and element type, without its data. The
// schedule compiler keys its cache on input specs.
type Spec = array.Spec

// SpecOf returns the spec of an array.
func SpecOf(a *RawArray) Spec {
	return array.SpecOf(a)
}

// Creation functions

// Zeros creates an array filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) (*RawArray, error) {
	return array.Zeros(shape, dtype, device)
}

// Ones creates an array filled with ones.
func Ones(shape Shape, dtype DataType, device Device) (*RawArray, error) {
	return array.Ones(shape, dtype, device)
}

// Full creates an array filled with a specific value.
func Full[T Scalar](shape Shape, value T, dtype DataType, device Device) (*RawArray, error) {
	return array.Full(shape, value, dtype, device)
}

// FromSlice creates an array from a Go slice.
//
// Example:
//
//	x, err := array.FromSlice([]float32{1, 2, 3, 4, 5, 6}, array.Shape{2, 3}, array.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawArray, error) {
	return array.FromSlice(data, shape, device)
}

// Float16FromSlice creates a half-precision array from float32 data.
func Float16FromSlice(data []float32, shape Shape, device Device) (*RawArray, error) {
	return array.Float16FromSlice(data, shape, device)
}

// Scalar64 creates a rank-0 array holding one value.
func Scalar64(value float64, dtype DataType, device Device) (*RawArray, error) {
	return array.Scalar64(value, dtype, device)
}
