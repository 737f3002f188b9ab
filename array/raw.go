// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import (
	"github.com/ember-ml/ember/internal/array"
)

// RawArray is the low-level array representation.
//
// RawArray provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Deep copies via Clone(), storage-sharing reshapes via View()
//   - Reference counting for efficient memory management
//
// Most users build computations over graph.Variable instead and only
// reach for RawArray at the boundaries.
//
// Example:
//
//	raw, _ := array.NewRaw(array.Shape{2, 3}, array.Float32, array.CPU)
//	data := raw.AsFloat32() // type-safe access
type RawArray = array.RawArray

// NewRaw creates a new raw array with the given shape, dtype, and
// device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawArray, error) {
	return array.NewRaw(shape, dtype, device)
}
