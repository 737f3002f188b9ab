// Package array provides the opaque numeric buffer type shared by every
// Ember component: the graph engine, the schedule compiler, and the
// compute backends.
package array

import (
	"golang.org/x/exp/constraints"
)

// DType is a constraint for element types that can populate an array
// from Go slices. Float16 arrays are created from float32 data and
// converted on the way in.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// Scalar is the constraint used by scalar-taking creation helpers.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// DataType is the runtime element type of an array.
type DataType int

// Supported element types.
const (
	Float16 DataType = iota
	Float32
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the type is a floating-point kind.
// Only floating-point variables participate in gradient computation.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float16, Float32, Float64:
		return true
	default:
		return false
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// inferDataType infers the runtime DataType from a generic element type.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported element type")
	}
}

// Spec describes the static type of one array: its shape and dtype.
// Operator type checks receive one Spec per input.
type Spec struct {
	Shape Shape
	DType DataType
}

// SpecOf returns the Spec of an existing array.
func SpecOf(a *RawArray) Spec {
	return Spec{Shape: a.Shape(), DType: a.DType()}
}
