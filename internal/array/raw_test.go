package array

import (
	"math"
	"testing"
)

// Test helpers

func assertEqualFloat64(t *testing.T, expected, actual float64, msg string) {
	t.Helper()
	if math.Abs(expected-actual) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float16, 2},
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
		{Bool, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeIsFloat(t *testing.T) {
	for _, dt := range []DataType{Float16, Float32, Float64} {
		if !dt.IsFloat() {
			t.Errorf("%s.IsFloat() = false, want true", dt)
		}
	}
	for _, dt := range []DataType{Int32, Int64, Uint8, Bool} {
		if dt.IsFloat() {
			t.Errorf("%s.IsFloat() = true, want false", dt)
		}
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	if got := (Shape{2, 3, 4}).NumElements(); got != 24 {
		t.Errorf("NumElements() = %d, want 24", got)
	}
	if got := (Shape{}).NumElements(); got != 1 {
		t.Errorf("rank-0 NumElements() = %d, want 1", got)
	}
}

func TestShapeIsScalar(t *testing.T) {
	if !(Shape{}).IsScalar() {
		t.Error("rank-0 shape should be scalar")
	}
	if !(Shape{1}).IsScalar() {
		t.Error("shape [1] should be scalar")
	}
	if (Shape{2}).IsScalar() {
		t.Error("shape [2] should not be scalar")
	}
}

func TestComputeStrides(t *testing.T) {
	strides := (Shape{2, 3, 4}).ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("strides = %v, want %v", strides, want)
			break
		}
	}
}

// RawArray Tests

func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, r.Shape(), "NewRaw shape")
	if r.DType() != Float32 {
		t.Errorf("dtype = %v, want Float32", r.DType())
	}
	if r.Device() != CPU {
		t.Errorf("device = %v, want CPU", r.Device())
	}
	if r.NumElements() != 6 {
		t.Errorf("NumElements = %d, want 6", r.NumElements())
	}
	if r.ByteSize() != 24 {
		t.Errorf("ByteSize = %d, want 24", r.ByteSize())
	}
}

func TestNewRawRejectsBadShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, -1}, Float32, CPU); err == nil {
		t.Error("NewRaw accepted a negative dimension")
	}
}

func TestFromSlice(t *testing.T) {
	r, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	data := r.AsFloat64()
	assertEqualFloat64(t, 5, data[4], "FromSlice data")

	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2, 3}, CPU); err == nil {
		t.Error("FromSlice accepted mismatched length")
	}
}

func TestFloat16Roundtrip(t *testing.T) {
	r, err := Float16FromSlice([]float32{0.5, 1.5, -2.0}, Shape{3}, CPU)
	if err != nil {
		t.Fatalf("Float16FromSlice: %v", err)
	}
	if r.DType() != Float16 {
		t.Fatalf("dtype = %v, want Float16", r.DType())
	}
	// Exact powers of two survive the half-precision roundtrip.
	assertEqualFloat64(t, 0.5, r.Float64At(0), "f16[0]")
	assertEqualFloat64(t, 1.5, r.Float64At(1), "f16[1]")
	assertEqualFloat64(t, -2.0, r.Float64At(2), "f16[2]")
}

func TestCloneIsDeep(t *testing.T) {
	r, _ := FromSlice([]float32{1, 2, 3}, Shape{3}, CPU)
	c := r.Clone()
	c.AsFloat32()[0] = 99
	if r.AsFloat32()[0] != 1 {
		t.Error("Clone shares storage with the original")
	}
	if r.SameStorage(c) {
		t.Error("SameStorage(clone) = true, want false")
	}
}

func TestViewSharesStorage(t *testing.T) {
	r, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	v, err := r.View(Shape{3, 2})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	v.AsFloat32()[0] = 42
	assertEqualFloat64(t, 42, float64(r.AsFloat32()[0]), "view write")
	assertEqualShape(t, Shape{3, 2}, v.Shape(), "view shape")

	if _, err := r.View(Shape{4}); err == nil {
		t.Error("View accepted a shape with different element count")
	}
}

func TestFullAndFill(t *testing.T) {
	r, err := Full(Shape{2, 2}, 3.5, Float64, CPU)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	for i := 0; i < 4; i++ {
		assertEqualFloat64(t, 3.5, r.Float64At(i), "Full value")
	}

	ones, err := Ones(Shape{2}, Float16, CPU)
	if err != nil {
		t.Fatalf("Ones: %v", err)
	}
	assertEqualFloat64(t, 1.0, ones.Float64At(1), "Ones float16")
}

func TestSpecOf(t *testing.T) {
	r, _ := NewRaw(Shape{4, 5}, Int64, CPU)
	s := SpecOf(r)
	assertEqualShape(t, Shape{4, 5}, s.Shape, "SpecOf shape")
	if s.DType != Int64 {
		t.Errorf("SpecOf dtype = %v, want Int64", s.DType)
	}
}
