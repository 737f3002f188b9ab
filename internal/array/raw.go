package array

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/x448/float16"
)

// Device tags the backend an array belongs to. The graph engine never
// inspects array contents; it only uses the tag to look up the owning
// Backend in the registry.
type Device int

// Supported device tags.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// buffer is a reference-counted byte buffer. Reference counting gives
// deterministic release of device memory (spec'd for GPU backends) and
// lets backends detect when an in-place update would be observable.
type buffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // guards deallocation
}

func newBuffer(size int) *buffer {
	b := &buffer{data: make([]byte, size)}
	b.refCount.Store(1)
	return b
}

func (b *buffer) addRef() { b.refCount.Add(1) }

func (b *buffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.data = nil
	}
}

// RawArray is the opaque numeric buffer the autodiff core operates on.
// Identity (pointer equality) is meaningful: the retention manager and
// the schedule compiler's unique-array table both deduplicate by it.
type RawArray struct {
	buffer *buffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw allocates a zero-filled array with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawArray, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawArray{
		buffer: newBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the array's shape.
func (r *RawArray) Shape() Shape { return r.shape }

// Strides returns the array's row-major memory strides.
func (r *RawArray) Strides() []int { return r.stride }

// DType returns the array's element type.
func (r *RawArray) DType() DataType { return r.dtype }

// Device returns the array's device tag.
func (r *RawArray) Device() Device { return r.device }

// NumElements returns the total number of elements.
func (r *RawArray) NumElements() int { return r.shape.NumElements() }

// ByteSize returns the total memory size in bytes.
func (r *RawArray) ByteSize() int { return r.NumElements() * r.dtype.Size() }

// Data returns the raw byte slice backing the array.
func (r *RawArray) Data() []byte { return r.buffer.data }

// SameStorage reports whether two arrays share one buffer. This is the
// identity comparison the core requires from the array adapter.
func (r *RawArray) SameStorage(other *RawArray) bool {
	return other != nil && r.buffer == other.buffer
}

// AsFloat32 interprets the data as []float32.
// Panics if the array's dtype is not Float32.
func (r *RawArray) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("array dtype is %s, not float32", r.dtype))
	}
	data := r.buffer.data
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the array's dtype is not Float64.
func (r *RawArray) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("array dtype is %s, not float64", r.dtype))
	}
	data := r.buffer.data
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the array's dtype is not Float16.
func (r *RawArray) AsFloat16() []float16.Float16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("array dtype is %s, not float16", r.dtype))
	}
	data := r.buffer.data
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the array's dtype is not Int32.
func (r *RawArray) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("array dtype is %s, not int32", r.dtype))
	}
	data := r.buffer.data
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the array's dtype is not Int64.
func (r *RawArray) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("array dtype is %s, not int64", r.dtype))
	}
	data := r.buffer.data
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the array's dtype is not Uint8.
func (r *RawArray) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("array dtype is %s, not uint8", r.dtype))
	}
	return r.buffer.data
}

// AsBool interprets the data as []bool.
// Panics if the array's dtype is not Bool.
func (r *RawArray) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("array dtype is %s, not bool", r.dtype))
	}
	data := r.buffer.data
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Float64At reads element i as float64 regardless of float dtype.
// Test and debug helper; panics on non-float arrays.
func (r *RawArray) Float64At(i int) float64 {
	switch r.dtype {
	case Float16:
		return float64(r.AsFloat16()[i].Float32())
	case Float32:
		return float64(r.AsFloat32()[i])
	case Float64:
		return r.AsFloat64()[i]
	default:
		panic(fmt.Sprintf("Float64At: array dtype is %s, not float", r.dtype))
	}
}

// Clone creates a new array with the same shape/dtype/device and a copy
// of the data. The copy does not share storage with the receiver.
func (r *RawArray) Clone() *RawArray {
	out := &RawArray{
		buffer: newBuffer(len(r.buffer.data)),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
	copy(out.buffer.data, r.buffer.data)
	return out
}

// View returns an array sharing the receiver's storage but with a new
// shape. Element counts must match; used by Reshape.
func (r *RawArray) View(shape Shape) (*RawArray, error) {
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("view: cannot reshape %v (%d elements) to %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements())
	}
	r.buffer.addRef()
	return &RawArray{
		buffer: r.buffer,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
	}, nil
}

// Release decrements the buffer reference count, deallocating at zero.
func (r *RawArray) Release() { r.buffer.release() }
