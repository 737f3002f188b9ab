package array

import (
	"sync"

	"github.com/pkg/errors"
)

// Backend is the capability interface every compute backend implements.
// The autodiff core dispatches on the device tag of the arrays it is
// handed; it never hard-codes a backend.
//
// All methods operate on arrays that already passed the calling
// operator's type check, so shape/dtype misuse at this level is a
// programming error and panics rather than returning an error.
type Backend interface {
	// Element-wise binary operations (operands share shape and dtype).
	Add(a, b *RawArray) *RawArray
	Sub(a, b *RawArray) *RawArray
	Mul(a, b *RawArray) *RawArray
	Div(a, b *RawArray) *RawArray

	// Element-wise unary operations.
	Neg(x *RawArray) *RawArray
	Exp(x *RawArray) *RawArray
	Log(x *RawArray) *RawArray
	Sqrt(x *RawArray) *RawArray
	Sin(x *RawArray) *RawArray
	Cos(x *RawArray) *RawArray
	Tanh(x *RawArray) *RawArray
	Sigmoid(x *RawArray) *RawArray

	// Scalar operations.
	Scale(x *RawArray, s float64) *RawArray     // s * x
	AddScalar(x *RawArray, s float64) *RawArray // x + s

	// Matrix operations (rank-2, float32/float64).
	MatMul(a, b *RawArray) *RawArray
	Transpose2D(x *RawArray) *RawArray

	// Reductions and their inverse.
	Sum(x *RawArray) *RawArray                       // full reduction to a scalar
	Broadcast(x *RawArray, shape Shape) *RawArray    // scalar -> shape

	// CopyTo copies src's contents into dst (shapes/dtypes must match).
	// This is the adapter primitive the schedule compiler's copy-back
	// hooks rely on.
	CopyTo(dst, src *RawArray)

	// Synchronize flushes asynchronous execution streams. Synchronous
	// backends implement it as a no-op.
	Synchronize()

	// Metadata.
	Name() string
	Device() Device
}

var (
	registryMu sync.RWMutex
	registry   = map[Device]Backend{}
)

// Register installs a backend for its device tag. Later registrations
// for the same tag replace earlier ones (tests swap in mock backends).
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[b.Device()] = b
}

// BackendFor looks up the backend owning the given device tag.
func BackendFor(d Device) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := registry[d]
	if !ok {
		return nil, errors.Errorf("no backend registered for device %s", d)
	}
	return b, nil
}

// MustBackend is BackendFor for call sites where a missing backend is a
// programming error (the array could not have been created without one).
func MustBackend(d Device) Backend {
	b, err := BackendFor(d)
	if err != nil {
		panic(err)
	}
	return b
}
