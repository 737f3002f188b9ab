// Package cpu implements the reference pure-Go compute backend.
//
// It satisfies array.Backend with straightforward element loops; matrix
// multiplication delegates to gonum. The backend is synchronous, so
// Synchronize is a no-op.
package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/parallel"
)

// CPUBackend is the pure-Go reference backend.
type CPUBackend struct {
	par parallel.Config
}

// New creates a CPU backend instance.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

func init() {
	// The CPU backend is always available; importing the package makes
	// it the registered owner of the CPU device tag.
	array.Register(New())
}

// Name returns the backend name.
func (b *CPUBackend) Name() string { return "cpu" }

// Device returns the device tag this backend owns.
func (b *CPUBackend) Device() array.Device { return array.CPU }

// Synchronize is a no-op: CPU execution is synchronous.
func (b *CPUBackend) Synchronize() {}

// CopyTo copies src's contents into dst in place.
func (b *CPUBackend) CopyTo(dst, src *array.RawArray) {
	if dst.DType() != src.DType() || !dst.Shape().Equal(src.Shape()) {
		panic(fmt.Sprintf("cpu: CopyTo mismatch: dst %s%v, src %s%v",
			dst.DType(), dst.Shape(), src.DType(), src.Shape()))
	}
	copy(dst.Data(), src.Data())
}

// newLike allocates an uninitialized result array matching x.
func newLike(x *array.RawArray) *array.RawArray {
	out, err := array.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(err)
	}
	return out
}
