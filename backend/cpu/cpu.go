// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend for the Ember ML
// framework.
//
// The backend registers itself for the CPU device tag on import, so
// programs that only need the default dispatch can blank-import it:
//
//	import _ "github.com/ember-ml/ember/backend/cpu"
package cpu

import (
	"github.com/ember-ml/ember/internal/backend/cpu"
)

// CPUBackend executes array operations on the host CPU, using gonum's
// BLAS for float32 matrix products.
type CPUBackend = cpu.CPUBackend

// New creates a new CPU backend instance.
func New() *CPUBackend {
	return cpu.New()
}
