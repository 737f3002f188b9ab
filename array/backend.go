// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import (
	"github.com/ember-ml/ember/internal/array"
)

// Backend is the interface device-specific compute implementations
// satisfy. Backends register themselves by device tag; the graph engine
// dispatches each operation to the backend of its inputs' device.
type Backend = array.Backend

// Register makes a backend available for its device tag.
func Register(b Backend) {
	array.Register(b)
}

// BackendFor returns the registered backend for a device, or an error
// if none is registered.
func BackendFor(device Device) (Backend, error) {
	return array.BackendFor(device)
}

// MustBackend returns the registered backend for a device, panicking if
// none is registered.
func MustBackend(device Device) Backend {
	return array.MustBackend(device)
}
