// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph

import (
	"github.com/ember-ml/ember/internal/graph"
)

// Dump is a traversal snapshot of a computation graph, suitable for
// inspection and DOT rendering.
type Dump = graph.Dump

// Edge is one producer/consumer link in a Dump.
type Edge = graph.Edge

// Stats summarizes a dumped graph: node and edge counts plus retained
// array bytes.
type Stats = graph.Stats

// Export walks the graph reachable from the given roots and returns a
// snapshot.
func Export(roots ...*Variable) *Dump {
	return graph.Export(roots...)
}
