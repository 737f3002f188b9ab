// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for define-by-run automatic
// differentiation in the Ember ML framework.
//
// Computations run eagerly; with tracking enabled, each operation also
// links a function node into a dynamic computation graph. Backward
// walks that graph in decreasing topological rank and accumulates
// gradients onto leaf variables. Gradients are variables themselves, so
// running backward with CreateGraph yields a differentiable gradient
// graph (double backprop).
//
// Example:
//
//	ctx := graph.NewContext()
//	x := graph.New(raw)
//	y, _ := graph.Square(ctx, x)
//	_ = y.Backward(ctx)
//	gx := x.Grad()
package graph

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// Variable is a value node in the computation graph. It wraps a
// RawArray and, when produced by a tracked operation, points at its
// creator function node.
type Variable = graph.Variable

// FunctionNode is an operation node: the record of one tracked
// operation application, holding strong references to its inputs and
// weak references to its outputs.
type FunctionNode = graph.FunctionNode

// Config is the immutable set of mode flags threaded through Apply and
// Backward.
type Config = graph.Config

// Context carries a Config plus the optional schedule recorder hook.
// Contexts are immutable; the With* methods return derived copies.
type Context = graph.Context

// Op is the interface operations implement: a pure forward computation
// plus a backward formula expressed over variables.
type Op = graph.Op

// Retainer is implemented by operations that declare which inputs and
// outputs their backward formula reads.
type Retainer = graph.Retainer

// BackwardOptions configure one backward pass.
type BackwardOptions = graph.BackwardOptions

// TypeCheckError reports an operation rejecting its input specs.
type TypeCheckError = graph.TypeCheckError

// GradientContractError reports a backward formula violating the
// gradient contract (count, shape, dtype, or NaN under debug mode).
type GradientContractError = graph.GradientContractError

// New wraps a raw array in a leaf variable. Float arrays require
// gradients by default.
func New(data *array.RawArray) *Variable {
	return graph.New(data)
}

// NewContext returns the default context: tracking on, training mode,
// debug checks off.
func NewContext() *Context {
	return graph.NewContext()
}

// Apply runs an operation on variables: it type-checks, dispatches the
// forward computation to the inputs' backend, and links a function node
// when tracking is enabled.
func Apply(ctx *Context, op Op, inputs ...*Variable) ([]*Variable, error) {
	return graph.Apply(ctx, op, inputs...)
}

// Apply1 is Apply for single-output operations.
func Apply1(ctx *Context, op Op, inputs ...*Variable) (*Variable, error) {
	return graph.Apply1(ctx, op, inputs...)
}

// Backward propagates gradients from the outputs back through the
// graph, accumulating into the .Grad of leaves and targets. It returns
// one gradient per requested target.
func Backward(ctx *Context, outputs []*Variable, opts BackwardOptions) ([]*Variable, error) {
	return graph.Backward(ctx, outputs, opts)
}
