// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package schedule provides the public API for the Ember ML static
// schedule compiler.
//
// A Compiler wraps a define-by-run computation. Its first invocation
// per input signature runs normally while recording every operation
// call; FinishIteration freezes the recording into a schedule, and
// later invocations with the same signature replay the schedule
// directly against the backends, skipping graph construction and
// backward traversal entirely.
//
// Example:
//
//	comp := schedule.NewCompiler("mlp", func(ctx *graph.Context, in []*graph.Variable) ([]*graph.Variable, error) {
//	    h, err := graph.Tanh(ctx, in[0])
//	    if err != nil {
//	        return nil, err
//	    }
//	    loss, err := graph.Sum(ctx, h)
//	    return []*graph.Variable{loss}, err
//	})
//
//	for i := 0; i < steps; i++ {
//	    run, _ := comp.Forward(ctx, inputs)
//	    run.Backward(run.Outputs(), graph.BackwardOptions{})
//	    comp.FinishIteration()
//	}
package schedule

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
	"github.com/ember-ml/ember/internal/schedule"
)

// Compiler caches replayable schedules for one computation, keyed by
// input signature and mode flags.
type Compiler = schedule.Compiler

// Run is one invocation of a compiled computation: the tracing
// execution or a replay.
type Run = schedule.Run

// Schedule is a recorded, replayable list of operation invocations.
type Schedule = schedule.Schedule

// TraceFunc is the computation a Compiler manages.
type TraceFunc = schedule.TraceFunc

// State tracks a compiled region's lifecycle.
type State = schedule.State

// Lifecycle states.
const (
	Empty     State = schedule.Empty
	Tracing   State = schedule.Tracing
	Built     State = schedule.Built
	Replaying State = schedule.Replaying
)

// Sentinel errors.
var (
	ErrNestedTrace = schedule.ErrNestedTrace
	ErrNotBuilt    = schedule.ErrNotBuilt
	ErrNoSuchPass  = schedule.ErrNoSuchPass
	ErrWrongState  = schedule.ErrWrongState
)

// NewCompiler wraps fn in a schedule compiler.
func NewCompiler(name string, fn TraceFunc) *Compiler {
	return schedule.NewCompiler(name, fn)
}

// Key derives the cache key for a set of input specs under the given
// mode flags.
func Key(cfg graph.Config, specs []array.Spec) string {
	return schedule.Key(cfg, specs)
}
