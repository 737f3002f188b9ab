package graph

import "github.com/ember-ml/ember/internal/array"

// Op is the operator plug-in contract. Every mathematical operation
// implements it against the core; the core never knows an operator's
// numerics.
//
// Forward works on raw arrays through the backend capability interface.
// Backward works on Variables and must express its formula through
// Apply (directly or via the ops package) so that a backward pass run
// with tracking enabled builds a differentiable graph, making double
// backprop a plain re-entrant call.
type Op interface {
	// Name identifies the operator in errors and logs.
	Name() string

	// CheckTypes validates the declared shape/dtype contract. It runs
	// before any computation; a violation is a *TypeCheckError.
	CheckTypes(inputs []array.Spec) error

	// Forward computes output arrays from input arrays.
	Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error)

	// Backward computes one gradient Variable per input, given the
	// gradients of the outputs. Entries of gradOutputs may be nil when
	// no gradient flows through that output; returned entries may be
	// nil for inputs that need no gradient.
	Backward(ctx *Context, node *FunctionNode, gradOutputs []*Variable) ([]*Variable, error)
}

// Retainer is implemented by operators whose backward formula needs the
// concrete value of specific inputs or outputs. Only declared indices
// are retained with strong references; everything else stays weakly
// referenced from the function node.
type Retainer interface {
	RetainInputs() []int
	RetainOutputs() []int
}

func retention(op Op) (ins, outs []int) {
	if r, ok := op.(Retainer); ok {
		return r.RetainInputs(), r.RetainOutputs()
	}
	return nil, nil
}
