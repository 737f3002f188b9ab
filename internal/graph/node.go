package graph

import (
	"fmt"
	"weak"

	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/array"
)

// Variable is a value node of the computation graph: one array, its
// accumulated gradient, and a back-reference to the function node that
// produced it. A Variable with no creator is a graph leaf.
//
// The gradient is itself a Variable so that gradient computation can be
// tracked and differentiated again (double backprop).
type Variable struct {
	data         *array.RawArray
	grad         *Variable
	creator      *FunctionNode
	rank         int
	requiresGrad bool
	name         string
}

// New wraps an array as a graph leaf. Floating-point variables require
// gradients by default; integer and bool variables never do.
func New(data *array.RawArray) *Variable {
	return &Variable{
		data:         data,
		requiresGrad: data.DType().IsFloat(),
	}
}

// Data returns the variable's array. It may be nil while the value is
// pending (a schedule output slot not yet produced).
func (v *Variable) Data() *array.RawArray { return v.data }

// Grad returns the accumulated gradient variable, or nil.
func (v *Variable) Grad() *Variable { return v.grad }

// GradArray returns the accumulated gradient's array, or nil.
func (v *Variable) GradArray() *array.RawArray {
	if v.grad == nil {
		return nil
	}
	return v.grad.data
}

// SetGrad replaces the accumulated gradient.
func (v *Variable) SetGrad(g *Variable) { v.grad = g }

// ClearGrad drops the accumulated gradient. Call it between iterations;
// Backward accumulates rather than overwrites.
func (v *Variable) ClearGrad() { v.grad = nil }

// Creator returns the function node that produced this variable, or
// nil for leaves and unchained variables.
func (v *Variable) Creator() *FunctionNode { return v.creator }

// Rank is the variable's topological depth: 0 for leaves, otherwise
// the creator's rank.
func (v *Variable) Rank() int { return v.rank }

// RequiresGrad reports whether backward propagation descends into this
// variable.
func (v *Variable) RequiresGrad() bool { return v.requiresGrad }

// SetRequiresGrad toggles gradient participation. Only floating-point
// variables can require gradients.
func (v *Variable) SetRequiresGrad(b bool) error {
	if b && !v.data.DType().IsFloat() {
		return errors.Errorf("variable %q has dtype %s; only float variables can require gradients",
			v.name, v.data.DType())
	}
	v.requiresGrad = b
	return nil
}

// Name returns the variable's debug label.
func (v *Variable) Name() string { return v.name }

// SetName attaches a debug label used by export and logging.
func (v *Variable) SetName(name string) *Variable {
	v.name = name
	return v
}

// Unchain severs the variable from its creator, turning it into a leaf
// for any later backward pass. Calling it twice is a no-op.
func (v *Variable) Unchain() {
	v.creator = nil
}

// UnchainBackward unchains every variable reachable upstream of v,
// pruning the whole subgraph so its intermediates can be collected.
func (v *Variable) UnchainBackward() {
	stack := []*FunctionNode{}
	if v.creator != nil {
		stack = append(stack, v.creator)
	}
	seen := map[*FunctionNode]bool{}
	v.creator = nil
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, in := range n.inputs {
			if in.creator != nil {
				stack = append(stack, in.creator)
				in.creator = nil
			}
		}
		n.unchain()
	}
}

// String renders the variable for logs.
func (v *Variable) String() string {
	label := v.name
	if label == "" {
		label = "variable"
	}
	return fmt.Sprintf("%s(%s%v, rank=%d)", label, v.data.DType(), v.data.Shape(), v.rank)
}

// FunctionNode is an operation node: it records one applied operation,
// holding its inputs strongly (the gradient formula may need them) and
// its outputs weakly (so dropping the last user reference to an
// intermediate frees its memory even while the node itself stays alive
// through downstream consumers).
type FunctionNode struct {
	op          Op
	inputs      []*Variable
	outputs     []weak.Pointer[Variable]
	outputSpecs []array.Spec
	rank        int

	retainIn    []int
	retainOut   []int
	retainedOut map[int]*Variable
}

// Op returns the applied operator.
func (n *FunctionNode) Op() Op { return n.op }

// Name returns the applied operator's name.
func (n *FunctionNode) Name() string { return n.op.Name() }

// Rank is the node's topological depth: strictly greater than the rank
// of every input, which guarantees a valid backward processing order.
func (n *FunctionNode) Rank() int { return n.rank }

// Inputs returns the node's input variables in application order.
func (n *FunctionNode) Inputs() []*Variable { return n.inputs }

// NumOutputs returns how many outputs the operation produced.
func (n *FunctionNode) NumOutputs() int { return len(n.outputs) }

// Output resolves the i-th output variable, or nil if the user dropped
// every strong reference to it and it has been collected.
func (n *FunctionNode) Output(i int) *Variable {
	return n.outputs[i].Value()
}

// OutputSpec returns the shape/dtype the i-th output had at apply time.
// Valid even after the output variable has been collected.
func (n *FunctionNode) OutputSpec(i int) array.Spec { return n.outputSpecs[i] }

// RetainedInput returns input i, which the operator must have declared
// in RetainInputs. Undeclared access is a programming contract
// violation and fails fast.
func (n *FunctionNode) RetainedInput(i int) *Variable {
	if !containsIndex(n.retainIn, i) {
		panic(fmt.Sprintf("%s: input %d was not declared retained", n.Name(), i))
	}
	return n.inputs[i]
}

// RetainedOutput returns the strongly retained output i. The returned
// variable holds the exact array that was live at forward time
// (identity-preserving), which in-place-sensitive gradient formulas
// depend on.
func (n *FunctionNode) RetainedOutput(i int) *Variable {
	v, ok := n.retainedOut[i]
	if !ok {
		panic(fmt.Sprintf("%s: output %d was not declared retained", n.Name(), i))
	}
	return v
}

// unchain releases the node's strong references so the upstream graph
// can be collected.
func (n *FunctionNode) unchain() {
	n.inputs = nil
	n.retainedOut = nil
}

func containsIndex(s []int, i int) bool {
	for _, v := range s {
		if v == i {
			return true
		}
	}
	return false
}
