package graph

import (
	"container/heap"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/array"
)

// BackwardOptions configure one backward pass.
type BackwardOptions struct {
	// Seeds are the output gradients, parallel to the outputs slice.
	// A nil (or missing) seed defaults to ones for scalar outputs;
	// omitting it for a non-scalar output is an error.
	Seeds []*Variable
	// Targets stop the descent: the traversal does not walk past them,
	// and their gradients are returned in order. With no targets the
	// pass runs to every reachable leaf.
	Targets []*Variable
	// CreateGraph runs the pass with gradient tracking enabled, so the
	// gradient computation itself builds a differentiable graph
	// (double backprop).
	CreateGraph bool
	// RetainGrad additionally publishes gradients on intermediate
	// variables, not only leaves and targets.
	RetainGrad bool
}

// Backward propagates gradients from the given output variables back
// through the graph, accumulating into the .Grad of leaves and targets.
// It returns one gradient per requested target (nil where unreachable).
//
// Nodes are processed strictly by decreasing rank (FIFO among equals),
// which guarantees every downstream consumer has contributed its
// partial gradient before a node's backward formula runs; this is the
// counter-based "pending consumer" invariant in queue form.
func Backward(ctx *Context, outputs []*Variable, opts BackwardOptions) ([]*Variable, error) {
	if len(outputs) == 0 {
		return nil, errors.New("backward: no outputs given")
	}
	if len(opts.Seeds) > len(outputs) {
		return nil, errors.Errorf("backward: %d seeds for %d outputs", len(opts.Seeds), len(outputs))
	}

	// The pass runs under its own tracking mode; everything else (train,
	// debug, recorder) carries over, which keeps the propagator
	// re-entrant for double backprop.
	bctx := ctx.WithTracking(opts.CreateGraph)
	if rec := ctx.Recorder(); rec != nil {
		rec.BeginBackward()
		defer rec.EndBackward()
	}

	grads := map[*Variable]*Variable{}
	pq := &funcQueue{}
	heap.Init(pq)
	queued := map[*FunctionNode]bool{}

	push := func(n *FunctionNode) {
		if n == nil || queued[n] {
			return
		}
		queued[n] = true
		pq.pushNode(n)
	}

	// Seed the queue from the outputs.
	for i, out := range outputs {
		var seed *Variable
		if i < len(opts.Seeds) {
			seed = opts.Seeds[i]
		}
		if seed == nil {
			if !out.Data().Shape().IsScalar() {
				return nil, errors.Errorf(
					"backward: output[%d] has shape %v; a seed gradient is required for non-scalar outputs",
					i, out.Data().Shape())
			}
			ones, err := array.Ones(out.Data().Shape(), out.Data().DType(), out.Data().Device())
			if err != nil {
				return nil, errors.Wrap(err, "backward: seed gradient")
			}
			seed = New(ones)
		}
		g, err := addGrads(bctx, grads[out], seed)
		if err != nil {
			return nil, err
		}
		grads[out] = g
		push(out.creator)
	}

	targetSet := map[*Variable]bool{}
	for _, t := range opts.Targets {
		targetSet[t] = true
	}

	for pq.Len() > 0 {
		node := pq.popNode()
		if klog.V(2).Enabled() {
			klog.Infof("backward: %s rank=%d", node.Name(), node.rank)
		}

		gradOutputs := make([]*Variable, len(node.outputs))
		for i := range node.outputs {
			if out := node.Output(i); out != nil {
				gradOutputs[i] = grads[out]
			}
		}

		gins, err := node.op.Backward(bctx, node, gradOutputs)
		if err != nil {
			return nil, errors.Wrapf(err, "backward through %s", node.Name())
		}
		if len(gins) != len(node.inputs) {
			return nil, gradContractf(node.Name(),
				"returned %d gradients for %d inputs", len(gins), len(node.inputs))
		}

		for j, gin := range gins {
			in := node.inputs[j]
			if gin == nil || !in.requiresGrad {
				continue
			}
			if ctx.Config().Debug {
				if err := checkGradient(node.Name(), j, in.Data(), gin.Data()); err != nil {
					return nil, err
				}
			}
			g, err := addGrads(bctx, grads[in], gin)
			if err != nil {
				return nil, err
			}
			grads[in] = g
			// Descent stops at requested targets and at unchained
			// variables (creator already nil).
			if !targetSet[in] {
				push(in.creator)
			}
		}
	}

	// Publish accumulated gradients: leaves and targets always,
	// intermediates only with RetainGrad.
	for v, g := range grads {
		if v.creator == nil || targetSet[v] || opts.RetainGrad {
			total, err := addGrads(bctx, v.grad, g)
			if err != nil {
				return nil, err
			}
			v.grad = total
			if rec := ctx.Recorder(); rec != nil && v.creator == nil {
				rec.RecordGradient(v.data, total.data)
			}
		}
	}

	if len(opts.Targets) == 0 {
		return nil, nil
	}
	result := make([]*Variable, len(opts.Targets))
	for i, t := range opts.Targets {
		result[i] = grads[t]
	}
	return result, nil
}

// Backward seeds this scalar output with ones and accumulates
// gradients on every reachable leaf.
func (v *Variable) Backward(ctx *Context) error {
	_, err := Backward(ctx, []*Variable{v}, BackwardOptions{})
	return err
}

func checkGradient(op string, index int, in, gin *array.RawArray) error {
	if !gin.Shape().Equal(in.Shape()) {
		return gradContractf(op, "gradient for input[%d] has shape %v, want %v",
			index, gin.Shape(), in.Shape())
	}
	if gin.DType() != in.DType() {
		return gradContractf(op, "gradient for input[%d] has dtype %s, want %s",
			index, gin.DType(), in.DType())
	}
	if hasNaN(gin) {
		return gradContractf(op, "gradient for input[%d] contains NaN", index)
	}
	return nil
}

// funcQueue orders function nodes by decreasing rank; nodes of equal
// rank come out in insertion order, keeping equal-rank branches
// deterministic.
type funcQueue struct {
	items []queueItem
	seq   int
}

type queueItem struct {
	node *FunctionNode
	seq  int
}

func (q *funcQueue) Len() int { return len(q.items) }

func (q *funcQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.node.rank != b.node.rank {
		return a.node.rank > b.node.rank
	}
	return a.seq < b.seq
}

func (q *funcQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *funcQueue) Push(x any) { q.items = append(q.items, x.(queueItem)) }

func (q *funcQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}

func (q *funcQueue) pushNode(n *FunctionNode) {
	heap.Push(q, queueItem{node: n, seq: q.seq})
	q.seq++
}

func (q *funcQueue) popNode() *FunctionNode {
	return heap.Pop(q).(queueItem).node
}
