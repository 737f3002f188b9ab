package graph

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ember-ml/ember/internal/array"
	_ "github.com/ember-ml/ember/internal/backend/cpu"
)

// Test operations. Defined locally so the engine tests do not depend on
// the operator catalog; tMul's backward is expressed through Apply, so
// it is differentiable to arbitrary depth.

type tAdd struct{}

func (tAdd) Name() string { return "tadd" }

func (tAdd) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 2 {
		return NewTypeCheckError("tadd", -1, "want 2 inputs, got %d", len(inputs))
	}
	if !inputs[0].Shape.Equal(inputs[1].Shape) {
		return NewTypeCheckError("tadd", 1, "shape %v != %v", inputs[1].Shape, inputs[0].Shape)
	}
	return nil
}

func (tAdd) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Add(inputs[0], inputs[1])}, nil
}

func (tAdd) Backward(ctx *Context, node *FunctionNode, gradOutputs []*Variable) ([]*Variable, error) {
	gy := gradOutputs[0]
	return []*Variable{gy, gy}, nil
}

type tMul struct{}

func (tMul) Name() string { return "tmul" }

func (tMul) CheckTypes(inputs []array.Spec) error {
	if len(inputs) != 2 {
		return NewTypeCheckError("tmul", -1, "want 2 inputs, got %d", len(inputs))
	}
	if !inputs[0].Shape.Equal(inputs[1].Shape) {
		return NewTypeCheckError("tmul", 1, "shape %v != %v", inputs[1].Shape, inputs[0].Shape)
	}
	return nil
}

func (tMul) Forward(b array.Backend, inputs []*array.RawArray) ([]*array.RawArray, error) {
	return []*array.RawArray{b.Mul(inputs[0], inputs[1])}, nil
}

func (tMul) RetainInputs() []int  { return []int{0, 1} }
func (tMul) RetainOutputs() []int { return nil }

func (tMul) Backward(ctx *Context, node *FunctionNode, gradOutputs []*Variable) ([]*Variable, error) {
	gy := gradOutputs[0]
	if gy == nil {
		return []*Variable{nil, nil}, nil
	}
	ga, err := Apply1(ctx, tMul{}, gy, node.RetainedInput(1))
	if err != nil {
		return nil, err
	}
	gb, err := Apply1(ctx, tMul{}, gy, node.RetainedInput(0))
	if err != nil {
		return nil, err
	}
	return []*Variable{ga, gb}, nil
}

// badCount returns the wrong number of gradients.
type badCount struct{ tAdd }

func (badCount) Name() string { return "badcount" }

func (badCount) Backward(ctx *Context, node *FunctionNode, gradOutputs []*Variable) ([]*Variable, error) {
	return []*Variable{gradOutputs[0]}, nil
}

// badRetain reads an output it never declared.
type badRetain struct{ tAdd }

func (badRetain) Name() string { return "badretain" }

func (badRetain) Backward(ctx *Context, node *FunctionNode, gradOutputs []*Variable) ([]*Variable, error) {
	node.RetainedOutput(0)
	return []*Variable{gradOutputs[0], gradOutputs[0]}, nil
}

// Helpers

func scalar(t *testing.T, v float64) *Variable {
	t.Helper()
	raw, err := array.Scalar64(v, array.Float64, array.CPU)
	if err != nil {
		t.Fatalf("Scalar64: %v", err)
	}
	return New(raw)
}

func gradAt(t *testing.T, v *Variable) float64 {
	t.Helper()
	if v.Grad() == nil {
		t.Fatal("variable has no gradient")
	}
	return v.GradArray().Float64At(0)
}

func assertNear(t *testing.T, expected, actual float64, msg string) {
	t.Helper()
	if math.Abs(expected-actual) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func square(t *testing.T, ctx *Context, x *Variable) *Variable {
	t.Helper()
	y, err := Apply1(ctx, tMul{}, x, x)
	if err != nil {
		t.Fatalf("square: %v", err)
	}
	return y
}

// Engine tests

func TestApplyBuildsNode(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 3)
	y := square(t, ctx, x)

	assertNear(t, 9, y.Data().Float64At(0), "forward value")
	if y.Creator() == nil {
		t.Fatal("tracked output has no creator")
	}
	if y.Creator().Rank() != 1 {
		t.Errorf("creator rank = %d, want 1", y.Creator().Rank())
	}
	if y.Rank() != 1 {
		t.Errorf("output rank = %d, want 1", y.Rank())
	}
	if x.Rank() != 0 {
		t.Errorf("leaf rank = %d, want 0", x.Rank())
	}
}

func TestRankGrowsWithDepth(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 2)
	y := square(t, ctx, x)  // rank 1
	z, err := Apply1(ctx, tAdd{}, y, x) // rank 2
	if err != nil {
		t.Fatalf("tadd: %v", err)
	}
	if z.Rank() != 2 {
		t.Errorf("rank = %d, want 2", z.Rank())
	}
}

func TestNoGradSkipsGraph(t *testing.T) {
	ctx := NewContext().WithNoGrad()
	x := scalar(t, 3)
	y := square(t, ctx, x)

	assertNear(t, 9, y.Data().Float64At(0), "forward still runs")
	if y.Creator() != nil {
		t.Error("no-grad output has a creator")
	}
	if y.Rank() != 0 {
		t.Errorf("no-grad rank = %d, want 0", y.Rank())
	}
}

func TestBackwardAccumulatesAcrossCalls(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 2)

	y := square(t, ctx, x)
	if err := y.Backward(ctx); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertNear(t, 4, gradAt(t, x), "first backward")

	y2 := square(t, ctx, x)
	if err := y2.Backward(ctx); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertNear(t, 8, gradAt(t, x), "gradients accumulate, not overwrite")

	x.ClearGrad()
	if x.Grad() != nil {
		t.Error("ClearGrad left a gradient")
	}
}

func TestDiamondSummation(t *testing.T) {
	// z = x*x + x*x: four paths from z to x, dz/dx = 4x.
	ctx := NewContext()
	x := scalar(t, 3)
	a := square(t, ctx, x)
	b := square(t, ctx, x)
	z, err := Apply1(ctx, tAdd{}, a, b)
	if err != nil {
		t.Fatalf("tadd: %v", err)
	}
	if err := z.Backward(ctx); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertNear(t, 12, gradAt(t, x), "diamond gradient")
}

func TestBackwardTargetsStopDescent(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 2)
	y := square(t, ctx, x) // y = 4
	z := square(t, ctx, y) // z = y^2

	grads, err := Backward(ctx, []*Variable{z}, BackwardOptions{Targets: []*Variable{y}})
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertNear(t, 8, grads[0].Data().Float64At(0), "dz/dy = 2y")
	if x.Grad() != nil {
		t.Error("descent walked past the target")
	}
}

func TestRetainGradPublishesIntermediates(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 2)
	y := square(t, ctx, x)
	z := square(t, ctx, y)

	if _, err := Backward(ctx, []*Variable{z}, BackwardOptions{RetainGrad: true}); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertNear(t, 8, gradAt(t, y), "intermediate gradient retained")
	assertNear(t, 32, gradAt(t, x), "leaf gradient")
}

func TestNonScalarOutputNeedsSeed(t *testing.T) {
	ctx := NewContext()
	raw, err := array.Ones(array.Shape{3}, array.Float64, array.CPU)
	if err != nil {
		t.Fatalf("Ones: %v", err)
	}
	x := New(raw)
	y, err := Apply1(ctx, tAdd{}, x, x)
	if err != nil {
		t.Fatalf("tadd: %v", err)
	}

	if _, err := Backward(ctx, []*Variable{y}, BackwardOptions{}); err == nil {
		t.Fatal("non-scalar output accepted without a seed")
	}

	seedRaw, _ := array.Ones(array.Shape{3}, array.Float64, array.CPU)
	if _, err := Backward(ctx, []*Variable{y}, BackwardOptions{Seeds: []*Variable{New(seedRaw)}}); err != nil {
		t.Fatalf("seeded backward: %v", err)
	}
	assertNear(t, 2, gradAt(t, x), "seeded gradient")
}

func TestDoubleBackward(t *testing.T) {
	// y = x^2; first derivative 2x kept differentiable, second is 2.
	ctx := NewContext()
	x := scalar(t, 5)
	y := square(t, ctx, x)

	grads, err := Backward(ctx, []*Variable{y}, BackwardOptions{
		Targets:     []*Variable{x},
		CreateGraph: true,
	})
	if err != nil {
		t.Fatalf("first backward: %v", err)
	}
	gx := grads[0]
	assertNear(t, 10, gx.Data().Float64At(0), "dy/dx = 2x")
	if gx.Creator() == nil {
		t.Fatal("CreateGraph gradient has no creator")
	}

	grads2, err := Backward(ctx, []*Variable{gx}, BackwardOptions{Targets: []*Variable{x}})
	if err != nil {
		t.Fatalf("second backward: %v", err)
	}
	assertNear(t, 2, grads2[0].Data().Float64At(0), "d2y/dx2")
}

func TestBackwardWithoutCreateGraphIsUntracked(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 5)
	y := square(t, ctx, x)

	grads, err := Backward(ctx, []*Variable{y}, BackwardOptions{Targets: []*Variable{x}})
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	if grads[0].Creator() != nil {
		t.Error("gradient built a graph without CreateGraph")
	}
}

func TestUnchainBackward(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 2)
	y := square(t, ctx, x)
	z := square(t, ctx, y)

	z.UnchainBackward()
	if z.Creator() != nil || y.Creator() != nil {
		t.Fatal("UnchainBackward left creators in place")
	}
	// Idempotent.
	z.UnchainBackward()

	if err := z.Backward(ctx); err != nil {
		t.Fatalf("backward after unchain: %v", err)
	}
	if x.Grad() != nil {
		t.Error("gradient flowed across an unchained boundary")
	}
}

func TestTypeCheckErrorSurfaces(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 1)
	raw, _ := array.Ones(array.Shape{2}, array.Float64, array.CPU)
	y := New(raw)

	_, err := Apply1(ctx, tAdd{}, x, y)
	var tce *TypeCheckError
	if !errors.As(err, &tce) {
		t.Fatalf("error = %v, want *TypeCheckError", err)
	}
	if tce.Op != "tadd" {
		t.Errorf("op = %q, want tadd", tce.Op)
	}
}

func TestGradientCountContract(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 1)
	y, err := Apply1(ctx, badCount{}, x, x)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	err = y.Backward(ctx)
	var gce *GradientContractError
	if !errors.As(err, &gce) {
		t.Fatalf("error = %v, want *GradientContractError", err)
	}
}

func TestUndeclaredRetentionPanics(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 1)
	y, err := Apply1(ctx, badRetain{}, x, x)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("undeclared retained-output access did not panic")
		}
	}()
	_ = y.Backward(ctx)
}

func TestSetRequiresGradRejectsNonFloat(t *testing.T) {
	raw, err := array.FromSlice([]int64{1, 2}, array.Shape{2}, array.CPU)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	v := New(raw)
	if v.RequiresGrad() {
		t.Error("integer variable requires grad by default")
	}
	if err := v.SetRequiresGrad(true); err == nil {
		t.Error("SetRequiresGrad(true) accepted on an integer variable")
	}
}

func TestContextDerivation(t *testing.T) {
	ctx := NewContext()
	if !ctx.Tracking() || !ctx.Config().Train {
		t.Fatal("default context should track and train")
	}
	eval := ctx.WithTrain(false).WithDebug(true)
	if eval.Config().Train {
		t.Error("WithTrain(false) did not stick")
	}
	if !eval.Config().Debug {
		t.Error("WithDebug(true) did not stick")
	}
	// Derivation never mutates the parent.
	if !ctx.Config().Train || ctx.Config().Debug {
		t.Error("derivation mutated the parent context")
	}
}

func TestExportAndStats(t *testing.T) {
	ctx := NewContext()
	x := scalar(t, 2)
	x.SetName("x")
	y := square(t, ctx, x)
	z := square(t, ctx, y)
	z.SetName("z")

	d := Export(z)
	s := d.Stats()
	if s.Functions != 2 {
		t.Errorf("Functions = %d, want 2", s.Functions)
	}
	if s.Variables < 3 {
		t.Errorf("Variables = %d, want >= 3", s.Variables)
	}

	var b strings.Builder
	if err := d.WriteDOT(&b, "test"); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	dot := b.String()
	if !strings.Contains(dot, "digraph") || !strings.Contains(dot, "tmul") {
		t.Errorf("DOT output missing expected content:\n%s", dot)
	}
}
