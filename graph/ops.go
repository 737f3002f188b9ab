// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph

import (
	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph/ops"
)

// Arithmetic

// Add returns a + b element-wise.
func Add(ctx *Context, a, b *Variable) (*Variable, error) {
	return ops.Add(ctx, a, b)
}

// Sub returns a - b element-wise.
func Sub(ctx *Context, a, b *Variable) (*Variable, error) {
	return ops.Sub(ctx, a, b)
}

// Mul returns a * b element-wise.
func Mul(ctx *Context, a, b *Variable) (*Variable, error) {
	return ops.Mul(ctx, a, b)
}

// Div returns a / b element-wise.
func Div(ctx *Context, a, b *Variable) (*Variable, error) {
	return ops.Div(ctx, a, b)
}

// Neg returns -x.
func Neg(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Neg(ctx, x)
}

// Scale returns c * x for a constant c.
func Scale(ctx *Context, x *Variable, c float64) (*Variable, error) {
	return ops.Scale(ctx, x, c)
}

// AddScalar returns x + c for a constant c.
func AddScalar(ctx *Context, x *Variable, c float64) (*Variable, error) {
	return ops.AddScalar(ctx, x, c)
}

// Square returns x * x.
func Square(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Square(ctx, x)
}

// Elementwise math

// Exp returns e**x element-wise.
func Exp(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Exp(ctx, x)
}

// Log returns the natural logarithm element-wise.
func Log(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Log(ctx, x)
}

// Sqrt returns the square root element-wise.
func Sqrt(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Sqrt(ctx, x)
}

// Sin returns the sine element-wise.
func Sin(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Sin(ctx, x)
}

// Cos returns the cosine element-wise.
func Cos(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Cos(ctx, x)
}

// Tanh returns the hyperbolic tangent element-wise.
func Tanh(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Tanh(ctx, x)
}

// Sigmoid returns the logistic function element-wise.
func Sigmoid(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Sigmoid(ctx, x)
}

// Linear algebra

// MatMul returns the matrix product of two 2D variables.
func MatMul(ctx *Context, a, b *Variable) (*Variable, error) {
	return ops.MatMul(ctx, a, b)
}

// Transpose returns the transpose of a 2D variable.
func Transpose(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Transpose(ctx, x)
}

// Shape manipulation and reduction

// Reshape returns a view of x with the given shape.
func Reshape(ctx *Context, x *Variable, shape array.Shape) (*Variable, error) {
	return ops.Reshape(ctx, x, shape)
}

// Sum reduces a variable to a rank-0 scalar.
func Sum(ctx *Context, x *Variable) (*Variable, error) {
	return ops.Sum(ctx, x)
}

// BroadcastTo expands a scalar variable to the given shape.
func BroadcastTo(ctx *Context, x *Variable, shape array.Shape) (*Variable, error) {
	return ops.BroadcastTo(ctx, x, shape)
}
