// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package shaped provides the public API for differentiable shaped arrays.
//
// The package defines:
//   - ShapedArray[S]: a dense array of scalars tagged with a shape, acting as
//     its own tangent vector
//   - Zero: the canonical zero, an additive identity for arrays of any shape
//   - Shape, Scalar: core type definitions
//
// Example:
//
//	a := shaped.MustFromSlice([]float32{3, 4}, shaped.Shape{2})
//	sum := shaped.Zero[float32]().Add(a) // [3 4], shape [2]
//	diff := a.Sub(a)                      // [0 0], an ordinary array
package shaped

import (
	"github.com/born-ml/shaped/internal/shaped"
)

// Scalar is a constraint for element types: float32, float64 and types derived from them.
type Scalar = shaped.Scalar

// Shape represents the dimensions of an array.
// Example: Shape{2, 3, 4} represents a 3D array with dimensions 2×3×4.
type Shape = shaped.Shape

// ShapedArray is a dense array with copy-on-write buffer sharing.
//
// Element-wise operations:
//   - Add/AddInPlace, Sub/SubInPlace: short-circuit on the canonical zero
//   - Mul/MulInPlace: scoped accumulation multiply, not a Hadamard product
//   - Hadamard: true element-wise product
//   - Reshaped: same scalars, new shape
type ShapedArray[S Scalar] = shaped.ShapedArray[S]

// ErrShapeMismatch is wrapped by errors returned when scalars and shape disagree.
var ErrShapeMismatch = shaped.ErrShapeMismatch

// Zero returns the canonical zero.
func Zero[S Scalar]() *ShapedArray[S] {
	return shaped.Zero[S]()
}

// Full creates an array of the given shape filled with value.
func Full[S Scalar](shape Shape, value S) *ShapedArray[S] {
	return shaped.Full(shape, value)
}

// Ones creates an array of the given shape filled with 1.
func Ones[S Scalar](shape Shape) *ShapedArray[S] {
	return shaped.Ones[S](shape)
}

// FromSlice creates an array from a flat, row-major slice of scalars.
func FromSlice[S Scalar](data []S, shape Shape) (*ShapedArray[S], error) {
	return shaped.FromSlice(data, shape)
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[S Scalar](data []S, shape Shape) *ShapedArray[S] {
	return shaped.MustFromSlice(data, shape)
}
