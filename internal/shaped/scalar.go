// Package shaped provides the dense, shape-tagged array used by the autodiff core.
package shaped

import "golang.org/x/exp/constraints"

// Scalar is a constraint for element types of a ShapedArray.
// Only floating-point types are differentiable, so integers and bools are excluded.
type Scalar interface {
	constraints.Float
}
