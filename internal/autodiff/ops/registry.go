package ops

import (
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/shaped/internal/shaped"
)

// BinaryFunc bundles a binary primal with its VJP.
type BinaryFunc[S shaped.Scalar] struct {
	Name   string
	Primal func(lhs, rhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S]
	VJP    func(lhs, rhs *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S])
}

// InPlaceFunc bundles an in-place primal (lhs op= rhs) with its VJP.
type InPlaceFunc[S shaped.Scalar] struct {
	Name  string
	Apply func(lhs, rhs *shaped.ShapedArray[S])
	VJP   func(lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S]
}

// Registry maps operation names to their primal/VJP records.
//
// It replaces derivative resolution by the compiler: an autodiff engine looks
// an operation up by name and calls its VJP explicitly.
type Registry[S shaped.Scalar] struct {
	binary  map[string]BinaryFunc[S]
	inPlace map[string]InPlaceFunc[S]
	reshape ReshapeFunc[S]
}

// NewRegistry returns a registry holding add, sub, mul, hadamard, their
// in-place variants add_assign, sub_assign, mul_assign, and reshape.
func NewRegistry[S shaped.Scalar]() *Registry[S] {
	r := &Registry[S]{
		binary:  make(map[string]BinaryFunc[S]),
		inPlace: make(map[string]InPlaceFunc[S]),
		reshape: Reshape[S](),
	}
	for _, fn := range []BinaryFunc[S]{Add[S](), Sub[S](), Mul[S](), Hadamard[S]()} {
		r.binary[fn.Name] = fn
	}
	for _, fn := range []InPlaceFunc[S]{AddAssign[S](), SubAssign[S](), MulAssign[S]()} {
		r.inPlace[fn.Name] = fn
	}
	return r
}

// RegisterBinary adds a binary operation. Names must be unique across kinds.
func (r *Registry[S]) RegisterBinary(fn BinaryFunc[S]) error {
	if err := r.checkNew(fn.Name, fn.Primal == nil || fn.VJP == nil); err != nil {
		return err
	}
	r.binary[fn.Name] = fn
	return nil
}

// RegisterInPlace adds an in-place operation. Names must be unique across kinds.
func (r *Registry[S]) RegisterInPlace(fn InPlaceFunc[S]) error {
	if err := r.checkNew(fn.Name, fn.Apply == nil || fn.VJP == nil); err != nil {
		return err
	}
	r.inPlace[fn.Name] = fn
	return nil
}

func (r *Registry[S]) checkNew(name string, incomplete bool) error {
	if name == "" {
		return errors.New("operation name is empty")
	}
	if incomplete {
		return errors.Errorf("operation %q must define both a primal and a VJP", name)
	}
	_, isBinary := r.binary[name]
	_, isInPlace := r.inPlace[name]
	if isBinary || isInPlace || name == "reshape" {
		return errors.Errorf("operation %q is already registered", name)
	}
	return nil
}

// Binary looks up a binary operation by name.
func (r *Registry[S]) Binary(name string) (BinaryFunc[S], bool) {
	fn, ok := r.binary[name]
	return fn, ok
}

// InPlace looks up an in-place operation by name.
func (r *Registry[S]) InPlace(name string) (InPlaceFunc[S], bool) {
	fn, ok := r.inPlace[name]
	return fn, ok
}

// Reshape returns the reshape record.
func (r *Registry[S]) Reshape() ReshapeFunc[S] {
	return r.reshape
}

// Names returns the sorted names of all registered operations.
func (r *Registry[S]) Names() []string {
	names := slices.Collect(maps.Keys(r.binary))
	names = slices.AppendSeq(names, maps.Keys(r.inPlace))
	names = append(names, "reshape")
	slices.Sort(names)
	return names
}
