package symtree

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================
// Vector — fixed-dimension column of expressions
// ============================================================

// Vector is an ordered, fixed-dimension sequence of expressions.
type Vector struct {
	components []*Expr
}

// NewVector returns a vector whose components are taken in index order.
func NewVector(components ...*Expr) *Vector {
	for i, c := range components {
		if c == nil {
			panic(fmt.Sprintf("symtree: NewVector component %d is nil", i))
		}
	}
	return &Vector{components: append([]*Expr(nil), components...)}
}

// NumberVector returns a vector of constants.
func NumberVector(values ...float64) *Vector {
	cs := make([]*Expr, len(values))
	for i, v := range values {
		cs[i] = Number(v)
	}
	return &Vector{components: cs}
}

func (v *Vector) Dim() int { return len(v.components) }

func (v *Vector) At(i int) *Expr {
	if i < 0 || i >= len(v.components) {
		panic(fmt.Sprintf("symtree: vector index %d out of range for dimension %d", i, len(v.components)))
	}
	return v.components[i]
}

// Components returns a copy of the component slice.
func (v *Vector) Components() []*Expr { return append([]*Expr(nil), v.components...) }

func (v *Vector) String() string {
	parts := make([]string, len(v.components))
	for i, c := range v.components {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v *Vector) Equal(other *Vector) bool {
	if v.Dim() != other.Dim() {
		return false
	}
	for i := range v.components {
		if !v.components[i].Equal(other.components[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Vector arithmetic
// ============================================================

// VectorAdd adds a and b component-wise.
func VectorAdd(a, b *Vector) (*Vector, error) {
	if a.Dim() != b.Dim() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "VectorAdd: %d vs %d", a.Dim(), b.Dim())
	}
	out := make([]*Expr, a.Dim())
	for i := range out {
		out[i] = Add(a.components[i].Clone(), b.components[i].Clone())
	}
	return &Vector{components: out}, nil
}

// ScalarMultiply multiplies every component of v by c.
func ScalarMultiply(v *Vector, c *Expr) *Vector {
	mustOperands("ScalarMultiply", c)
	out := make([]*Expr, v.Dim())
	for i := range out {
		out[i] = Mul(v.components[i].Clone(), c.Clone())
	}
	return &Vector{components: out}
}

// CrossProduct returns a × b for three-dimensional vectors.
func CrossProduct(a, b *Vector) (*Vector, error) {
	if a.Dim() != 3 || b.Dim() != 3 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "CrossProduct: needs 3 and 3, got %d and %d", a.Dim(), b.Dim())
	}
	// c_k = a_i*b_j + (-1)*(a_j*b_i) for cyclic (k, i, j)
	term := func(i, j int) *Expr {
		return Add(
			Mul(a.components[i].Clone(), b.components[j].Clone()),
			Mul(Number(-1), Mul(a.components[j].Clone(), b.components[i].Clone())),
		)
	}
	return &Vector{components: []*Expr{term(1, 2), term(2, 0), term(0, 1)}}, nil
}

// DotProduct returns a·b as a left fold: ((a0*b0 + a1*b1) + a2*b2) + ...
// Zero-dimensional vectors give the constant 0.
func DotProduct(a, b *Vector) (*Expr, error) {
	if a.Dim() != b.Dim() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "DotProduct: %d vs %d", a.Dim(), b.Dim())
	}
	if a.Dim() == 0 {
		return Number(0), nil
	}
	sum := Mul(a.components[0].Clone(), b.components[0].Clone())
	for i := 1; i < a.Dim(); i++ {
		sum = Add(sum, Mul(a.components[i].Clone(), b.components[i].Clone()))
	}
	return sum, nil
}

// ============================================================
// Vector evaluation and calculus
// ============================================================

// EvaluateVector evaluates every component under b. Numeric results become
// constants; partial results are parsed back over the component's unbound
// variables.
func EvaluateVector(v *Vector, b Bindings) (*Vector, error) {
	out := make([]*Expr, v.Dim())
	for i, c := range v.components {
		e, err := evaluateToExpr(c, b)
		if err != nil {
			return nil, errors.Wrapf(err, "EvaluateVector: component %d", i)
		}
		out[i] = e
	}
	return &Vector{components: out}, nil
}

func evaluateToExpr(e *Expr, b Bindings) (*Expr, error) {
	r, err := Evaluate(e, b)
	if err != nil {
		return nil, err
	}
	switch r := r.(type) {
	case Resolved:
		return Number(float64(r)), nil
	case Unresolved:
		var free []string
		for _, name := range e.FreeVariables() {
			if _, bound := b[name]; !bound {
				free = append(free, name)
			}
		}
		return Parse(free, string(r))
	}
	panic("symtree: unexpected result type")
}

// DifferentiateVector differentiates v component-wise.
func DifferentiateVector(v *Vector, variable string) (*Vector, error) {
	out := make([]*Expr, v.Dim())
	for i, c := range v.components {
		d, err := Differentiate(c, variable)
		if err != nil {
			return nil, errors.Wrapf(err, "DifferentiateVector: component %d", i)
		}
		out[i] = d
	}
	return &Vector{components: out}, nil
}

// Gradient returns the vector of partial derivatives of e, one per
// variable, in the order given.
func Gradient(e *Expr, variables []string) (*Vector, error) {
	out := make([]*Expr, len(variables))
	for i, name := range variables {
		d, err := Differentiate(e, name)
		if err != nil {
			return nil, errors.Wrapf(err, "Gradient: d/d%s", name)
		}
		out[i] = d
	}
	return &Vector{components: out}, nil
}
