package symtree

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Bindings maps variable names to the values they take during evaluation.
type Bindings map[string]float64

// ============================================================
// Result — resolved number or unresolved text
// ============================================================

// Result is the outcome of Evaluate: either Resolved or Unresolved.
type Result interface {
	String() string
	isResult()
}

// Resolved is a fully numeric evaluation result.
type Resolved float64

// Unresolved is the text left over when some variable had no binding.
type Unresolved string

func (r Resolved) String() string   { return FormatNumber(float64(r)) }
func (u Unresolved) String() string { return string(u) }
func (Resolved) isResult()          {}
func (Unresolved) isResult()        {}

// FormatNumber renders v the way partial evaluation embeds numbers in text.
// Integral values keep a trailing ".0" so they read as floats.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}

// ============================================================
// Evaluate
// ============================================================

// Evaluate computes e under b. Subtrees whose variables are all bound
// collapse to numbers; the rest are rendered as text, so the result is
// Unresolved exactly when some identifier in e is missing from b.
func Evaluate(e *Expr, b Bindings) (Result, error) {
	if e == nil {
		return nil, errors.Wrap(ErrInvalidOperand, "Evaluate: nil expression")
	}
	switch e.op {
	case OpIdentifier:
		if v, ok := b[e.name]; ok {
			return Resolved(e.worth(v)), nil
		}
		return Unresolved(e.str), nil
	case OpConstant:
		return Resolved(e.value), nil
	case OpAdd:
		return evalBinary(e, b, func(l, r string) string { return l + " + " + r })
	case OpMul:
		return evalBinary(e, b, func(l, r string) string { return "(" + l + ") * (" + r + ")" })
	case OpPow:
		return evalBinary(e, b, func(l, r string) string { return "(" + l + ")**(" + r + ")" })
	case OpExp, OpSin, OpCos, OpTan, OpLog:
		return evalFunction(e, b)
	}
	panic("symtree: Evaluate reached unknown operator " + e.op.String())
}

func evalBinary(e *Expr, b Bindings, text func(l, r string) string) (Result, error) {
	l, err := Evaluate(e.left, b)
	if err != nil {
		return nil, err
	}
	r, err := Evaluate(e.right, b)
	if err != nil {
		return nil, err
	}
	lv, lok := l.(Resolved)
	rv, rok := r.(Resolved)
	if !lok || !rok {
		return Unresolved(text(l.String(), r.String())), nil
	}

	x, y := float64(lv), float64(rv)
	var out float64
	switch e.op {
	case OpAdd:
		out = x + y
	case OpMul:
		out = x * y
	default:
		out = math.Pow(x, y)
	}
	if err := checkDomain(e.op, out, x, y); err != nil {
		return nil, err
	}
	return Resolved(out), nil
}

func evalFunction(e *Expr, b Bindings) (Result, error) {
	arg, err := Evaluate(e.left, b)
	if err != nil {
		return nil, err
	}
	v, ok := arg.(Resolved)
	if !ok {
		return Unresolved(e.op.String() + "(" + arg.String() + ")"), nil
	}
	out := e.op.apply(float64(v))
	if err := checkDomain(e.op, out, float64(v)); err != nil {
		return nil, err
	}
	return Resolved(out), nil
}

// checkDomain reports ErrDomain when finite operands produced NaN or ±Inf.
func checkDomain(op Op, out float64, operands ...float64) error {
	if !math.IsNaN(out) && !math.IsInf(out, 0) {
		return nil
	}
	parts := make([]string, len(operands))
	for i, v := range operands {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		parts[i] = FormatNumber(v)
	}
	return errors.Wrapf(ErrDomain, "%s(%s) = %s", op, strings.Join(parts, ", "), FormatNumber(out))
}

// ============================================================
// Sampling
// ============================================================

// Sample evaluates e at every point of domain, binding variable (empty means
// DefaultVariable) on top of fixed. Every sample must resolve to a number.
func Sample(e *Expr, variable string, domain []float64, fixed Bindings) ([]float64, error) {
	if variable == "" {
		variable = DefaultVariable
	}
	b := make(Bindings, len(fixed)+1)
	for k, v := range fixed {
		b[k] = v
	}
	out := make([]float64, len(domain))
	for i, x := range domain {
		b[variable] = x
		r, err := Evaluate(e, b)
		if err != nil {
			return nil, errors.Wrapf(err, "Sample: %s=%s", variable, FormatNumber(x))
		}
		v, ok := r.(Resolved)
		if !ok {
			return nil, errors.Wrapf(ErrUnbound, "Sample: %q", r.String())
		}
		out[i] = float64(v)
	}
	return out, nil
}
