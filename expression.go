// Package symtree is a small symbolic expression engine for Go.
//
// Expressions are immutable trees over a closed set of ten operators. They
// can be evaluated numerically or partially (unbound variables degrade to
// text), differentiated by fixed syntactic rules, parsed from infix text,
// and composed into vectors and matrices.
//
// Design goals:
//   - Immutable trees: every operation allocates a fresh result
//   - Closed operator set with exhaustive switch dispatch
//   - Explicit errors, matched with errors.Is against package sentinels
//   - Rendered strings parse back into equivalent trees
package symtree

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultVariable is the identifier name used when none is given.
const DefaultVariable = "x"

// ============================================================
// Op — operator tag
// ============================================================

// Op is the operator tag of an expression node.
type Op uint8

const (
	OpIdentifier Op = iota
	OpConstant
	OpAdd
	OpMul
	OpPow
	OpExp
	OpSin
	OpCos
	OpTan
	OpLog
	opCount
)

var opTags = [opCount]string{"id", "const", "add", "mul", "pwr", "exp", "sin", "cos", "tan", "log"}

// ParseOp maps a tag such as "add" or "pwr" to its Op.
func ParseOp(tag string) (Op, error) {
	for i, t := range opTags {
		if t == tag {
			return Op(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidOperator, "tag %q", tag)
}

func (o Op) Valid() bool { return o < opCount }

// Binary reports whether the tag takes two operands.
func (o Op) Binary() bool { return o == OpAdd || o == OpMul || o == OpPow }

// Unary reports whether the tag is one of the transcendental functions.
func (o Op) Unary() bool { return o >= OpExp && o <= OpLog }

func (o Op) String() string {
	if !o.Valid() {
		return "Op(" + strconv.Itoa(int(o)) + ")"
	}
	return opTags[o]
}

// apply evaluates a transcendental tag at v.
func (o Op) apply(v float64) float64 {
	switch o {
	case OpExp:
		return math.Exp(v)
	case OpSin:
		return math.Sin(v)
	case OpCos:
		return math.Cos(v)
	case OpTan:
		return math.Tan(v)
	case OpLog:
		return math.Log(v)
	}
	panic("symtree: apply called with non-function tag " + o.String())
}

// ============================================================
// Expr — immutable tree node
// ============================================================

// Expr is one node of an expression tree. Build it with New or the typed
// helpers; the zero value is not usable.
type Expr struct {
	op      Op
	name    string  // identifier
	literal string  // constant, as written
	value   float64 // constant, parsed
	left    *Expr
	right   *Expr
	str     string
	worth   func(float64) float64
}

// New builds a node for op. For OpIdentifier, left is the variable name
// (nil means DefaultVariable). For OpConstant, left is a numeric literal
// string or a float64. Binary tags need *Expr operands on both sides; unary
// tags take their argument in left and no right.
func New(op Op, left, right any) (*Expr, error) {
	if !op.Valid() {
		return nil, errors.Wrapf(ErrInvalidOperator, "New: %s", op)
	}
	switch op {
	case OpIdentifier:
		if !isNil(right) {
			return nil, errors.Wrap(ErrInvalidOperand, "New: id takes no right operand")
		}
		if left == nil {
			return newIdentifier(DefaultVariable), nil
		}
		name, ok := left.(string)
		if !ok || name == "" {
			return nil, errors.Wrapf(ErrInvalidOperand, "New: id name must be a non-empty string, got %T", left)
		}
		if !validVariable(name) {
			return nil, errors.Wrapf(ErrInvalidOperand, "New: invalid variable name %q", name)
		}
		return newIdentifier(name), nil

	case OpConstant:
		if !isNil(right) {
			return nil, errors.Wrap(ErrInvalidOperand, "New: const takes no right operand")
		}
		switch v := left.(type) {
		case string:
			return Constant(v)
		case float64:
			return Number(v), nil
		case int:
			return Number(float64(v)), nil
		}
		return nil, errors.Wrapf(ErrInvalidOperand, "New: const value must be a literal, got %T", left)
	}

	l, ok := left.(*Expr)
	if !ok || l == nil {
		return nil, errors.Wrapf(ErrInvalidOperand, "New: %s needs an expression on the left", op)
	}
	if op.Binary() {
		r, ok := right.(*Expr)
		if !ok || r == nil {
			return nil, errors.Wrapf(ErrInvalidOperand, "New: %s needs an expression on the right", op)
		}
		return newBinary(op, l, r), nil
	}
	if !isNil(right) {
		return nil, errors.Wrapf(ErrInvalidOperand, "New: %s takes a single argument", op)
	}
	return newUnary(op, l), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	e, ok := v.(*Expr)
	return ok && e == nil
}

func newIdentifier(name string) *Expr {
	return &Expr{
		op:    OpIdentifier,
		name:  name,
		str:   name,
		worth: func(x float64) float64 { return x },
	}
}

func newConstant(literal string, value float64) *Expr {
	return &Expr{
		op:      OpConstant,
		literal: literal,
		value:   value,
		str:     literal,
		worth:   func(float64) float64 { return value },
	}
}

func newBinary(op Op, l, r *Expr) *Expr {
	e := &Expr{op: op, left: l, right: r}
	lw, rw := l.worth, r.worth
	switch op {
	case OpAdd:
		e.str = l.str + " + " + r.str
		e.worth = func(x float64) float64 { return lw(x) + rw(x) }
	case OpMul:
		e.str = "(" + l.str + ")*(" + r.str + ")"
		e.worth = func(x float64) float64 { return lw(x) * rw(x) }
	case OpPow:
		e.str = "(" + l.str + ")**(" + r.str + ")"
		e.worth = func(x float64) float64 { return math.Pow(lw(x), rw(x)) }
	}
	return e
}

func newUnary(op Op, arg *Expr) *Expr {
	aw := arg.worth
	return &Expr{
		op:    op,
		left:  arg,
		str:   op.String() + "(" + arg.str + ")",
		worth: func(x float64) float64 { return op.apply(aw(x)) },
	}
}

// ============================================================
// Typed constructors
// ============================================================

// Identifier returns a variable node; an empty name means DefaultVariable.
// It panics unless name is a lowercase identifier that Parse can read back.
func Identifier(name string) *Expr {
	if name == "" {
		name = DefaultVariable
	}
	if !validVariable(name) {
		panic("symtree: invalid variable name " + strconv.Quote(name))
	}
	return newIdentifier(name)
}

// Constant returns a constant node for a numeric literal such as "3" or "-0.5".
// Only plain decimal notation is accepted.
func Constant(literal string) (*Expr, error) {
	lit := strings.TrimSpace(literal)
	digits := strings.TrimLeft(lit, "+-")
	if len(lit)-len(digits) > 1 || digits == "" || numberPrefix(digits) != len(digits) {
		return nil, errors.Wrapf(ErrInvalidOperand, "Constant: %q is not a decimal literal", literal)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidOperand, "Constant: %q is not a number", literal)
	}
	return newConstant(lit, v), nil
}

// Number returns a constant node holding v.
func Number(v float64) *Expr {
	return newConstant(strconv.FormatFloat(v, 'f', -1, 64), v)
}

// Add returns l + r.
func Add(l, r *Expr) *Expr {
	mustOperands("Add", l, r)
	return newBinary(OpAdd, l, r)
}

// Mul returns l * r.
func Mul(l, r *Expr) *Expr {
	mustOperands("Mul", l, r)
	return newBinary(OpMul, l, r)
}

// Pow returns base ** exp.
func Pow(base, exp *Expr) *Expr {
	mustOperands("Pow", base, exp)
	return newBinary(OpPow, base, exp)
}

func Exp(arg *Expr) *Expr { return unary("Exp", OpExp, arg) }
func Sin(arg *Expr) *Expr { return unary("Sin", OpSin, arg) }
func Cos(arg *Expr) *Expr { return unary("Cos", OpCos, arg) }
func Tan(arg *Expr) *Expr { return unary("Tan", OpTan, arg) }
func Log(arg *Expr) *Expr { return unary("Log", OpLog, arg) }

func unary(fn string, op Op, arg *Expr) *Expr {
	mustOperands(fn, arg)
	return newUnary(op, arg)
}

func mustOperands(fn string, operands ...*Expr) {
	for _, o := range operands {
		if o == nil {
			panic("symtree: " + fn + " called with a nil operand")
		}
	}
}

// ============================================================
// Accessors
// ============================================================

func (e *Expr) Op() Op { return e.op }

// Left returns the first operand, or nil for identifiers and constants.
func (e *Expr) Left() *Expr { return e.left }

// Right returns the second operand of a binary node, nil otherwise.
func (e *Expr) Right() *Expr { return e.right }

// Name returns the variable name of an identifier node.
func (e *Expr) Name() string { return e.name }

// Literal returns the literal a constant node was built from.
func (e *Expr) Literal() string { return e.literal }

// Value returns the numeric value of a constant node.
func (e *Expr) Value() float64 { return e.value }

// String returns the canonical, fully parenthesized rendering.
func (e *Expr) String() string { return e.str }

// Worth evaluates the tree with every identifier set to x. Domain failures
// surface as NaN or ±Inf.
func (e *Expr) Worth(x float64) float64 { return e.worth(x) }

// Clone returns a structurally identical tree that shares no nodes with e.
func (e *Expr) Clone() *Expr {
	switch {
	case e.op == OpIdentifier:
		return newIdentifier(e.name)
	case e.op == OpConstant:
		return newConstant(e.literal, e.value)
	case e.op.Binary():
		return newBinary(e.op, e.left.Clone(), e.right.Clone())
	}
	return newUnary(e.op, e.left.Clone())
}

// Equal reports structural equality. Constants compare by value.
func (e *Expr) Equal(other *Expr) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.op != other.op {
		return false
	}
	switch {
	case e.op == OpIdentifier:
		return e.name == other.name
	case e.op == OpConstant:
		return e.value == other.value
	case e.op.Binary():
		return e.left.Equal(other.left) && e.right.Equal(other.right)
	}
	return e.left.Equal(other.left)
}

// FreeVariables returns the sorted, de-duplicated identifier names in e.
func (e *Expr) FreeVariables() []string {
	seen := map[string]struct{}{}
	collectVariables(e, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectVariables(e *Expr, out map[string]struct{}) {
	if e == nil {
		return
	}
	if e.op == OpIdentifier {
		out[e.name] = struct{}{}
		return
	}
	collectVariables(e.left, out)
	collectVariables(e.right, out)
}
