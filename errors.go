package symtree

import "github.com/pkg/errors"

// Sentinel errors. Every failure returned by the package wraps one of these
// with errors.Wrapf, so callers match with errors.Is.
var (
	// ErrInvalidOperator is returned when an expression is built with a tag
	// outside the closed operator set.
	ErrInvalidOperator = errors.New("symtree: unknown expression type")

	// ErrInvalidOperand is returned when an operand does not fit its tag,
	// e.g. a binary node without a right side or a malformed constant.
	ErrInvalidOperand = errors.New("symtree: invalid operand")

	// ErrDimensionMismatch is returned by vector and matrix operations on
	// incompatible shapes.
	ErrDimensionMismatch = errors.New("symtree: dimension mismatch")

	// ErrParse is returned when the parser cannot classify part of the input.
	ErrParse = errors.New("symtree: parse error")

	// ErrTokenExhausted is returned when the input needs more than
	// TokenBudget bracket-scoped sub-expressions.
	ErrTokenExhausted = errors.New("symtree: token budget exhausted")

	// ErrDomain is returned when a numeric step leaves the domain of its
	// function (log of a non-positive number, division by zero, ...).
	ErrDomain = errors.New("symtree: domain error")

	// ErrNonConstantExponent is returned when the power rule meets an
	// exponent that depends on a variable.
	ErrNonConstantExponent = errors.New("symtree: exponent is not constant")

	// ErrUnbound is returned when a numeric result was required but some
	// variable had no binding.
	ErrUnbound = errors.New("symtree: unbound variable")

	// ErrUnknownTool is returned by HandleToolCall for unrecognized tools.
	ErrUnknownTool = errors.New("symtree: unknown tool")
)
