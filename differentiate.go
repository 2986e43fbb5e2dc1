package symtree

import "github.com/pkg/errors"

// Differentiate returns the derivative of e with respect to variable (empty
// means DefaultVariable). The result is a new, unsimplified tree that shares
// no nodes with e.
//
// The power rule folds the exponent to a number and rewrites the base as the
// bare variable, n*variable**(n-1). It is only correct when the base is that
// variable: (3*x+1)**2 differentiates to 2*x**1, not 6*(3*x+1). A base that
// does not mention the variable differentiates to 0.
func Differentiate(e *Expr, variable string) (*Expr, error) {
	if e == nil {
		return nil, errors.Wrap(ErrInvalidOperand, "Differentiate: nil expression")
	}
	if variable == "" {
		variable = DefaultVariable
	}
	return diff(e, variable)
}

func diff(e *Expr, v string) (*Expr, error) {
	switch e.op {
	case OpConstant:
		return Number(0), nil

	case OpIdentifier:
		if e.name == v {
			return Number(1), nil
		}
		return Number(0), nil

	case OpAdd:
		dl, dr, err := diffBoth(e, v)
		if err != nil {
			return nil, err
		}
		return Add(dl, dr), nil

	case OpMul:
		// (fg)' = f'g + fg'
		dl, dr, err := diffBoth(e, v)
		if err != nil {
			return nil, err
		}
		return Add(Mul(dl, e.right.Clone()), Mul(e.left.Clone(), dr)), nil

	case OpPow:
		if vars := e.right.FreeVariables(); len(vars) > 0 {
			return nil, errors.Wrapf(ErrNonConstantExponent, "Differentiate: %s depends on %v", e.right, vars)
		}
		if !mentions(e.left, v) {
			return Number(0), nil
		}
		n := e.right.Worth(1)
		return Mul(Number(n), Pow(Identifier(v), Number(n-1))), nil

	case OpExp:
		d, err := diff(e.left, v)
		if err != nil {
			return nil, err
		}
		return Mul(d, Exp(e.left.Clone())), nil

	case OpSin:
		d, err := diff(e.left, v)
		if err != nil {
			return nil, err
		}
		return Mul(Cos(e.left.Clone()), d), nil

	case OpCos:
		d, err := diff(e.left, v)
		if err != nil {
			return nil, err
		}
		return Mul(Number(-1), Mul(Sin(e.left.Clone()), d)), nil

	case OpTan:
		// sec² = cos⁻²
		d, err := diff(e.left, v)
		if err != nil {
			return nil, err
		}
		return Mul(Pow(Cos(e.left.Clone()), Number(-2)), d), nil

	case OpLog:
		d, err := diff(e.left, v)
		if err != nil {
			return nil, err
		}
		return Mul(d, Pow(e.left.Clone(), Number(-1))), nil
	}
	panic("symtree: Differentiate reached unknown operator " + e.op.String())
}

func diffBoth(e *Expr, v string) (*Expr, *Expr, error) {
	dl, err := diff(e.left, v)
	if err != nil {
		return nil, nil, err
	}
	dr, err := diff(e.right, v)
	if err != nil {
		return nil, nil, err
	}
	return dl, dr, nil
}

func mentions(e *Expr, v string) bool {
	if e == nil {
		return false
	}
	if e.op == OpIdentifier {
		return e.name == v
	}
	return mentions(e.left, v) || mentions(e.right, v)
}
