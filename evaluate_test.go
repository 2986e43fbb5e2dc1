package symtree_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symtree"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2.0", symtree.FormatNumber(2))
	assert.Equal(t, "-3.0", symtree.FormatNumber(-3))
	assert.Equal(t, "2.5", symtree.FormatNumber(2.5))
	assert.Equal(t, "5.0", symtree.Resolved(5).String())
}

func TestEvaluate_Resolved(t *testing.T) {
	x, y := symtree.Identifier("x"), symtree.Identifier("y")
	r, err := symtree.Evaluate(symtree.Add(x, y), symtree.Bindings{"x": 2, "y": 3})
	require.NoError(t, err)
	assert.Equal(t, symtree.Resolved(5), r)

	r, err = symtree.Evaluate(symtree.Number(7), nil)
	require.NoError(t, err)
	assert.Equal(t, symtree.Resolved(7), r)
}

func TestEvaluate_Partial(t *testing.T) {
	x, y := symtree.Identifier("x"), symtree.Identifier("y")
	cases := []struct {
		expr *symtree.Expr
		want string
	}{
		{symtree.Add(x, y), "2.0 + y"},
		{symtree.Mul(x, y), "(2.0) * (y)"},
		{symtree.Pow(y, symtree.Number(2)), "(y)**(2.0)"},
		{symtree.Sin(y), "sin(y)"},
		{y, "y"},
	}
	for _, c := range cases {
		r, err := symtree.Evaluate(c.expr, symtree.Bindings{"x": 2})
		require.NoError(t, err)
		require.IsType(t, symtree.Unresolved(""), r)
		assert.Equal(t, c.want, r.String())
	}
}

func TestEvaluate_PartialTextParsesBack(t *testing.T) {
	x, y := symtree.Identifier("x"), symtree.Identifier("y")
	e := symtree.Mul(symtree.Add(x, y), symtree.Pow(y, x))
	r, err := symtree.Evaluate(e, symtree.Bindings{"x": 2})
	require.NoError(t, err)

	back, err := symtree.Parse([]string{"y"}, r.String())
	require.NoError(t, err)
	full, err := symtree.Evaluate(e, symtree.Bindings{"x": 2, "y": 3})
	require.NoError(t, err)
	assert.InDelta(t, float64(full.(symtree.Resolved)), back.Worth(3), 1e-12)
}

func TestEvaluate_Domain(t *testing.T) {
	cases := map[string]*symtree.Expr{
		"log of zero":     symtree.Log(symtree.Number(0)),
		"log of negative": symtree.Log(symtree.Number(-1)),
		"division by 0":   symtree.Pow(symtree.Number(0), symtree.Number(-1)),
	}
	for name, e := range cases {
		_, err := symtree.Evaluate(e, nil)
		assert.True(t, errors.Is(err, symtree.ErrDomain), name)
	}
}

func TestEvaluate_Nil(t *testing.T) {
	_, err := symtree.Evaluate(nil, nil)
	assert.True(t, errors.Is(err, symtree.ErrInvalidOperand))
}

// ============================================================
// Sample
// ============================================================

func TestSample(t *testing.T) {
	f, err := symtree.Parse([]string{"x"}, "x**2")
	require.NoError(t, err)
	ys, err := symtree.Sample(f, "x", []float64{0, 1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 4, 9}, ys)
}

func TestSample_Fixed(t *testing.T) {
	f, err := symtree.Parse([]string{"x", "y"}, "x + y")
	require.NoError(t, err)
	ys, err := symtree.Sample(f, "", []float64{1, 2}, symtree.Bindings{"y": 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 12}, ys)
}

func TestSample_Unbound(t *testing.T) {
	f, err := symtree.Parse([]string{"x", "y"}, "x*y")
	require.NoError(t, err)
	_, err = symtree.Sample(f, "x", []float64{1}, nil)
	assert.True(t, errors.Is(err, symtree.ErrUnbound))
}

func TestSample_Domain(t *testing.T) {
	f, err := symtree.Parse([]string{"x"}, "log(x)")
	require.NoError(t, err)
	_, err = symtree.Sample(f, "x", []float64{1, 0}, nil)
	assert.True(t, errors.Is(err, symtree.ErrDomain))
	assert.Contains(t, err.Error(), "x=0.0")
}
