package symtree_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symtree"
)

func parse(t *testing.T, vars []string, text string) *symtree.Expr {
	t.Helper()
	e, err := symtree.Parse(vars, text)
	require.NoError(t, err, text)
	return e
}

func TestParse_Scenario(t *testing.T) {
	f := parse(t, []string{"x"}, "2*x**2 + sin(x)")

	x := symtree.Identifier("x")
	want := symtree.Add(symtree.Mul(symtree.Number(2), symtree.Pow(x, symtree.Number(2))), symtree.Sin(x))
	assert.True(t, f.Equal(want), f.String())

	r, err := symtree.Evaluate(f, symtree.Bindings{"x": 0})
	require.NoError(t, err)
	assert.Equal(t, symtree.Resolved(0), r)

	r, err = symtree.Evaluate(f, symtree.Bindings{"x": 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.8414709848, float64(r.(symtree.Resolved)), 1e-10)
}

func TestParse_Precedence(t *testing.T) {
	cases := []struct {
		text string
		at   float64
		want float64
	}{
		{"1 + 2*x", 3, 7},
		{"2*x**2", 3, 18},
		{"x**2**2", 2, 16},
		{"x - 1 + 3", 0, 2},
		{"10 - x - 3", 2, 5},
		{"x / 4", 2, 0.5},
		{"8 / x / 2", 2, 2},
		{"-x**2", 3, -9},
		{"(x + 1)*(x - 1)", 3, 8},
		{"2x + 1", 4, 9},
		{"2 x + 1", 4, 9},
		{"3 sin(x)", 0, 0},
		{"3sin(x)", 0, 0},
		{"x**{2}", 5, 25},
		{"1.5e2 + x", 0, 150},
		{"e(x)", 1, math.E},
		{"exp(x) - e(x)", 2, 0},
	}
	for _, c := range cases {
		f := parse(t, []string{"x"}, c.text)
		assert.InDelta(t, c.want, f.Worth(c.at), 1e-12, c.text)
	}
}

func TestParse_Functions(t *testing.T) {
	f := parse(t, []string{"x"}, "sin(x + 1)")
	x := symtree.Identifier("x")
	assert.True(t, f.Equal(symtree.Sin(symtree.Add(x, symtree.Number(1)))))

	g := parse(t, []string{"x"}, "log(cos(x)) + tan(x)")
	assert.InDelta(t, math.Log(math.Cos(0.4))+math.Tan(0.4), g.Worth(0.4), 1e-12)
}

func TestParse_MultipleVariables(t *testing.T) {
	f := parse(t, []string{"x", "y", "rate_2"}, "x*y + rate_2")
	r, err := symtree.Evaluate(f, symtree.Bindings{"x": 2, "y": 3, "rate_2": 1})
	require.NoError(t, err)
	assert.Equal(t, symtree.Resolved(7), r)
	assert.Equal(t, []string{"rate_2", "x", "y"}, f.FreeVariables())
}

func TestParse_VariableInsideFunctionName(t *testing.T) {
	// "x" must not be matched inside "exp".
	f := parse(t, []string{"x"}, "exp(x)")
	assert.True(t, f.Equal(symtree.Exp(symtree.Identifier("x"))))
}

func TestParse_RoundTrip(t *testing.T) {
	x, y := symtree.Identifier("x"), symtree.Identifier("y")
	exprs := []*symtree.Expr{
		symtree.Add(x, symtree.Number(1)),
		symtree.Mul(symtree.Number(3), symtree.Pow(x, symtree.Number(2))),
		symtree.Sin(symtree.Add(x, y)),
		symtree.Pow(symtree.Cos(x), symtree.Number(-2)),
		symtree.Mul(symtree.Log(x), symtree.Exp(y)),
		symtree.Add(symtree.Add(x, y), symtree.Number(0.25)),
	}
	for _, e := range exprs {
		back := parse(t, []string{"x", "y"}, e.String())
		assert.True(t, back.Equal(e), "%s parsed as %s", e, back)
	}
}

func TestParse_PartialEvaluationText(t *testing.T) {
	f := parse(t, []string{"y"}, "2.0 + y")
	assert.Equal(t, 5.0, f.Worth(3))

	g := parse(t, []string{"y"}, "(2.0) * (y)")
	assert.Equal(t, 6.0, g.Worth(3))
}

func TestTokenize(t *testing.T) {
	tokens, err := symtree.Tokenize([]string{"x"}, "(3)*((x)**(2))")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	assert.Equal(t, byte('A'), tokens[0].Letter)
	for i, tok := range tokens {
		assert.Equal(t, byte('A'+i), tok.Letter)
		got, ok := tokens.Lookup(tok.Letter)
		require.True(t, ok)
		assert.Same(t, tok.Expr, got)
	}
	last := tokens[len(tokens)-1].Expr
	assert.Equal(t, 12.0, last.Worth(2))

	_, ok := tokens.Lookup('Z')
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		vars []string
		text string
		want error
	}{
		{[]string{"x"}, "foo(x)", symtree.ErrParse},
		{[]string{"x"}, "x + y", symtree.ErrParse},
		{[]string{"x"}, "(x + 1", symtree.ErrParse},
		{[]string{"x"}, "X + 1", symtree.ErrParse},
		{[]string{"x"}, "x +", symtree.ErrParse},
		{[]string{"x"}, "", symtree.ErrParse},
		{[]string{"sin"}, "sin", symtree.ErrParse},
		{[]string{"X"}, "1", symtree.ErrParse},
		{[]string{"x"}, "x)+1", symtree.ErrParse},
		{[]string{"x"}, "sin(x))*2", symtree.ErrParse},
		{[]string{"x"}, "x) * 5", symtree.ErrParse},
		{[]string{"x"}, ")x", symtree.ErrParse},
		{[]string{"x"}, "2 3", symtree.ErrParse},
		{[]string{"x"}, "x + 1 2", symtree.ErrParse},
		{[]string{"x"}, "1 0*x", symtree.ErrParse},
		{[]string{"x"}, "1 e5", symtree.ErrParse},
		{[]string{"x"}, strings.Repeat("x + ", 26) + "x", symtree.ErrTokenExhausted},
	}
	for _, c := range cases {
		_, err := symtree.Parse(c.vars, c.text)
		assert.True(t, errors.Is(err, c.want), "%q: %v", c.text, err)
	}
}

func TestParse_StrayCloser(t *testing.T) {
	f := parse(t, []string{"x"}, "x + 1)")
	assert.Equal(t, 3.0, f.Worth(2))

	g := parse(t, []string{"x"}, "x + 1) )")
	assert.Equal(t, 3.0, g.Worth(2))
}

func TestParse_TokenBudgetBoundary(t *testing.T) {
	// 25 variable brackets plus the outer one use every letter.
	vars := make([]string, 25)
	for i := range vars {
		vars[i] = fmt.Sprintf("v%d", i)
	}
	tokens, err := symtree.Tokenize(vars, strings.Join(vars, " + "))
	require.NoError(t, err)
	require.Len(t, tokens, symtree.TokenBudget)
	assert.Equal(t, byte('Z'), tokens[len(tokens)-1].Letter)
	assert.Equal(t, 25.0, tokens[len(tokens)-1].Expr.Worth(1))
}

func TestParse_NoSharedNodes(t *testing.T) {
	e := parse(t, []string{"x"}, "x*x")
	require.Equal(t, symtree.OpMul, e.Op())
	assert.NotSame(t, e.Left(), e.Right())
	assert.True(t, e.Left().Equal(e.Right()))
}

func TestParse_Independent(t *testing.T) {
	// Token letters restart on every call.
	for i := 0; i < 3; i++ {
		tokens, err := symtree.Tokenize([]string{"x"}, "x + 1")
		require.NoError(t, err)
		assert.Equal(t, byte('A'), tokens[0].Letter)
	}
}
