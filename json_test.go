package symtree_test

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symtree"
)

func TestToJSON(t *testing.T) {
	x := symtree.Identifier("x")
	j, err := symtree.ToJSON(symtree.Add(symtree.Mul(symtree.Number(2), x), symtree.Number(3)))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"op": "add",
		"left": {"op": "mul", "left": {"op": "const", "value": "2"}, "right": {"op": "id", "name": "x"}},
		"right": {"op": "const", "value": "3"}
	}`, j)

	j, err = symtree.ToJSON(symtree.Sin(x))
	require.NoError(t, err)
	assert.JSONEq(t, `{"op": "sin", "left": {"op": "id", "name": "x"}}`, j)
}

func TestFromJSON(t *testing.T) {
	e, err := symtree.FromJSON([]byte(`{"op": "pwr", "left": {"op": "id", "name": "x"}, "right": {"op": "const", "value": "3"}}`))
	require.NoError(t, err)
	assert.Equal(t, "(x)**(3)", e.String())
	assert.Equal(t, 8.0, e.Worth(2))
}

func TestJSON_RoundTrip(t *testing.T) {
	f, err := symtree.Parse([]string{"x", "y"}, "2*x**2 + log(y) - tan(x/2)")
	require.NoError(t, err)
	j, err := symtree.ToJSON(f)
	require.NoError(t, err)
	back, err := symtree.FromJSON([]byte(j))
	require.NoError(t, err)
	assert.True(t, f.Equal(back))
	assert.Equal(t, f.String(), back.String())
}

func TestFromJSON_Errors(t *testing.T) {
	cases := []struct {
		doc  string
		want error
	}{
		{`{"op": "div"}`, symtree.ErrInvalidOperator},
		{`{"op": "add", "left": {"op": "id", "name": "x"}}`, symtree.ErrInvalidOperand},
		{`{"op": "const", "value": "abc"}`, symtree.ErrInvalidOperand},
		{`{"op": "id"}`, symtree.ErrInvalidOperand},
		{`{"op": "id", "name": "X"}`, symtree.ErrInvalidOperand},
		{`{"op": "const", "value": "Inf"}`, symtree.ErrInvalidOperand},
	}
	for _, c := range cases {
		_, err := symtree.FromJSON([]byte(c.doc))
		assert.True(t, errors.Is(err, c.want), "%s: %v", c.doc, err)
	}
	_, err := symtree.FromJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestVectorJSON(t *testing.T) {
	v := symtree.NewVector(symtree.Identifier("x"), symtree.Number(1))
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"op": "id", "name": "x"}, {"op": "const", "value": "1"}]`, string(b))

	var back symtree.Vector
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, v.Equal(&back))

	empty, err := json.Marshal(symtree.NewVector())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))

	err = json.Unmarshal([]byte(`[null]`), &back)
	assert.True(t, errors.Is(err, symtree.ErrInvalidOperand))
}

func TestMatrixJSON(t *testing.T) {
	m, err := symtree.MatrixFromRows(
		[]*symtree.Expr{symtree.Number(1), symtree.Number(2)},
		[]*symtree.Expr{symtree.Number(3), symtree.Identifier("x")},
	)
	require.NoError(t, err)
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var back symtree.Matrix
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, m.Equal(&back))
	assert.Equal(t, "[[1, 2], [3, x]]", back.String())

	bad := `{"rows": 3, "cols": 1, "columns": [[{"op": "const", "value": "1"}]]}`
	err = json.Unmarshal([]byte(bad), &back)
	assert.True(t, errors.Is(err, symtree.ErrDimensionMismatch))
}
