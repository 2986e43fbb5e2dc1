package symtree

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ============================================================
// Tool interface
// ============================================================

// ToolRequest is one call against the tool surface. Expressions are passed
// as infix text under "expr" and parsed over the "vars" list (default
// ["x"]). Vectors are arrays of expression strings; matrices are arrays of
// columns.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall runs req and reports any failure in ToolResponse.Error.
func HandleToolCall(req ToolRequest) ToolResponse {
	resp, err := CallTool(req)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

// CallTool runs req and returns failures as errors that match the package
// sentinels.
func CallTool(req ToolRequest) (ToolResponse, error) {
	p := toolParams(req.Params)

	switch req.Tool {
	case "parse":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(e), nil

	case "evaluate":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.bindings("bindings")
		if err != nil {
			return ToolResponse{}, err
		}
		r, err := Evaluate(e, b)
		if err != nil {
			return ToolResponse{}, err
		}
		switch r := r.(type) {
		case Resolved:
			return ToolResponse{Result: float64(r), String: r.String()}, nil
		default:
			return ToolResponse{Result: r.String(), String: r.String()}, nil
		}

	case "differentiate":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		d, err := Differentiate(e, p.optionalString("var"))
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(d), nil

	case "gradient":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		vars, err := p.variables()
		if err != nil {
			return ToolResponse{}, err
		}
		g, err := Gradient(e, vars)
		if err != nil {
			return ToolResponse{}, err
		}
		return respondVector(g), nil

	case "sample":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		domain, err := p.numbers("domain")
		if err != nil {
			return ToolResponse{}, err
		}
		fixed, err := p.bindings("fixed")
		if err != nil {
			return ToolResponse{}, err
		}
		ys, err := Sample(e, p.optionalString("var"), domain, fixed)
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Result: ys}, nil

	case "vector_add", "cross_product", "dot_product":
		a, err := p.vector("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.vector("b")
		if err != nil {
			return ToolResponse{}, err
		}
		switch req.Tool {
		case "vector_add":
			v, err := VectorAdd(a, b)
			if err != nil {
				return ToolResponse{}, err
			}
			return respondVector(v), nil
		case "cross_product":
			v, err := CrossProduct(a, b)
			if err != nil {
				return ToolResponse{}, err
			}
			return respondVector(v), nil
		}
		d, err := DotProduct(a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(d), nil

	case "scalar_multiply":
		a, err := p.vector("a")
		if err != nil {
			return ToolResponse{}, err
		}
		c, err := p.expr("scalar")
		if err != nil {
			return ToolResponse{}, err
		}
		return respondVector(ScalarMultiply(a, c)), nil

	case "evaluate_vector":
		a, err := p.vector("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.bindings("bindings")
		if err != nil {
			return ToolResponse{}, err
		}
		v, err := EvaluateVector(a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		return respondVector(v), nil

	case "differentiate_vector":
		a, err := p.vector("a")
		if err != nil {
			return ToolResponse{}, err
		}
		v, err := DifferentiateVector(a, p.optionalString("var"))
		if err != nil {
			return ToolResponse{}, err
		}
		return respondVector(v), nil

	case "matrix_add", "matrix_product":
		a, err := p.matrix("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.matrix("b")
		if err != nil {
			return ToolResponse{}, err
		}
		op := MatrixAdd
		if req.Tool == "matrix_product" {
			op = MatrixProduct
		}
		m, err := op(a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		return respondMatrix(m), nil

	case "matrix_vector_product":
		a, err := p.matrix("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.vector("b")
		if err != nil {
			return ToolResponse{}, err
		}
		v, err := MatrixVectorProduct(a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		return respondVector(v), nil

	case "evaluate_matrix":
		a, err := p.matrix("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.bindings("bindings")
		if err != nil {
			return ToolResponse{}, err
		}
		m, err := EvaluateMatrix(a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		return respondMatrix(m), nil

	case "differentiate_matrix":
		a, err := p.matrix("a")
		if err != nil {
			return ToolResponse{}, err
		}
		m, err := DifferentiateMatrix(a, p.optionalString("var"))
		if err != nil {
			return ToolResponse{}, err
		}
		return respondMatrix(m), nil

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec())}, nil
	}
	return ToolResponse{}, errors.Wrapf(ErrUnknownTool, "%q", req.Tool)
}

func respond(e *Expr) ToolResponse { return ToolResponse{Result: e, String: e.String()} }

func respondVector(v *Vector) ToolResponse { return ToolResponse{Result: v, String: v.String()} }

func respondMatrix(m *Matrix) ToolResponse { return ToolResponse{Result: m, String: m.String()} }

// ============================================================
// Parameter decoding
// ============================================================

type toolParams map[string]interface{}

func (p toolParams) get(key string) (interface{}, error) {
	v, ok := p[key]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOperand, "missing param: %s", key)
	}
	return v, nil
}

func (p toolParams) optionalString(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p toolParams) strings(key string) ([]string, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOperand, "param %s must be an array", key)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOperand, "param %s[%d] must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

func (p toolParams) numbers(key string) ([]float64, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOperand, "param %s must be an array", key)
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		f, ok := r.(float64)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOperand, "param %s[%d] must be a number", key, i)
		}
		out[i] = f
	}
	return out, nil
}

// variables returns "vars", or just DefaultVariable when absent.
func (p toolParams) variables() ([]string, error) {
	if _, ok := p["vars"]; !ok {
		return []string{DefaultVariable}, nil
	}
	return p.strings("vars")
}

func (p toolParams) expr(key string) (*Expr, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	text, ok := v.(string)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOperand, "param %s must be a string", key)
	}
	vars, err := p.variables()
	if err != nil {
		return nil, err
	}
	return Parse(vars, text)
}

// bindings reads an optional object of numbers.
func (p toolParams) bindings(key string) (Bindings, error) {
	v, ok := p[key]
	if !ok {
		return Bindings{}, nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOperand, "param %s must be an object", key)
	}
	b := make(Bindings, len(raw))
	for name, r := range raw {
		f, ok := r.(float64)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOperand, "param %s.%s must be a number", key, name)
		}
		b[name] = f
	}
	return b, nil
}

func (p toolParams) vector(key string) (*Vector, error) {
	texts, err := p.strings(key)
	if err != nil {
		return nil, err
	}
	return p.parseVector(key, texts)
}

func (p toolParams) parseVector(key string, texts []string) (*Vector, error) {
	vars, err := p.variables()
	if err != nil {
		return nil, err
	}
	cs := make([]*Expr, len(texts))
	for i, t := range texts {
		e, err := Parse(vars, t)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s[%d]", key, i)
		}
		cs[i] = e
	}
	return &Vector{components: cs}, nil
}

// matrix reads an array of columns, each an array of expression strings.
func (p toolParams) matrix(key string) (*Matrix, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOperand, "param %s must be an array of columns", key)
	}
	columns := make([]*Vector, len(raw))
	for j, r := range raw {
		col, ok := r.([]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOperand, "param %s[%d] must be an array", key, j)
		}
		texts := make([]string, len(col))
		for i, c := range col {
			s, ok := c.(string)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidOperand, "param %s[%d][%d] must be a string", key, j, i)
			}
			texts[i] = s
		}
		columns[j], err = p.parseVector(key, texts)
		if err != nil {
			return nil, err
		}
	}
	return NewMatrix(columns...)
}

// ============================================================
// Tool schema
// ============================================================

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	expr := map[string]string{"expr": "string", "vars": "array"}
	with := func(base map[string]string, extra ...string) map[string]string {
		out := map[string]string{}
		for k, v := range base {
			out[k] = v
		}
		for i := 0; i+1 < len(extra); i += 2 {
			out[extra[i]] = extra[i+1]
		}
		return out
	}
	vec := map[string]string{"a": "array", "b": "array", "vars": "array"}
	mat := map[string]string{"a": "array", "b": "array", "vars": "array"}

	tools := []map[string]interface{}{
		ts("parse", "Parse infix text over vars into an expression tree", []string{"expr"}, expr),
		ts("evaluate", "Evaluate with optional bindings; unbound variables leave text", []string{"expr"}, with(expr, "bindings", "object")),
		ts("differentiate", "Derivative with respect to var (default x)", []string{"expr"}, with(expr, "var", "string")),
		ts("gradient", "Partial derivatives for each of vars", []string{"expr", "vars"}, expr),
		ts("sample", "Evaluate at each point of domain, holding fixed bindings", []string{"expr", "domain"}, with(expr, "var", "string", "domain", "array", "fixed", "object")),
		ts("vector_add", "Component-wise sum of vectors a and b", []string{"a", "b"}, vec),
		ts("scalar_multiply", "Multiply every component of a by scalar", []string{"a", "scalar"}, map[string]string{"a": "array", "scalar": "string", "vars": "array"}),
		ts("cross_product", "Cross product of three-dimensional vectors", []string{"a", "b"}, vec),
		ts("dot_product", "Dot product of vectors a and b", []string{"a", "b"}, vec),
		ts("evaluate_vector", "Evaluate every component of a", []string{"a"}, map[string]string{"a": "array", "vars": "array", "bindings": "object"}),
		ts("differentiate_vector", "Differentiate every component of a", []string{"a"}, map[string]string{"a": "array", "vars": "array", "var": "string"}),
		ts("matrix_add", "Entry-wise sum; matrices are arrays of columns", []string{"a", "b"}, mat),
		ts("matrix_product", "Matrix product a*b", []string{"a", "b"}, mat),
		ts("matrix_vector_product", "Product of matrix a with vector b", []string{"a", "b"}, mat),
		ts("evaluate_matrix", "Evaluate every entry of a", []string{"a"}, map[string]string{"a": "array", "vars": "array", "bindings": "object"}),
		ts("differentiate_matrix", "Differentiate every entry of a", []string{"a"}, map[string]string{"a": "array", "vars": "array", "var": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": tools}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
