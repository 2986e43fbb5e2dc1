package symtree

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ============================================================
// JSON Serialization
// ============================================================

type exprJSON struct {
	Op    string `json:"op"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
	Left  *Expr  `json:"left,omitempty"`
	Right *Expr  `json:"right,omitempty"`
}

// MarshalJSON encodes e as {"op": tag, ...} with "name" for identifiers,
// "value" for constants and "left"/"right" for operands.
func (e *Expr) MarshalJSON() ([]byte, error) {
	out := exprJSON{Op: e.op.String(), Left: e.left, Right: e.right}
	switch e.op {
	case OpIdentifier:
		out.Name = e.name
	case OpConstant:
		out.Value = e.literal
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the MarshalJSON form, validating it through New.
func (e *Expr) UnmarshalJSON(data []byte) error {
	var in exprJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	op, err := ParseOp(in.Op)
	if err != nil {
		return err
	}
	var left, right any
	switch op {
	case OpIdentifier:
		left = in.Name
	case OpConstant:
		left = in.Value
	default:
		left, right = in.Left, in.Right
	}
	built, err := New(op, left, right)
	if err != nil {
		return errors.Wrapf(err, "decode %s", op)
	}
	*e = *built
	return nil
}

// ToJSON returns the JSON encoding of e.
func ToJSON(e *Expr) (string, error) {
	b, err := json.Marshal(e)
	return string(b), err
}

// FromJSON decodes an expression produced by ToJSON.
func FromJSON(data []byte) (*Expr, error) {
	e := new(Expr)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (v *Vector) MarshalJSON() ([]byte, error) {
	if v.components == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.components)
}

func (v *Vector) UnmarshalJSON(data []byte) error {
	var cs []*Expr
	if err := json.Unmarshal(data, &cs); err != nil {
		return err
	}
	for i, c := range cs {
		if c == nil {
			return errors.Wrapf(ErrInvalidOperand, "decode vector: component %d is null", i)
		}
	}
	v.components = cs
	return nil
}

type matrixJSON struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Columns []*Vector `json:"columns"`
}

func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Rows: m.rows, Cols: m.cols, Columns: m.columns})
}

func (m *Matrix) UnmarshalJSON(data []byte) error {
	var in matrixJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	built, err := NewMatrix(in.Columns...)
	if err != nil {
		return err
	}
	if built.cols != in.Cols || (built.cols > 0 && built.rows != in.Rows) {
		return errors.Wrapf(ErrDimensionMismatch, "decode matrix: declared %dx%d, columns give %dx%d", in.Rows, in.Cols, built.rows, built.cols)
	}
	*m = *built
	return nil
}
