package symtree

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================
// Matrix — column-major matrix of expressions
// ============================================================

// Matrix stores its entries as column vectors. Rows is the dimension shared
// by every column; Cols is the number of columns.
type Matrix struct {
	rows, cols int
	columns    []*Vector
}

// NewMatrix builds a matrix from its columns, which must share one dimension.
func NewMatrix(columns ...*Vector) (*Matrix, error) {
	m := &Matrix{cols: len(columns), columns: append([]*Vector(nil), columns...)}
	for j, c := range columns {
		if c == nil {
			return nil, errors.Wrapf(ErrInvalidOperand, "NewMatrix: column %d is nil", j)
		}
		if j == 0 {
			m.rows = c.Dim()
			continue
		}
		if c.Dim() != m.rows {
			return nil, errors.Wrapf(ErrDimensionMismatch, "NewMatrix: column %d has dimension %d, want %d", j, c.Dim(), m.rows)
		}
	}
	return m, nil
}

// MatrixFromRows builds a matrix from row-major entries.
func MatrixFromRows(rows ...[]*Expr) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	columns := make([]*Vector, cols)
	for j := 0; j < cols; j++ {
		cs := make([]*Expr, len(rows))
		for i, row := range rows {
			if len(row) != cols {
				return nil, errors.Wrapf(ErrDimensionMismatch, "MatrixFromRows: row %d has %d entries, want %d", i, len(row), cols)
			}
			cs[i] = row[j]
		}
		columns[j] = NewVector(cs...)
	}
	return NewMatrix(columns...)
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symtree: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
}

func (m *Matrix) At(row, col int) *Expr {
	m.checkBounds(row, col)
	return m.columns[col].components[row]
}

// Column returns column j.
func (m *Matrix) Column(j int) *Vector {
	m.checkBounds(0, j)
	return m.columns[j]
}

// Row gathers row i into a vector.
func (m *Matrix) Row(i int) *Vector {
	m.checkBounds(i, 0)
	cs := make([]*Expr, m.cols)
	for j, c := range m.columns {
		cs[j] = c.components[i]
	}
	return &Vector{components: cs}
}

func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{rows: m.cols, cols: m.rows, columns: make([]*Vector, m.rows)}
	for i := 0; i < m.rows; i++ {
		t.columns[i] = m.Row(i)
	}
	return t
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.Row(i).String())
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for j := range m.columns {
		if !m.columns[j].Equal(other.columns[j]) {
			return false
		}
	}
	return true
}

// ============================================================
// Matrix arithmetic
// ============================================================

// MatrixAdd adds a and b entry-wise.
func MatrixAdd(a, b *Matrix) (*Matrix, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, errors.Wrapf(ErrDimensionMismatch, "MatrixAdd: %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := &Matrix{rows: a.rows, cols: a.cols, columns: make([]*Vector, a.cols)}
	for j := range out.columns {
		col, err := VectorAdd(a.columns[j], b.columns[j])
		if err != nil {
			return nil, errors.Wrapf(err, "MatrixAdd: column %d", j)
		}
		out.columns[j] = col
	}
	return out, nil
}

// MatrixProduct returns a*b. Entry (i, j) is the dot product of row i of a
// with column j of b.
func MatrixProduct(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, errors.Wrapf(ErrDimensionMismatch, "MatrixProduct: %dx%d times %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	rows := make([]*Vector, a.rows)
	for i := range rows {
		rows[i] = a.Row(i)
	}
	out := &Matrix{rows: a.rows, cols: b.cols, columns: make([]*Vector, b.cols)}
	for j, col := range b.columns {
		cs := make([]*Expr, a.rows)
		for i, row := range rows {
			d, err := DotProduct(row, col)
			if err != nil {
				return nil, err
			}
			cs[i] = d
		}
		out.columns[j] = &Vector{components: cs}
	}
	return out, nil
}

// MatrixVectorProduct returns m*v.
func MatrixVectorProduct(m *Matrix, v *Vector) (*Vector, error) {
	if m.cols != v.Dim() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "MatrixVectorProduct: %dx%d times %d", m.rows, m.cols, v.Dim())
	}
	cs := make([]*Expr, m.rows)
	for i := range cs {
		d, err := DotProduct(m.Row(i), v)
		if err != nil {
			return nil, err
		}
		cs[i] = d
	}
	return &Vector{components: cs}, nil
}

// EvaluateMatrix evaluates m column by column with EvaluateVector.
func EvaluateMatrix(m *Matrix, b Bindings) (*Matrix, error) {
	out := &Matrix{rows: m.rows, cols: m.cols, columns: make([]*Vector, m.cols)}
	for j, c := range m.columns {
		col, err := EvaluateVector(c, b)
		if err != nil {
			return nil, errors.Wrapf(err, "EvaluateMatrix: column %d", j)
		}
		out.columns[j] = col
	}
	return out, nil
}

// DifferentiateMatrix differentiates m entry-wise.
func DifferentiateMatrix(m *Matrix, variable string) (*Matrix, error) {
	out := &Matrix{rows: m.rows, cols: m.cols, columns: make([]*Vector, m.cols)}
	for j, c := range m.columns {
		col, err := DifferentiateVector(c, variable)
		if err != nil {
			return nil, errors.Wrapf(err, "DifferentiateMatrix: column %d", j)
		}
		out.columns[j] = col
	}
	return out, nil
}
