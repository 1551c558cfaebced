package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense rows×cols linear map with row-major entry storage.
type Matrix struct {
	d *mat.Dense
}

// NewMatrix builds a rows×cols matrix from row-major entries. The entry
// count must equal rows*cols.
func NewMatrix(rows, cols int, entries ...float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: matrix shape %dx%d", ErrDimensionMismatch, rows, cols)
	}
	if len(entries) != rows*cols {
		return nil, mismatch("matrix entries", len(entries), rows*cols)
	}
	data := make([]float64, len(entries))
	copy(data, entries)
	return &Matrix{d: mat.NewDense(rows, cols, data)}, nil
}

func (m *Matrix) Rows() int {
	r, _ := m.d.Dims()
	return r
}

func (m *Matrix) Cols() int {
	_, c := m.d.Dims()
	return c
}

func (m *Matrix) At(i, j int) float64 { return m.d.At(i, j) }

// Apply returns m·v as a new vector without modifying v.
func (m *Matrix) Apply(v Vector) (Vector, error) {
	rows, cols := m.d.Dims()
	if len(v) != cols {
		return nil, mismatch("linear transform", len(v), cols)
	}
	out := mat.NewVecDense(rows, nil)
	out.MulVec(m.d, mat.NewVecDense(cols, v.Clone()))
	return New(out.RawVector().Data...), nil
}
