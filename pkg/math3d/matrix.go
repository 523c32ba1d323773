// Package math3d provides the vector, matrix, quaternion and bounding-box
// types shared by the engines.
//
// Matrices are row-major. Matrix3 and Matrix4 transform column vectors
// (M*v); Vector3d.MulMatrix3 is the one row-vector (v*M) entry point.
package math3d

import (
	"fmt"
	"strings"
)

// maxElems is the largest backing store a Matrix may use (4x4).
const maxElems = 16

// Shape fixes the dimensions of a Matrix. Implementations are zero-size
// types; the methods must return constants.
type Shape interface {
	Rows() int
	Cols() int
}

// Provided shapes. Vectors are column matrices (N x 1).
type (
	Shape1x1 struct{}
	Shape2x1 struct{}
	Shape3x1 struct{}
	Shape4x1 struct{}
	Shape1x2 struct{}
	Shape1x3 struct{}
	Shape1x4 struct{}
	Shape2x2 struct{}
	Shape3x3 struct{}
	Shape4x4 struct{}
	Shape3x4 struct{}
	Shape4x3 struct{}
)

func (Shape1x1) Rows() int { return 1 }
func (Shape1x1) Cols() int { return 1 }
func (Shape2x1) Rows() int { return 2 }
func (Shape2x1) Cols() int { return 1 }
func (Shape3x1) Rows() int { return 3 }
func (Shape3x1) Cols() int { return 1 }
func (Shape4x1) Rows() int { return 4 }
func (Shape4x1) Cols() int { return 1 }
func (Shape1x2) Rows() int { return 1 }
func (Shape1x2) Cols() int { return 2 }
func (Shape1x3) Rows() int { return 1 }
func (Shape1x3) Cols() int { return 3 }
func (Shape1x4) Rows() int { return 1 }
func (Shape1x4) Cols() int { return 4 }
func (Shape2x2) Rows() int { return 2 }
func (Shape2x2) Cols() int { return 2 }
func (Shape3x3) Rows() int { return 3 }
func (Shape3x3) Cols() int { return 3 }
func (Shape4x4) Rows() int { return 4 }
func (Shape4x4) Cols() int { return 4 }
func (Shape3x4) Rows() int { return 3 }
func (Shape3x4) Cols() int { return 4 }
func (Shape4x3) Rows() int { return 4 }
func (Shape4x3) Cols() int { return 3 }

func dims[S Shape]() (rows, cols int) {
	var s S
	rows, cols = s.Rows(), s.Cols()
	if rows <= 0 || cols <= 0 || rows*cols > maxElems {
		panic(fmt.Sprintf("math3d: unsupported matrix shape %dx%d", rows, cols))
	}
	return rows, cols
}

// Matrix is a fixed-size dense matrix. The zero value is the zero matrix.
//
// Elements past Rows()*Cols() are never written, so two matrices of the
// same shape compare equal with == exactly when all their elements do.
type Matrix[S Shape] struct {
	v [maxElems]float32
}

// NewMatrix builds a matrix from row-major values. Missing values stay
// zero; extra values panic.
func NewMatrix[S Shape](values ...float32) Matrix[S] {
	rows, cols := dims[S]()
	if len(values) > rows*cols {
		panic(fmt.Sprintf("math3d: %d values for a %dx%d matrix", len(values), rows, cols))
	}
	var m Matrix[S]
	copy(m.v[:], values)
	return m
}

// Rows returns the number of rows.
func (m Matrix[S]) Rows() int {
	r, _ := dims[S]()
	return r
}

// Cols returns the number of columns.
func (m Matrix[S]) Cols() int {
	_, c := dims[S]()
	return c
}

func (m *Matrix[S]) index(row, col int) int {
	rows, cols := dims[S]()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		panic(fmt.Sprintf("math3d: index (%d,%d) out of range for %dx%d matrix", row, col, rows, cols))
	}
	return row*cols + col
}

// Value returns the element at (row, col). Out-of-range access panics.
func (m Matrix[S]) Value(row, col int) float32 {
	return m.v[m.index(row, col)]
}

// SetValue sets the element at (row, col). Out-of-range access panics.
func (m *Matrix[S]) SetValue(row, col int, val float32) {
	m.v[m.index(row, col)] = val
}

// Values returns the row-major elements.
func (m Matrix[S]) Values() []float32 {
	rows, cols := dims[S]()
	out := make([]float32, rows*cols)
	copy(out, m.v[:rows*cols])
	return out
}

// SetRow fills row i from the left. Fewer values than columns leave the
// remaining elements untouched.
func (m *Matrix[S]) SetRow(i int, values ...float32) {
	r := m.Row(i)
	for _, v := range values {
		r = r.Put(v)
	}
}

// RowBuilder fills one matrix row left to right.
type RowBuilder[S Shape] struct {
	m   *Matrix[S]
	row int
	col int
}

// Row returns a builder positioned at the first column of row i.
//
//	m.Row(0).Put(a).Put(b).Put(c)
func (m *Matrix[S]) Row(i int) RowBuilder[S] {
	m.index(i, 0)
	return RowBuilder[S]{m: m, row: i}
}

// Put writes the next element of the row.
func (r RowBuilder[S]) Put(v float32) RowBuilder[S] {
	r.m.SetValue(r.row, r.col, v)
	r.col++
	return r
}

// IsZero reports whether every element is zero.
func (m Matrix[S]) IsZero() bool {
	rows, cols := dims[S]()
	for i := range rows * cols {
		if m.v[i] != 0 {
			return false
		}
	}
	return true
}

// Negative returns -m.
func (m Matrix[S]) Negative() Matrix[S] {
	return Product(m, -1)
}

// Add returns m + o.
func (m Matrix[S]) Add(o Matrix[S]) Matrix[S] {
	return Sum(m, o)
}

// Sub returns m - o.
func (m Matrix[S]) Sub(o Matrix[S]) Matrix[S] {
	return Difference(m, o)
}

// Scale returns m * f.
func (m Matrix[S]) Scale(f float32) Matrix[S] {
	return Product(m, f)
}

// Div returns m / f.
func (m Matrix[S]) Div(f float32) Matrix[S] {
	return Quotient(m, f)
}

// Equal compares every element exactly.
func (m Matrix[S]) Equal(o Matrix[S]) bool {
	return m == o
}

// Sum returns the elementwise sum.
func Sum[S Shape](a, b Matrix[S]) Matrix[S] {
	rows, cols := dims[S]()
	var out Matrix[S]
	for i := range rows * cols {
		out.v[i] = a.v[i] + b.v[i]
	}
	return out
}

// Difference returns the elementwise difference a - b.
func Difference[S Shape](a, b Matrix[S]) Matrix[S] {
	rows, cols := dims[S]()
	var out Matrix[S]
	for i := range rows * cols {
		out.v[i] = a.v[i] - b.v[i]
	}
	return out
}

// Product multiplies every element by f.
func Product[S Shape](a Matrix[S], f float32) Matrix[S] {
	rows, cols := dims[S]()
	var out Matrix[S]
	for i := range rows * cols {
		out.v[i] = a.v[i] * f
	}
	return out
}

// Quotient divides every element by f.
func Quotient[S Shape](a Matrix[S], f float32) Matrix[S] {
	rows, cols := dims[S]()
	var out Matrix[S]
	for i := range rows * cols {
		out.v[i] = a.v[i] / f
	}
	return out
}

// ElementProduct returns the elementwise (Hadamard) product.
func ElementProduct[S Shape](a, b Matrix[S]) Matrix[S] {
	rows, cols := dims[S]()
	var out Matrix[S]
	for i := range rows * cols {
		out.v[i] = a.v[i] * b.v[i]
	}
	return out
}

// ElementQuotient returns the elementwise quotient a / b.
func ElementQuotient[S Shape](a, b Matrix[S]) Matrix[S] {
	rows, cols := dims[S]()
	var out Matrix[S]
	for i := range rows * cols {
		out.v[i] = a.v[i] / b.v[i]
	}
	return out
}

// Multiply returns the matrix product a*b. The result shape is given
// explicitly; the operand shapes are inferred:
//
//	v := math3d.Multiply[math3d.Shape4x1](m, p)
//
// a.Cols() must equal b.Rows(), and C must be a.Rows() x b.Cols().
func Multiply[C, A, B Shape](a Matrix[A], b Matrix[B]) Matrix[C] {
	ar, ac := dims[A]()
	br, bc := dims[B]()
	cr, cc := dims[C]()
	if ac != br || cr != ar || cc != bc {
		panic(fmt.Sprintf("math3d: cannot multiply %dx%d by %dx%d into %dx%d", ar, ac, br, bc, cr, cc))
	}
	var out Matrix[C]
	for r := range ar {
		for c := range bc {
			var sum float32
			for k := range ac {
				sum += a.v[r*ac+k] * b.v[k*bc+c]
			}
			out.v[r*cc+c] = sum
		}
	}
	return out
}

// Transpose returns the transpose of m in shape T, which must be the
// mirror of S.
func Transpose[T, S Shape](m Matrix[S]) Matrix[T] {
	rows, cols := dims[S]()
	tr, tc := dims[T]()
	if tr != cols || tc != rows {
		panic(fmt.Sprintf("math3d: cannot transpose %dx%d into %dx%d", rows, cols, tr, tc))
	}
	var out Matrix[T]
	for r := range rows {
		for c := range cols {
			out.v[c*tc+r] = m.v[r*cols+c]
		}
	}
	return out
}

// Identity returns the identity matrix for a square shape.
func Identity[S Shape]() Matrix[S] {
	rows, cols := dims[S]()
	if rows != cols {
		panic(fmt.Sprintf("math3d: identity of non-square %dx%d matrix", rows, cols))
	}
	var m Matrix[S]
	for i := range rows {
		m.v[i*cols+i] = 1
	}
	return m
}

// Inverse inverts a square matrix by Gauss-Jordan elimination with
// partial pivoting. ok is false when the matrix is singular.
func (m Matrix[S]) Inverse() (inv Matrix[S], ok bool) {
	n, cols := dims[S]()
	if n != cols {
		panic(fmt.Sprintf("math3d: inverse of non-square %dx%d matrix", n, cols))
	}
	a := m
	inv = Identity[S]()
	for col := range n {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs32(a.v[r*n+col]) > abs32(a.v[pivot*n+col]) {
				pivot = r
			}
		}
		if a.v[pivot*n+col] == 0 {
			return Matrix[S]{}, false
		}
		if pivot != col {
			for c := range n {
				a.v[col*n+c], a.v[pivot*n+c] = a.v[pivot*n+c], a.v[col*n+c]
				inv.v[col*n+c], inv.v[pivot*n+c] = inv.v[pivot*n+c], inv.v[col*n+c]
			}
		}
		p := a.v[col*n+col]
		for c := range n {
			a.v[col*n+c] /= p
			inv.v[col*n+c] /= p
		}
		for r := range n {
			if r == col {
				continue
			}
			f := a.v[r*n+col]
			if f == 0 {
				continue
			}
			for c := range n {
				a.v[r*n+c] -= f * a.v[col*n+c]
				inv.v[r*n+c] -= f * inv.v[col*n+c]
			}
		}
	}
	return inv, true
}

// Determinant returns det(m) for a square matrix by row reduction.
func (m Matrix[S]) Determinant() float32 {
	n, cols := dims[S]()
	if n != cols {
		panic(fmt.Sprintf("math3d: determinant of non-square %dx%d matrix", n, cols))
	}
	a := m
	det := float32(1)
	for col := range n {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs32(a.v[r*n+col]) > abs32(a.v[pivot*n+col]) {
				pivot = r
			}
		}
		if a.v[pivot*n+col] == 0 {
			return 0
		}
		if pivot != col {
			for c := range n {
				a.v[col*n+c], a.v[pivot*n+c] = a.v[pivot*n+c], a.v[col*n+c]
			}
			det = -det
		}
		p := a.v[col*n+col]
		det *= p
		for r := col + 1; r < n; r++ {
			f := a.v[r*n+col] / p
			for c := col; c < n; c++ {
				a.v[r*n+c] -= f * a.v[col*n+c]
			}
		}
	}
	return det
}

// TransformVector replaces v with m*v. m must be square with as many
// columns as v has rows.
func TransformVector[S, V Shape](m Matrix[S], v *Matrix[V]) {
	*v = Multiply[V](m, *v)
}

func (m Matrix[S]) String() string {
	rows, cols := dims[S]()
	var b strings.Builder
	for r := range rows {
		b.WriteString("[")
		for c := range cols {
			if c > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%g", m.v[r*cols+c])
		}
		b.WriteString("]")
		if r < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
