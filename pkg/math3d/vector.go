package math3d

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
)

func vectorLen[S Shape]() int {
	rows, cols := dims[S]()
	if cols != 1 {
		panic(fmt.Sprintf("math3d: %dx%d matrix is not a column vector", rows, cols))
	}
	return rows
}

// SquareMagnitude returns the sum of squared components of a column vector.
func (m Matrix[S]) SquareMagnitude() float32 {
	n := vectorLen[S]()
	var sum float32
	for i := range n {
		sum += m.v[i] * m.v[i]
	}
	return sum
}

// Magnitude returns the Euclidean length of a column vector.
func (m Matrix[S]) Magnitude() float32 {
	return math32.Sqrt(m.SquareMagnitude())
}

// Normalize scales a column vector to unit length. A zero vector is left
// unchanged.
func (m *Matrix[S]) Normalize() {
	mag := m.Magnitude()
	if mag == 0 {
		return
	}
	n := vectorLen[S]()
	for i := range n {
		m.v[i] /= mag
	}
}

// Normalized returns a unit-length copy of a column vector.
func (m Matrix[S]) Normalized() Matrix[S] {
	m.Normalize()
	return m
}

// Dot returns the dot product of two column vectors.
func (m Matrix[S]) Dot(o Matrix[S]) float32 {
	return DotProduct(m, o)
}

// DistanceTo returns the Euclidean distance between two column vectors.
func (m Matrix[S]) DistanceTo(o Matrix[S]) float32 {
	return Difference(m, o).Magnitude()
}

// DotProduct returns the dot product of two column vectors.
func DotProduct[S Shape](a, b Matrix[S]) float32 {
	n := vectorLen[S]()
	var sum float32
	for i := range n {
		sum += a.v[i] * b.v[i]
	}
	return sum
}

// ReadFromStream fills a column vector with consecutive little-endian
// float32 values, in index order. Short reads return the reader's error.
func (m *Matrix[S]) ReadFromStream(r io.Reader) error {
	n := vectorLen[S]()
	var buf [maxElems * 4]byte
	if _, err := io.ReadFull(r, buf[:n*4]); err != nil {
		return fmt.Errorf("read %d floats: %w", n, err)
	}
	for i := range n {
		m.v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return nil
}
