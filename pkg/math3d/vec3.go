package math3d

import (
	"fmt"
	"io"

	"github.com/chewxy/math32"
)

// Vector3d is a 3D vector or point.
type Vector3d struct {
	X, Y, Z float32
}

// V3 creates a new Vector3d.
func V3(x, y, z float32) Vector3d {
	return Vector3d{x, y, z}
}

// AsMatrix returns the vector as a 3x1 column matrix.
func (a Vector3d) AsMatrix() Matrix[Shape3x1] {
	return NewMatrix[Shape3x1](a.X, a.Y, a.Z)
}

// Vector3dFromMatrix converts a 3x1 column matrix.
func Vector3dFromMatrix(m Matrix[Shape3x1]) Vector3d {
	return Vector3d{m.v[0], m.v[1], m.v[2]}
}

// Set replaces all three components.
func (a *Vector3d) Set(x, y, z float32) {
	a.X, a.Y, a.Z = x, y, z
}

// Add returns a + b.
func (a Vector3d) Add(b Vector3d) Vector3d {
	return Vector3d{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vector3d) Sub(b Vector3d) Vector3d {
	return Vector3d{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns a * s.
func (a Vector3d) Scale(s float32) Vector3d {
	return Vector3d{a.X * s, a.Y * s, a.Z * s}
}

// Div returns a / s.
func (a Vector3d) Div(s float32) Vector3d {
	return Vector3d{a.X / s, a.Y / s, a.Z / s}
}

// Neg returns -a.
func (a Vector3d) Neg() Vector3d {
	return Vector3d{-a.X, -a.Y, -a.Z}
}

// Dot returns a · b.
func (a Vector3d) Dot(b Vector3d) float32 {
	return DotProduct(a.AsMatrix(), b.AsMatrix())
}

// Magnitude returns the length of the vector.
func (a Vector3d) Magnitude() float32 {
	return a.AsMatrix().Magnitude()
}

// SquareMagnitude returns the squared length.
func (a Vector3d) SquareMagnitude() float32 {
	return a.AsMatrix().SquareMagnitude()
}

// Length is an alias of Magnitude.
func (a Vector3d) Length() float32 {
	return a.Magnitude()
}

// Normalize scales the vector to unit length; the zero vector is left as is.
func (a *Vector3d) Normalize() {
	m := a.AsMatrix()
	m.Normalize()
	*a = Vector3dFromMatrix(m)
}

// Normalized returns a unit-length copy.
func (a Vector3d) Normalized() Vector3d {
	a.Normalize()
	return a
}

// DistanceTo returns the distance between two points.
func (a Vector3d) DistanceTo(b Vector3d) float32 {
	return a.AsMatrix().DistanceTo(b.AsMatrix())
}

// UnitCircleAngle returns the heading of the vector in the XY plane.
// Z is ignored.
func (a Vector3d) UnitCircleAngle() Angle {
	return ArcTangent2(a.Y, a.X)
}

// MulMatrix3 returns the row-vector product a*m.
func (a Vector3d) MulMatrix3(m Matrix3) Vector3d {
	row := NewMatrix[Shape1x3](a.X, a.Y, a.Z)
	out := Multiply[Shape1x3](row, m.Matrix)
	return Vector3d{out.v[0], out.v[1], out.v[2]}
}

// Min returns the component-wise minimum.
func (a Vector3d) Min(b Vector3d) Vector3d {
	return Vector3d{math32.Min(a.X, b.X), math32.Min(a.Y, b.Y), math32.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum.
func (a Vector3d) Max(b Vector3d) Vector3d {
	return Vector3d{math32.Max(a.X, b.X), math32.Max(a.Y, b.Y), math32.Max(a.Z, b.Z)}
}

// IsZero reports whether all components are zero.
func (a Vector3d) IsZero() bool {
	return a == Vector3d{}
}

// ReadFromStream reads X, Y, Z as little-endian float32.
func (a *Vector3d) ReadFromStream(r io.Reader) error {
	var m Matrix[Shape3x1]
	if err := m.ReadFromStream(r); err != nil {
		return err
	}
	*a = Vector3dFromMatrix(m)
	return nil
}

func (a Vector3d) String() string {
	return fmt.Sprintf("(%g, %g, %g)", a.X, a.Y, a.Z)
}

// CrossProduct returns a × b.
func CrossProduct(a, b Vector3d) Vector3d {
	return Vector3d{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// AngleBetween returns the angle between two vectors. The cosine is
// clamped to [-1, 1] so rounding never produces NaN.
func AngleBetween(a, b Vector3d) Angle {
	c := a.Dot(b) / (a.Magnitude() * b.Magnitude())
	return ArcCosine(math32.Min(math32.Max(c, -1), 1))
}

// Interpolate returns a*(1-t) + b*t. t is not clamped.
func Interpolate(a, b Vector3d, t float32) Vector3d {
	return a.Scale(1 - t).Add(b.Scale(t))
}
