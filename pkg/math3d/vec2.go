package math3d

import "io"

// Vector2d is a 2D vector.
type Vector2d struct {
	X, Y float32
}

// V2 creates a new Vector2d.
func V2(x, y float32) Vector2d {
	return Vector2d{x, y}
}

// AsMatrix returns the vector as a 2x1 column matrix.
func (a Vector2d) AsMatrix() Matrix[Shape2x1] {
	return NewMatrix[Shape2x1](a.X, a.Y)
}

// Vector2dFromMatrix converts a 2x1 column matrix.
func Vector2dFromMatrix(m Matrix[Shape2x1]) Vector2d {
	return Vector2d{m.v[0], m.v[1]}
}

// Add returns a + b.
func (a Vector2d) Add(b Vector2d) Vector2d {
	return Vector2d{a.X + b.X, a.Y + b.Y}
}

// Sub returns a - b.
func (a Vector2d) Sub(b Vector2d) Vector2d {
	return Vector2d{a.X - b.X, a.Y - b.Y}
}

// Scale returns a * s.
func (a Vector2d) Scale(s float32) Vector2d {
	return Vector2d{a.X * s, a.Y * s}
}

// Neg returns -a.
func (a Vector2d) Neg() Vector2d {
	return Vector2d{-a.X, -a.Y}
}

// Dot returns a · b.
func (a Vector2d) Dot(b Vector2d) float32 {
	return a.X*b.X + a.Y*b.Y
}

// Magnitude returns the length of the vector.
func (a Vector2d) Magnitude() float32 {
	return a.AsMatrix().Magnitude()
}

// SquareMagnitude returns the squared length.
func (a Vector2d) SquareMagnitude() float32 {
	return a.AsMatrix().SquareMagnitude()
}

// Normalize scales the vector to unit length; the zero vector is left as is.
func (a *Vector2d) Normalize() {
	m := a.AsMatrix()
	m.Normalize()
	*a = Vector2dFromMatrix(m)
}

// Normalized returns a unit-length copy.
func (a Vector2d) Normalized() Vector2d {
	a.Normalize()
	return a
}

// DistanceTo returns the distance between two points.
func (a Vector2d) DistanceTo(b Vector2d) float32 {
	return a.AsMatrix().DistanceTo(b.AsMatrix())
}

// RotateAround rotates the point around center by angle, counter-clockwise
// for a y-up frame.
func (a *Vector2d) RotateAround(center Vector2d, angle Angle) {
	x := a.X - center.X
	y := a.Y - center.Y
	cosa, sina := angle.Cos(), angle.Sin()
	a.X = x*cosa - y*sina + center.X
	a.Y = x*sina + y*cosa + center.Y
}

// Angle returns the direction of the vector measured from +X.
func (a Vector2d) Angle() Angle {
	return ArcTangent2(a.Y, a.X)
}

// ToVector3d extends the vector with z = 0.
func (a Vector2d) ToVector3d() Vector3d {
	return Vector3d{a.X, a.Y, 0}
}

// ReadFromStream reads X then Y as little-endian float32.
func (a *Vector2d) ReadFromStream(r io.Reader) error {
	var m Matrix[Shape2x1]
	if err := m.ReadFromStream(r); err != nil {
		return err
	}
	*a = Vector2dFromMatrix(m)
	return nil
}
