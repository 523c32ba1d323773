package math3d

import "io"

// Vector4d represents a 4D vector (or homogeneous 3D point).
type Vector4d struct {
	X, Y, Z, W float32
}

// V4 creates a new Vector4d.
func V4(x, y, z, w float32) Vector4d {
	return Vector4d{x, y, z, w}
}

// V4FromV3 creates a Vector4d from a Vector3d with the given W.
func V4FromV3(v Vector3d, w float32) Vector4d {
	return Vector4d{v.X, v.Y, v.Z, w}
}

// AsMatrix returns the vector as a 4x1 column matrix.
func (v Vector4d) AsMatrix() Matrix[Shape4x1] {
	return NewMatrix[Shape4x1](v.X, v.Y, v.Z, v.W)
}

// Vector4dFromMatrix converts a 4x1 column matrix.
func Vector4dFromMatrix(m Matrix[Shape4x1]) Vector4d {
	return Vector4d{m.v[0], m.v[1], m.v[2], m.v[3]}
}

// Set replaces all four components.
func (v *Vector4d) Set(x, y, z, w float32) {
	v.X, v.Y, v.Z, v.W = x, y, z, w
}

// XYZ drops W.
func (v Vector4d) XYZ() Vector3d {
	return Vector3d{v.X, v.Y, v.Z}
}

// Add returns the vector sum.
func (v Vector4d) Add(b Vector4d) Vector4d {
	return Vector4d{v.X + b.X, v.Y + b.Y, v.Z + b.Z, v.W + b.W}
}

// Sub returns the vector difference.
func (v Vector4d) Sub(b Vector4d) Vector4d {
	return Vector4d{v.X - b.X, v.Y - b.Y, v.Z - b.Z, v.W - b.W}
}

// Scale returns the scalar product.
func (v Vector4d) Scale(s float32) Vector4d {
	return Vector4d{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Dot returns the dot product.
func (v Vector4d) Dot(b Vector4d) float32 {
	return DotProduct(v.AsMatrix(), b.AsMatrix())
}

// Magnitude returns the length.
func (v Vector4d) Magnitude() float32 {
	return v.AsMatrix().Magnitude()
}

// Normalize scales the vector to unit length; the zero vector is left as is.
func (v *Vector4d) Normalize() {
	m := v.AsMatrix()
	m.Normalize()
	*v = Vector4dFromMatrix(m)
}

// SquareMagnitude returns the squared length.
func (v Vector4d) SquareMagnitude() float32 {
	return v.AsMatrix().SquareMagnitude()
}

// Normalized returns a unit-length copy.
func (v Vector4d) Normalized() Vector4d {
	v.Normalize()
	return v
}

// DistanceTo returns the distance between two points.
func (v Vector4d) DistanceTo(b Vector4d) float32 {
	return v.AsMatrix().DistanceTo(b.AsMatrix())
}

// ReadFromStream reads X, Y, Z, W as little-endian float32.
func (v *Vector4d) ReadFromStream(r io.Reader) error {
	var m Matrix[Shape4x1]
	if err := m.ReadFromStream(r); err != nil {
		return err
	}
	*v = Vector4dFromMatrix(m)
	return nil
}
