package math3d

import (
	"fmt"

	"github.com/chewxy/math32"
)

// quaternionEpsilon is the per-component tolerance used by Equal.
const quaternionEpsilon = 1e-5

// slerpThreshold is how close to coincident two rotations may get before
// Slerp falls back to linear interpolation.
const slerpThreshold = 1e-6

// Quaternion is a rotation X*i + Y*j + Z*k + W. Rotation methods assume
// unit length; use IdentityQuaternion for the no-op rotation.
type Quaternion struct {
	X, Y, Z, W float32
}

// IdentityQuaternion returns the quaternion that rotates nothing.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromAxisAngle returns the rotation of angle a about axis,
// which must be normalized.
func QuaternionFromAxisAngle(axis Vector3d, a Angle) Quaternion {
	half := a.Radians() / 2
	s := math32.Sin(half)
	return Quaternion{axis.X * s, axis.Y * s, axis.Z * s, math32.Cos(half)}
}

// QuaternionXAxis returns the rotation of a about X.
func QuaternionXAxis(a Angle) Quaternion { return QuaternionFromAxisAngle(Vector3d{1, 0, 0}, a) }

// QuaternionYAxis returns the rotation of a about Y.
func QuaternionYAxis(a Angle) Quaternion { return QuaternionFromAxisAngle(Vector3d{0, 1, 0}, a) }

// QuaternionZAxis returns the rotation of a about Z.
func QuaternionZAxis(a Angle) Quaternion { return QuaternionFromAxisAngle(Vector3d{0, 0, 1}, a) }

// QuaternionFromMatrix3 converts a rotation matrix.
func QuaternionFromMatrix3(m Matrix3) Quaternion {
	return quaternionFromRotation(&m.Matrix)
}

// QuaternionFromMatrix4 converts the rotation block of m.
func QuaternionFromMatrix4(m Matrix4) Quaternion {
	return quaternionFromRotation(&m.Matrix)
}

// QuaternionFromEuler builds R(first) * R(second) * R(third) for order.
func QuaternionFromEuler(first, second, third Angle, order EulerOrder) Quaternion {
	var m Matrix4
	m.BuildFromEuler(first, second, third, order)
	return QuaternionFromMatrix4(m)
}

// quaternionFromRotation uses the trace when it is positive and otherwise
// the largest diagonal element, so the square root never sees a value
// near zero. Ties keep the earlier axis.
func quaternionFromRotation[S Shape](m *Matrix[S]) Quaternion {
	at := func(r, c int) float32 { return m.Value(r, c) }
	trace := at(0, 0) + at(1, 1) + at(2, 2)
	if trace > 0 {
		s := 0.5 / math32.Sqrt(trace+1)
		q := Quaternion{
			X: (at(2, 1) - at(1, 2)) * s,
			Y: (at(0, 2) - at(2, 0)) * s,
			Z: (at(1, 0) - at(0, 1)) * s,
			W: 0.25 / s,
		}
		q.Normalize()
		return q
	}

	h := 0
	if at(1, 1) > at(0, 0) {
		h = 1
	}
	if at(2, 2) > at(h, h) {
		h = 2
	}
	i, j, k := h, (h+1)%3, (h+2)%3

	var im [3]float32
	s := math32.Sqrt(at(i, i) - at(j, j) - at(k, k) + 1)
	im[i] = 0.5 * s
	s = 0.5 / s
	im[j] = (at(j, i) + at(i, j)) * s
	im[k] = (at(k, i) + at(i, k)) * s
	q := Quaternion{X: im[0], Y: im[1], Z: im[2], W: (at(k, j) - at(j, k)) * s}
	q.Normalize()
	return q
}

// Imaginary returns the (X, Y, Z) part.
func (q Quaternion) Imaginary() Vector3d {
	return Vector3d{q.X, q.Y, q.Z}
}

// Vector4d returns the components as (X, Y, Z, W).
func (q Quaternion) Vector4d() Vector4d {
	return Vector4d{q.X, q.Y, q.Z, q.W}
}

// Dot returns the four-component dot product.
func (q Quaternion) Dot(o Quaternion) float32 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Magnitude returns the four-component length.
func (q Quaternion) Magnitude() float32 {
	return math32.Sqrt(q.Dot(q))
}

// Normalize scales q to unit length. Zero and already-unit quaternions are
// left untouched.
func (q *Quaternion) Normalize() {
	mag := q.Magnitude()
	if mag == 0 || mag == 1 {
		return
	}
	q.X /= mag
	q.Y /= mag
	q.Z /= mag
	q.W /= mag
}

// Normalized returns a unit-length copy of q.
func (q Quaternion) Normalized() Quaternion {
	q.Normalize()
	return q
}

// ToMatrix returns the rotation as a Matrix4 with no translation.
func (q Quaternion) ToMatrix() Matrix4 {
	m := NewMatrix4()
	q.SetMatrix(&m)
	return m
}

// ToMatrix3 returns the rotation as a Matrix3.
func (q Quaternion) ToMatrix3() Matrix3 {
	return q.ToMatrix().Rotation()
}

// SetMatrix overwrites m with the rotation, identity translation and an
// identity last row.
func (q Quaternion) SetMatrix(m *Matrix4) {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z

	m.Row(0).Put(1 - 2*(yy+zz)).Put(2 * (xy - wz)).Put(2 * (xz + wy)).Put(0)
	m.Row(1).Put(2 * (xy + wz)).Put(1 - 2*(xx+zz)).Put(2 * (yz - wx)).Put(0)
	m.Row(2).Put(2 * (xz - wy)).Put(2 * (yz + wx)).Put(1 - 2*(xx+yy)).Put(0)
	m.Row(3).Put(0).Put(0).Put(0).Put(1)
}

// Transform rotates v in place.
func (q Quaternion) Transform(v *Vector3d) {
	im := q.Imaginary()
	t := CrossProduct(im, *v).Add(v.Scale(q.W))
	*v = v.Add(CrossProduct(im, t).Scale(2))
}

// Rotated returns v rotated by q.
func (q Quaternion) Rotated(v Vector3d) Vector3d {
	q.Transform(&v)
	return v
}

// Conjugate negates the imaginary part.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

// Inverse returns the conjugate of the normalized quaternion.
func (q Quaternion) Inverse() Quaternion {
	return q.Normalized().Conjugate()
}

// Mul returns the Hamilton product q*o: the rotation o followed by q.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Scale multiplies all four components by f.
func (q Quaternion) Scale(f float32) Quaternion {
	return Quaternion{q.X * f, q.Y * f, q.Z * f, q.W * f}
}

// Add returns the component-wise sum.
func (q Quaternion) Add(o Quaternion) Quaternion {
	return Quaternion{q.X + o.X, q.Y + o.Y, q.Z + o.Z, q.W + o.W}
}

// Slerp interpolates from q to to along the shorter arc.
func (q Quaternion) Slerp(to Quaternion, t float32) Quaternion {
	cosom := q.Dot(to)
	if cosom < 0 {
		cosom = -cosom
		to = to.Scale(-1)
	}

	scale0, scale1 := 1-t, t
	if 1-cosom > slerpThreshold {
		omega := math32.Acos(min(cosom, 1))
		sinom := math32.Sin(omega)
		scale0 = math32.Sin((1-t)*omega) / sinom
		scale1 = math32.Sin(t*omega) / sinom
	}
	return q.Scale(scale0).Add(to.Scale(scale1))
}

// DirectionVector returns column col of the rotation matrix: 0 is the
// rotated X axis, 1 the rotated Y axis and 2 the rotated Z axis.
func (q Quaternion) DirectionVector(col int) Vector3d {
	m := q.ToMatrix()
	return Vector3d{m.Value(0, col), m.Value(1, col), m.Value(2, col)}
}

// AngleBetween returns the rotation angle that takes q to to.
func (q Quaternion) AngleBetween(to Quaternion) Angle {
	d := q.Inverse().Mul(to)
	w := max(-1, min(1, d.W))
	return Radians(2 * math32.Acos(w))
}

// Euler decomposes q into three angles for order.
func (q Quaternion) Euler(order EulerOrder) (first, second, third Angle) {
	return q.ToMatrix().Euler(order)
}

// Equal reports whether every component differs by less than 1e-5. q and
// -q describe the same rotation but are not Equal.
func (q Quaternion) Equal(o Quaternion) bool {
	return abs32(q.X-o.X) < quaternionEpsilon &&
		abs32(q.Y-o.Y) < quaternionEpsilon &&
		abs32(q.Z-o.Z) < quaternionEpsilon &&
		abs32(q.W-o.W) < quaternionEpsilon
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", q.X, q.Y, q.Z, q.W)
}
