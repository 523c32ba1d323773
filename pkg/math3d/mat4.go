package math3d

// Matrix4 is a 4x4 affine or projective transform stored row-major.
//
// Layout for an affine transform:
//
//	| R00 R01 R02 Tx |
//	| R10 R11 R12 Ty |
//	| R20 R21 R22 Tz |
//	| 0   0   0   1  |
//
// Use NewMatrix4 for the identity; the zero value is the zero matrix.
type Matrix4 struct {
	Matrix[Shape4x4]
}

// NewMatrix4 returns the identity matrix.
func NewMatrix4() Matrix4 {
	return Matrix4{Identity[Shape4x4]()}
}

// Matrix4FromValues builds a matrix from 16 row-major values.
func Matrix4FromValues(values ...float32) Matrix4 {
	return Matrix4{NewMatrix[Shape4x4](values...)}
}

// Matrix4FromColumnMajor builds a matrix from a GL-style column-major array.
func Matrix4FromColumnMajor(v [16]float32) Matrix4 {
	var m Matrix4
	for r := range 4 {
		for c := range 4 {
			m.v[r*4+c] = v[c*4+r]
		}
	}
	return m
}

// ColumnMajor returns the elements in GL column-major order.
func (m Matrix4) ColumnMajor() [16]float32 {
	var out [16]float32
	for r := range 4 {
		for c := range 4 {
			out[c*4+r] = m.v[r*4+c]
		}
	}
	return out
}

// Translation returns a transform that moves points by v.
func Translation(v Vector3d) Matrix4 {
	m := NewMatrix4()
	m.SetPosition(v)
	return m
}

// Scaling returns a transform that scales each axis.
func Scaling(v Vector3d) Matrix4 {
	m := NewMatrix4()
	m.SetValue(0, 0, v.X)
	m.SetValue(1, 1, v.Y)
	m.SetValue(2, 2, v.Z)
	return m
}

// BuildAroundX sets the rotation block to a rotation about X.
func (m *Matrix4) BuildAroundX(a Angle) { buildAroundX(&m.Matrix, a) }

// BuildAroundY sets the rotation block to a rotation about Y.
func (m *Matrix4) BuildAroundY(a Angle) { buildAroundY(&m.Matrix, a) }

// BuildAroundZ sets the rotation block to a rotation about Z.
func (m *Matrix4) BuildAroundZ(a Angle) { buildAroundZ(&m.Matrix, a) }

// BuildFromEuler replaces m with the pure rotation
// R(first) * R(second) * R(third). Translation is reset.
func (m *Matrix4) BuildFromEuler(first, second, third Angle, order EulerOrder) {
	m.Matrix = eulerToRotation[Shape4x4](first, second, third, order)
}

// Euler decomposes the rotation block of m for order.
func (m Matrix4) Euler(order EulerOrder) (first, second, third Angle) {
	return eulerFromRotation(&m.Matrix, order)
}

// BuildFromTargetDir sets the rotation block as Matrix3.BuildFromTargetDir
// does, keeping the position.
func (m *Matrix4) BuildFromTargetDir(modelForward, targetDir, modelUp, worldUp Vector3d) {
	m.SetRotation(targetDirRotation(modelForward, targetDir, modelUp, worldUp))
}

// Position returns the translation column.
func (m Matrix4) Position() Vector3d {
	return Vector3d{m.v[3], m.v[7], m.v[11]}
}

// SetPosition replaces the translation column.
func (m *Matrix4) SetPosition(v Vector3d) {
	m.v[3], m.v[7], m.v[11] = v.X, v.Y, v.Z
}

// Rotation returns the upper-left 3x3 block.
func (m Matrix4) Rotation() Matrix3 {
	var r Matrix3
	for row := range 3 {
		for col := range 3 {
			r.v[row*3+col] = m.v[row*4+col]
		}
	}
	return r
}

// SetRotation replaces the upper-left 3x3 block.
func (m *Matrix4) SetRotation(r Matrix3) {
	for row := range 3 {
		for col := range 3 {
			m.v[row*4+col] = r.v[row*3+col]
		}
	}
}

// Translate moves the position by v expressed in the matrix's own rotated
// frame.
func (m *Matrix4) Translate(v Vector3d) {
	m.Transform(&v, false)
	m.SetPosition(m.Position().Add(v))
}

// Transform replaces v with m*(v, w), where w is 1 for points (trans) and
// 0 for directions. The resulting w is discarded; no perspective divide
// happens here.
func (m Matrix4) Transform(v *Vector3d, trans bool) {
	var w float32
	if trans {
		w = 1
	}
	out := Multiply[Shape4x1](m.Matrix, NewMatrix[Shape4x1](v.X, v.Y, v.Z, w))
	v.Set(out.v[0], out.v[1], out.v[2])
}

// TransformVector replaces v with m*v.
func (m Matrix4) TransformVector(v *Vector4d) {
	col := v.AsMatrix()
	TransformVector(m.Matrix, &col)
	*v = Vector4dFromMatrix(col)
}

// InverseTranslate subtracts the position from v.
func (m Matrix4) InverseTranslate(v *Vector3d) {
	*v = v.Sub(m.Position())
}

// InverseRotate applies the transpose of the rotation block to v, which
// undoes the rotation when the block is orthonormal.
func (m Matrix4) InverseRotate(v *Vector3d) {
	m.Rotation().Transposed().TransformVector(v)
}

// InvertAffineOrthonormal inverts a rotation+translation in place. The
// result is wrong if the rotation block carries scale or shear.
func (m *Matrix4) InvertAffineOrthonormal() {
	rotation := m.Rotation()
	rotation.Transpose()
	position := m.Position().Neg()
	rotation.TransformVector(&position)
	m.SetRotation(rotation)
	m.SetPosition(position)
}

// Transpose transposes m in place.
func (m *Matrix4) Transpose() {
	m.Matrix = Transpose[Shape4x4](m.Matrix)
}

// Transposed returns the transpose of m.
func (m Matrix4) Transposed() Matrix4 {
	m.Transpose()
	return m
}

// Mul returns m * o.
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	return Matrix4{Multiply[Shape4x4](m.Matrix, o.Matrix)}
}

// Determinant returns det(m).
func (m Matrix4) Determinant() float32 {
	a := &m.v
	return a[0]*(a[5]*(a[10]*a[15]-a[14]*a[11])-a[9]*(a[6]*a[15]-a[14]*a[7])+a[13]*(a[6]*a[11]-a[10]*a[7])) -
		a[4]*(a[1]*(a[10]*a[15]-a[14]*a[11])-a[9]*(a[2]*a[15]-a[14]*a[3])+a[13]*(a[2]*a[11]-a[10]*a[3])) +
		a[8]*(a[1]*(a[6]*a[15]-a[14]*a[7])-a[5]*(a[2]*a[15]-a[14]*a[3])+a[13]*(a[2]*a[7]-a[6]*a[3])) -
		a[12]*(a[1]*(a[6]*a[11]-a[10]*a[7])-a[5]*(a[2]*a[11]-a[10]*a[3])+a[9]*(a[2]*a[7]-a[6]*a[3]))
}

// Inverse returns the general inverse of m by cofactor expansion; ok is
// false when the determinant is zero.
func (m Matrix4) Inverse() (Matrix4, bool) {
	det := m.Determinant()
	if det == 0 {
		return Matrix4{}, false
	}
	a := &m.v
	d := 1 / det
	var inv Matrix4
	o := &inv.v

	o[0] = (a[5]*(a[10]*a[15]-a[14]*a[11]) - a[9]*(a[6]*a[15]-a[14]*a[7]) + a[13]*(a[6]*a[11]-a[10]*a[7])) * d
	o[1] = -(a[1]*(a[10]*a[15]-a[14]*a[11]) - a[9]*(a[2]*a[15]-a[14]*a[3]) + a[13]*(a[2]*a[11]-a[10]*a[3])) * d
	o[2] = (a[1]*(a[6]*a[15]-a[14]*a[7]) - a[5]*(a[2]*a[15]-a[14]*a[3]) + a[13]*(a[2]*a[7]-a[6]*a[3])) * d
	o[3] = -(a[1]*(a[6]*a[11]-a[10]*a[7]) - a[5]*(a[2]*a[11]-a[10]*a[3]) + a[9]*(a[2]*a[7]-a[6]*a[3])) * d

	o[4] = -(a[4]*(a[10]*a[15]-a[14]*a[11]) - a[8]*(a[6]*a[15]-a[14]*a[7]) + a[12]*(a[6]*a[11]-a[10]*a[7])) * d
	o[5] = (a[0]*(a[10]*a[15]-a[14]*a[11]) - a[8]*(a[2]*a[15]-a[14]*a[3]) + a[12]*(a[2]*a[11]-a[10]*a[3])) * d
	o[6] = -(a[0]*(a[6]*a[15]-a[14]*a[7]) - a[4]*(a[2]*a[15]-a[14]*a[3]) + a[12]*(a[2]*a[7]-a[6]*a[3])) * d
	o[7] = (a[0]*(a[6]*a[11]-a[10]*a[7]) - a[4]*(a[2]*a[11]-a[10]*a[3]) + a[8]*(a[2]*a[7]-a[6]*a[3])) * d

	o[8] = (a[4]*(a[9]*a[15]-a[13]*a[11]) - a[8]*(a[5]*a[15]-a[13]*a[7]) + a[12]*(a[5]*a[11]-a[9]*a[7])) * d
	o[9] = -(a[0]*(a[9]*a[15]-a[13]*a[11]) - a[8]*(a[1]*a[15]-a[13]*a[3]) + a[12]*(a[1]*a[11]-a[9]*a[3])) * d
	o[10] = (a[0]*(a[5]*a[15]-a[13]*a[7]) - a[4]*(a[1]*a[15]-a[13]*a[3]) + a[12]*(a[1]*a[7]-a[5]*a[3])) * d
	o[11] = -(a[0]*(a[5]*a[11]-a[9]*a[7]) - a[4]*(a[1]*a[11]-a[9]*a[3]) + a[8]*(a[1]*a[7]-a[5]*a[3])) * d

	o[12] = -(a[4]*(a[9]*a[14]-a[13]*a[10]) - a[8]*(a[5]*a[14]-a[13]*a[6]) + a[12]*(a[5]*a[10]-a[9]*a[6])) * d
	o[13] = (a[0]*(a[9]*a[14]-a[13]*a[10]) - a[8]*(a[1]*a[14]-a[13]*a[2]) + a[12]*(a[1]*a[10]-a[9]*a[2])) * d
	o[14] = -(a[0]*(a[5]*a[14]-a[13]*a[6]) - a[4]*(a[1]*a[14]-a[13]*a[2]) + a[12]*(a[1]*a[6]-a[5]*a[2])) * d
	o[15] = (a[0]*(a[5]*a[10]-a[9]*a[6]) - a[4]*(a[1]*a[10]-a[9]*a[2]) + a[8]*(a[1]*a[6]-a[5]*a[2])) * d

	return inv, true
}
