package math3d

// Matrix3 is a 3x3 rotation matrix. Use NewMatrix3 for the identity; the
// zero value is the zero matrix.
type Matrix3 struct {
	Matrix[Shape3x3]
}

// NewMatrix3 returns the identity matrix.
func NewMatrix3() Matrix3 {
	return Matrix3{Identity[Shape3x3]()}
}

// Matrix3FromRows builds a matrix from three rows.
func Matrix3FromRows(r0, r1, r2 Vector3d) Matrix3 {
	return Matrix3{NewMatrix[Shape3x3](
		r0.X, r0.Y, r0.Z,
		r1.X, r1.Y, r1.Z,
		r2.X, r2.Y, r2.Z,
	)}
}

// BuildAroundX sets m to a rotation about the X axis.
func (m *Matrix3) BuildAroundX(a Angle) { buildAroundX(&m.Matrix, a) }

// BuildAroundY sets m to a rotation about the Y axis.
func (m *Matrix3) BuildAroundY(a Angle) { buildAroundY(&m.Matrix, a) }

// BuildAroundZ sets m to a rotation about the Z axis.
func (m *Matrix3) BuildAroundZ(a Angle) { buildAroundZ(&m.Matrix, a) }

// BuildFromEuler sets m to R(first) * R(second) * R(third) for the axes
// named by order. An invalid order panics.
func (m *Matrix3) BuildFromEuler(first, second, third Angle, order EulerOrder) {
	m.Matrix = eulerToRotation[Shape3x3](first, second, third, order)
}

// Euler decomposes m into three angles for order. m must be a rotation.
func (m Matrix3) Euler(order EulerOrder) (first, second, third Angle) {
	return eulerFromRotation(&m.Matrix, order)
}

// BuildFromTargetDir sets m to the rotation that turns a model facing
// modelForward (with modelUp) toward targetDir, keeping worldUp as up.
// All inputs must be normalized and modelUp perpendicular to modelForward;
// otherwise the result is skewed.
func (m *Matrix3) BuildFromTargetDir(modelForward, targetDir, modelUp, worldUp Vector3d) {
	*m = targetDirRotation(modelForward, targetDir, modelUp, worldUp)
}

// Transpose transposes m in place.
func (m *Matrix3) Transpose() {
	m.Matrix = Transpose[Shape3x3](m.Matrix)
}

// Transposed returns the transpose of m.
func (m Matrix3) Transposed() Matrix3 {
	m.Transpose()
	return m
}

// Mul returns m * o.
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	return Matrix3{Multiply[Shape3x3](m.Matrix, o.Matrix)}
}

// TransformVector replaces v with m*v.
func (m Matrix3) TransformVector(v *Vector3d) {
	col := v.AsMatrix()
	TransformVector(m.Matrix, &col)
	*v = Vector3dFromMatrix(col)
}

// Determinant returns det(m).
func (m Matrix3) Determinant() float32 {
	a := &m.v
	return a[0]*(a[4]*a[8]-a[5]*a[7]) -
		a[1]*(a[3]*a[8]-a[5]*a[6]) +
		a[2]*(a[3]*a[7]-a[4]*a[6])
}

// Inverse returns the inverse of m; ok is false when m is singular.
func (m Matrix3) Inverse() (inv Matrix3, ok bool) {
	d := m.Determinant()
	if d == 0 {
		return Matrix3{}, false
	}
	a := &m.v
	invD := 1 / d
	return Matrix3{NewMatrix[Shape3x3](
		(a[4]*a[8]-a[5]*a[7])*invD,
		(a[2]*a[7]-a[1]*a[8])*invD,
		(a[1]*a[5]-a[2]*a[4])*invD,
		(a[5]*a[6]-a[3]*a[8])*invD,
		(a[0]*a[8]-a[2]*a[6])*invD,
		(a[2]*a[3]-a[0]*a[5])*invD,
		(a[3]*a[7]-a[4]*a[6])*invD,
		(a[1]*a[6]-a[0]*a[7])*invD,
		(a[0]*a[4]-a[1]*a[3])*invD,
	)}, true
}
