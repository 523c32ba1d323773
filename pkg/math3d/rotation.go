package math3d

// The helpers below operate on the upper-left 3x3 block of a square
// matrix, so Matrix3 and Matrix4 share one implementation. Elements
// outside the block are left untouched.

func buildAroundX[S Shape](m *Matrix[S], a Angle) {
	c, s := a.Cos(), a.Sin()
	m.Row(0).Put(1).Put(0).Put(0)
	m.Row(1).Put(0).Put(c).Put(-s)
	m.Row(2).Put(0).Put(s).Put(c)
}

func buildAroundY[S Shape](m *Matrix[S], a Angle) {
	c, s := a.Cos(), a.Sin()
	m.Row(0).Put(c).Put(0).Put(s)
	m.Row(1).Put(0).Put(1).Put(0)
	m.Row(2).Put(-s).Put(0).Put(c)
}

func buildAroundZ[S Shape](m *Matrix[S], a Angle) {
	c, s := a.Cos(), a.Sin()
	m.Row(0).Put(c).Put(-s).Put(0)
	m.Row(1).Put(s).Put(c).Put(0)
	m.Row(2).Put(0).Put(0).Put(1)
}

func buildAroundAxis[S Shape](m *Matrix[S], axis int, a Angle) {
	switch axis {
	case 0:
		buildAroundX(m, a)
	case 1:
		buildAroundY(m, a)
	default:
		buildAroundZ(m, a)
	}
}

// eulerToRotation returns R(first) * R(second) * R(third) as a fresh
// identity-based matrix of shape S.
func eulerToRotation[S Shape](first, second, third Angle, order EulerOrder) Matrix[S] {
	axes := order.axes()
	m1, m2, m3 := Identity[S](), Identity[S](), Identity[S]()
	buildAroundAxis(&m1, axes.first, first)
	buildAroundAxis(&m2, axes.second, second)
	buildAroundAxis(&m3, axes.third, third)
	return Multiply[S](Multiply[S](m1, m2), m3)
}

// targetDirRotation builds the 3x3 look-at block described on
// Matrix3.BuildFromTargetDir.
func targetDirRotation(modelForward, targetDir, modelUp, worldUp Vector3d) Matrix3 {
	modelRight := CrossProduct(modelUp, modelForward).Normalized()
	worldRight := CrossProduct(worldUp, targetDir).Normalized()
	perpWorldUp := CrossProduct(targetDir, worldRight).Normalized()

	worldBasis := NewMatrix3()
	worldBasis.SetRow(0, worldRight.X, worldRight.Y, worldRight.Z)
	worldBasis.SetRow(1, perpWorldUp.X, perpWorldUp.Y, perpWorldUp.Z)
	worldBasis.SetRow(2, targetDir.X, targetDir.Y, targetDir.Z)
	worldBasis.Transpose()

	modelBasis := NewMatrix3()
	modelBasis.SetRow(0, modelRight.X, modelRight.Y, modelRight.Z)
	modelBasis.SetRow(1, modelUp.X, modelUp.Y, modelUp.Z)
	modelBasis.SetRow(2, modelForward.X, modelForward.Y, modelForward.Z)

	return worldBasis.Mul(modelBasis)
}
