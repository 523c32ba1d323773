package math3d

import (
	"testing"
)

func benchTransform() Matrix4 {
	m := NewMatrix4()
	m.BuildFromEuler(Degrees(10), Degrees(20), Degrees(30), LegacyEulerOrder)
	m.SetPosition(V3(1, 2, 3))
	return m
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translation(V3(1, 2, 3))
	m2 := benchTransform()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4TransformVector(b *testing.B) {
	m := benchTransform()
	v := V4(1, 2, 3, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := v
		m.TransformVector(&w)
	}
}

func BenchmarkMat4Transform(b *testing.B) {
	m := benchTransform()
	v := V3(1, 2, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := v
		m.Transform(&w, true)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := benchTransform().Mul(Scaling(V3(2, 2, 2)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Inverse()
	}
}

func BenchmarkMat4InvertAffineOrthonormal(b *testing.B) {
	m := benchTransform()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := m
		w.InvertAffineOrthonormal()
	}
}

func BenchmarkEulerDecompose(b *testing.B) {
	m := benchTransform()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = m.Euler(EulerXYZ)
	}
}

func BenchmarkQuaternionTransform(b *testing.B) {
	q := QuaternionFromAxisAngle(V3(0, 0.6, 0.8), Degrees(40))
	v := V3(1, 2, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := v
		q.Transform(&w)
	}
}

func BenchmarkQuaternionSlerp(b *testing.B) {
	q1 := QuaternionXAxis(Degrees(10))
	q2 := QuaternionYAxis(Degrees(80))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = q1.Slerp(q2, 0.3)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.Normalized()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CrossProduct(v1, v2)
	}
}

func BenchmarkAABBTransform(b *testing.B) {
	m := benchTransform()
	box := NewAABB(V3(-1, -1, -1), V3(1, 1, 1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = box.Transformed(m)
	}
}

func BenchmarkProject(b *testing.B) {
	view := LookAt(V3(0, 2, 5), V3(0, 0, 0), V3(0, 1, 0))
	proj := Perspective(Degrees(60), 1.333, 0.1, 100.0)
	vp := Viewport{0, 0, 640, 480}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Project(V3(0.5, 0.5, 0), view, proj, vp)
	}
}
