package glconv

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f32"

	"github.com/taigrr/gimbal/pkg/math3d"
)

const tolerance = 1e-5

func sameValues(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleMatrix() math3d.Matrix4 {
	m := math3d.NewMatrix4()
	m.BuildFromEuler(math3d.Degrees(30), math3d.Degrees(-20), math3d.Degrees(75), math3d.EulerXYZ)
	m.SetPosition(math3d.V3(1, -2, 3))
	return m
}

func TestMat4MatchesMathGL(t *testing.T) {
	if got := Mat4ToMGL(math3d.Translation(math3d.V3(1, 2, 3))); got != mgl32.Translate3D(1, 2, 3) {
		t.Errorf("translation = %v, want %v", got, mgl32.Translate3D(1, 2, 3))
	}

	rz := math3d.NewMatrix4()
	rz.BuildAroundZ(math3d.Degrees(90))
	if got, want := Mat4ToMGL(rz), mgl32.HomogRotate3DZ(math32.Pi/2); !got.ApproxEqualThreshold(want, tolerance) {
		t.Errorf("rotation = %v, want %v", got, want)
	}

	m := sampleMatrix()
	p := math3d.V3(0.5, 4, -1)
	want := Mat4ToMGL(m).Mul4x1(Vec3ToMGL(p).Vec4(1)).Vec3()
	m.Transform(&p, true)
	if got := Vec3ToMGL(p); !got.ApproxEqualThreshold(want, tolerance) {
		t.Errorf("transformed point = %v, mathgl gives %v", got, want)
	}
}

func TestMat4RoundTrip(t *testing.T) {
	m := sampleMatrix()
	if got := Mat4FromMGL(Mat4ToMGL(m)); got != m {
		t.Errorf("mathgl round trip = %v, want %v", got, m)
	}
	if got := Mat4FromF32(Mat4ToF32(m)); got != m {
		t.Errorf("f32 round trip = %v, want %v", got, m)
	}
}

func TestMat3(t *testing.T) {
	m := sampleMatrix().Rotation()
	v := math3d.V3(1, 2, 3)
	want := Mat3ToMGL(m).Mul3x1(Vec3ToMGL(v))
	m.TransformVector(&v)
	if got := Vec3ToMGL(v); !got.ApproxEqualThreshold(want, tolerance) {
		t.Errorf("rotated = %v, mathgl gives %v", got, want)
	}

	if got := Mat3FromMGL(Mat3ToMGL(m)); !sameValues(got.Values(), m.Values()) {
		t.Errorf("mathgl round trip = %v, want %v", got, m)
	}
	if got := Mat3FromF32(Mat3ToF32(m)); !sameValues(got.Values(), m.Values()) {
		t.Errorf("f32 round trip = %v, want %v", got, m)
	}
}

func TestF32IsRowMajor(t *testing.T) {
	got := Mat4ToF32(math3d.Translation(math3d.V3(1, 2, 3)))
	if got[3] != 1 || got[7] != 2 || got[11] != 3 || got[15] != 1 {
		t.Errorf("translation column = %v %v %v %v", got[3], got[7], got[11], got[15])
	}

	m3 := Mat3FromF32(f32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if m3.Value(0, 2) != 3 || m3.Value(2, 0) != 7 {
		t.Errorf("Mat3FromF32 = %v", m3)
	}
}

func TestQuaternion(t *testing.T) {
	axis := math3d.V3(1, 2, -1).Normalized()
	q := math3d.QuaternionFromAxisAngle(axis, math3d.Degrees(50))
	mq := mgl32.QuatRotate(math3d.DegToRad(50), Vec3ToMGL(axis))

	if !QuatToMGL(q).ApproxEqualThreshold(mq, tolerance) {
		t.Errorf("QuatToMGL = %v, want %v", QuatToMGL(q), mq)
	}
	if got := QuatFromMGL(QuatToMGL(q)); got != q {
		t.Errorf("round trip = %v, want %v", got, q)
	}

	v := math3d.V3(3, -1, 2)
	want := mq.Rotate(Vec3ToMGL(v))
	if got := Vec3ToMGL(q.Rotated(v)); !got.ApproxEqualThreshold(want, tolerance) {
		t.Errorf("rotated = %v, mathgl gives %v", got, want)
	}
	if got, want := Mat4ToMGL(q.ToMatrix()), mq.Mat4(); !got.ApproxEqualThreshold(want, tolerance) {
		t.Errorf("ToMatrix = %v, mathgl gives %v", got, want)
	}
}

func TestVectors(t *testing.T) {
	v2 := math3d.V2(1, 2)
	v3 := math3d.V3(1, 2, 3)
	v4 := math3d.V4(1, 2, 3, 4)
	if Vec2FromMGL(Vec2ToMGL(v2)) != v2 {
		t.Error("Vec2 round trip")
	}
	if Vec3FromMGL(Vec3ToMGL(v3)) != v3 || Vec3FromF32(Vec3ToF32(v3)) != v3 {
		t.Error("Vec3 round trip")
	}
	if Vec4FromMGL(Vec4ToMGL(v4)) != v4 || Vec4FromF32(Vec4ToF32(v4)) != v4 {
		t.Error("Vec4 round trip")
	}
	if Vec3ToF32(v3) != (f32.Vec3{1, 2, 3}) {
		t.Errorf("Vec3ToF32 = %v", Vec3ToF32(v3))
	}
}
