// Package glconv converts math3d values to and from the types used by
// OpenGL-style renderers: go-gl/mathgl (column-major) and
// golang.org/x/image/math/f32 (row-major).
package glconv

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f32"

	"github.com/taigrr/gimbal/pkg/math3d"
)

// Mat4ToMGL returns m in mathgl's column-major layout.
func Mat4ToMGL(m math3d.Matrix4) mgl32.Mat4 {
	return mgl32.Mat4(m.ColumnMajor())
}

// Mat4FromMGL reverses Mat4ToMGL.
func Mat4FromMGL(m mgl32.Mat4) math3d.Matrix4 {
	return math3d.Matrix4FromColumnMajor([16]float32(m))
}

// Mat3ToMGL returns m in mathgl's column-major layout.
func Mat3ToMGL(m math3d.Matrix3) mgl32.Mat3 {
	var out mgl32.Mat3
	for r := range 3 {
		for c := range 3 {
			out[c*3+r] = m.Value(r, c)
		}
	}
	return out
}

// Mat3FromMGL reverses Mat3ToMGL.
func Mat3FromMGL(m mgl32.Mat3) math3d.Matrix3 {
	out := math3d.NewMatrix3()
	for r := range 3 {
		for c := range 3 {
			out.SetValue(r, c, m[c*3+r])
		}
	}
	return out
}

// QuatToMGL converts q. mgl32 keeps the scalar part in W and the vector
// part in V.
func QuatToMGL(q math3d.Quaternion) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

// QuatFromMGL is the inverse of QuatToMGL.
func QuatFromMGL(q mgl32.Quat) math3d.Quaternion {
	return math3d.Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// Vector conversions to and from mgl32. Components keep their order.

func Vec2ToMGL(v math3d.Vector2d) mgl32.Vec2   { return mgl32.Vec2{v.X, v.Y} }
func Vec2FromMGL(v mgl32.Vec2) math3d.Vector2d { return math3d.V2(v[0], v[1]) }
func Vec3ToMGL(v math3d.Vector3d) mgl32.Vec3   { return mgl32.Vec3{v.X, v.Y, v.Z} }
func Vec3FromMGL(v mgl32.Vec3) math3d.Vector3d { return math3d.V3(v[0], v[1], v[2]) }
func Vec4ToMGL(v math3d.Vector4d) mgl32.Vec4   { return mgl32.Vec4{v.X, v.Y, v.Z, v.W} }
func Vec4FromMGL(v mgl32.Vec4) math3d.Vector4d { return math3d.V4(v[0], v[1], v[2], v[3]) }

// Mat4ToF32 copies m into an f32.Mat4. Both are row-major.
func Mat4ToF32(m math3d.Matrix4) f32.Mat4 {
	var out f32.Mat4
	copy(out[:], m.Values())
	return out
}

// Mat4FromF32 copies a row-major f32.Mat4 into a Matrix4.
func Mat4FromF32(m f32.Mat4) math3d.Matrix4 {
	return math3d.Matrix4FromValues(m[:]...)
}

// Mat3ToF32 copies m into an f32.Mat3. Both are row-major.
func Mat3ToF32(m math3d.Matrix3) f32.Mat3 {
	var out f32.Mat3
	copy(out[:], m.Values())
	return out
}

// Mat3FromF32 copies a row-major f32.Mat3 into a Matrix3.
func Mat3FromF32(m f32.Mat3) math3d.Matrix3 {
	return math3d.Matrix3FromRows(
		math3d.V3(m[0], m[1], m[2]),
		math3d.V3(m[3], m[4], m[5]),
		math3d.V3(m[6], m[7], m[8]),
	)
}

// Vector conversions to and from x/image/math/f32.

func Vec3ToF32(v math3d.Vector3d) f32.Vec3   { return f32.Vec3{v.X, v.Y, v.Z} }
func Vec3FromF32(v f32.Vec3) math3d.Vector3d { return math3d.V3(v[0], v[1], v[2]) }
func Vec4ToF32(v math3d.Vector4d) f32.Vec4   { return f32.Vec4{v.X, v.Y, v.Z, v.W} }
func Vec4FromF32(v f32.Vec4) math3d.Vector4d { return math3d.V4(v[0], v[1], v[2], v[3]) }
