package math3d

import "github.com/chewxy/math32"

// Viewport is a window rectangle in pixels with a bottom-left origin.
// Callers working in top-left screen space flip y themselves.
type Viewport struct {
	X, Y, Width, Height float32
}

// Project maps an object-space point to window coordinates through
// proj*model, following gluProject: x and y land in the viewport
// rectangle and z in [0, 1]. ok is false when the clip-space w is zero.
func Project(obj Vector3d, model, proj Matrix4, vp Viewport) (win Vector3d, ok bool) {
	v := V4FromV3(obj, 1)
	proj.Mul(model).TransformVector(&v)
	if v.W == 0 {
		return Vector3d{}, false
	}
	ndc := v.XYZ().Div(v.W)
	return Vector3d{
		X: vp.X + (1+ndc.X)*vp.Width/2,
		Y: vp.Y + (1+ndc.Y)*vp.Height/2,
		Z: (1 + ndc.Z) / 2,
	}, true
}

// UnProject reverses Project, following gluUnProject. ok is false when
// proj*model is singular or the resulting w is zero.
func UnProject(win Vector3d, model, proj Matrix4, vp Viewport) (obj Vector3d, ok bool) {
	inv, ok := proj.Mul(model).Inverse()
	if !ok {
		return Vector3d{}, false
	}
	v := Vector4d{
		X: 2*(win.X-vp.X)/vp.Width - 1,
		Y: 2*(win.Y-vp.Y)/vp.Height - 1,
		Z: 2*win.Z - 1,
		W: 1,
	}
	inv.TransformVector(&v)
	if v.W == 0 {
		return Vector3d{}, false
	}
	return v.XYZ().Div(v.W), true
}

// Frustum returns a perspective projection for the given clip planes,
// as glFrustum builds it.
func Frustum(left, right, bottom, top, near, far float32) Matrix4 {
	var m Matrix4
	m.Row(0).Put(2 * near / (right - left)).Put(0).Put((right + left) / (right - left)).Put(0)
	m.Row(1).Put(0).Put(2 * near / (top - bottom)).Put((top + bottom) / (top - bottom)).Put(0)
	m.Row(2).Put(0).Put(0).Put(-(far + near) / (far - near)).Put(-2 * far * near / (far - near))
	m.Row(3).Put(0).Put(0).Put(-1).Put(0)
	return m
}

// Perspective returns a symmetric perspective projection with vertical
// field of view fovy, as gluPerspective builds it.
func Perspective(fovy Angle, aspect, near, far float32) Matrix4 {
	f := 1 / math32.Tan(fovy.Radians()/2)
	var m Matrix4
	m.Row(0).Put(f / aspect).Put(0).Put(0).Put(0)
	m.Row(1).Put(0).Put(f).Put(0).Put(0)
	m.Row(2).Put(0).Put(0).Put((far + near) / (near - far)).Put(2 * far * near / (near - far))
	m.Row(3).Put(0).Put(0).Put(-1).Put(0)
	return m
}

// Ortho returns an orthographic projection, as glOrtho builds it.
func Ortho(left, right, bottom, top, near, far float32) Matrix4 {
	var m Matrix4
	m.Row(0).Put(2 / (right - left)).Put(0).Put(0).Put(-(right + left) / (right - left))
	m.Row(1).Put(0).Put(2 / (top - bottom)).Put(0).Put(-(top + bottom) / (top - bottom))
	m.Row(2).Put(0).Put(0).Put(-2 / (far - near)).Put(-(far + near) / (far - near))
	m.Row(3).Put(0).Put(0).Put(0).Put(1)
	return m
}

// LookAt returns a view matrix placing the eye at eye looking at center,
// as gluLookAt builds it.
func LookAt(eye, center, up Vector3d) Matrix4 {
	f := center.Sub(eye).Normalized()
	s := CrossProduct(f, up).Normalized()
	u := CrossProduct(s, f)

	var m Matrix4
	m.Row(0).Put(s.X).Put(s.Y).Put(s.Z).Put(-s.Dot(eye))
	m.Row(1).Put(u.X).Put(u.Y).Put(u.Z).Put(-u.Dot(eye))
	m.Row(2).Put(-f.X).Put(-f.Y).Put(-f.Z).Put(f.Dot(eye))
	m.Row(3).Put(0).Put(0).Put(0).Put(1)
	return m
}
