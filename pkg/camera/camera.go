// Package camera places a viewer in a 3D room and maps between world space
// and top-left origin screen pixels.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/gimbal/pkg/math3d"
)

// Camera looks from Position toward Target. Screen coordinates have their
// origin at the top-left corner and grow right and down.
type Camera struct {
	Position math3d.Vector3d
	Target   math3d.Vector3d
	Up       math3d.Vector3d

	FOV       math3d.Angle // vertical field of view, perspective only
	Near, Far float32

	// Orthographic switches to a parallel projection showing OrthoHeight
	// world units from the bottom to the top of the screen.
	Orthographic bool
	OrthoHeight  float32

	Width, Height int
}

// Axes of an unrotated camera, as in OpenGL.
var (
	modelForward = math3d.V3(0, 0, -1)
	modelUp      = math3d.V3(0, 1, 0)
)

// New returns a perspective camera at (0, 0, 5) looking at the origin.
func New(width, height int) *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 5),
		Up:          math3d.V3(0, 1, 0),
		FOV:         math3d.Degrees(60),
		Near:        0.1,
		Far:         100,
		OrthoHeight: 10,
		Width:       width,
		Height:      height,
	}
}

// SetPosition moves the camera without changing its target.
func (c *Camera) SetPosition(p math3d.Vector3d) { c.Position = p }

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vector3d) { c.Target = target }

// SetFOV sets the vertical field of view.
func (c *Camera) SetFOV(fov math3d.Angle) { c.FOV = fov }

// SetClipPlanes sets the near and far plane distances.
func (c *Camera) SetClipPlanes(near, far float32) {
	c.Near, c.Far = near, far
}

// SetViewport sets the screen size in pixels.
func (c *Camera) SetViewport(width, height int) {
	c.Width, c.Height = width, height
}

// AspectRatio is width over height, or 1 for an empty viewport.
func (c *Camera) AspectRatio() float32 {
	if c.Width <= 0 || c.Height <= 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// Forward is the unit view direction.
func (c *Camera) Forward() math3d.Vector3d {
	return c.Target.Sub(c.Position).Normalized()
}

// WorldMatrix places the camera model in the world: its rotation turns
// -Z toward the target keeping +Y as close to Up as possible.
func (c *Camera) WorldMatrix() math3d.Matrix4 {
	m := math3d.NewMatrix4()
	m.BuildFromTargetDir(modelForward, c.Forward(), modelUp, c.Up)
	m.SetPosition(c.Position)
	return m
}

// ViewMatrix maps world space to camera space.
func (c *Camera) ViewMatrix() math3d.Matrix4 {
	m := c.WorldMatrix()
	m.InvertAffineOrthonormal()
	return m
}

// ProjectionMatrix maps camera space to clip space.
func (c *Camera) ProjectionMatrix() math3d.Matrix4 {
	aspect := c.AspectRatio()
	if c.Orthographic {
		h := c.OrthoHeight / 2
		return math3d.Ortho(-h*aspect, h*aspect, -h, h, c.Near, c.Far)
	}
	return math3d.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Viewport is the full screen in window (bottom-left origin) terms.
func (c *Camera) Viewport() math3d.Viewport {
	return math3d.Viewport{Width: float32(c.Width), Height: float32(c.Height)}
}

// WorldToScreen returns the pixel position of p and its depth in [0, 1].
// ok is false for points behind the camera or outside the clip planes.
func (c *Camera) WorldToScreen(p math3d.Vector3d) (screen math3d.Vector2d, depth float32, ok bool) {
	win, ok := math3d.Project(p, c.ViewMatrix(), c.ProjectionMatrix(), c.Viewport())
	if !ok || win.Z < 0 || win.Z > 1 {
		return math3d.Vector2d{}, 0, false
	}
	return math3d.V2(win.X, float32(c.Height)-win.Y), win.Z, true
}

// ScreenToWorld reverses WorldToScreen for a given depth.
func (c *Camera) ScreenToWorld(screen math3d.Vector2d, depth float32) (math3d.Vector3d, bool) {
	win := math3d.V3(screen.X, float32(c.Height)-screen.Y, depth)
	return math3d.UnProject(win, c.ViewMatrix(), c.ProjectionMatrix(), c.Viewport())
}

// ScreenToRay returns the ray through a pixel, starting on the near plane.
func (c *Camera) ScreenToRay(screen math3d.Vector2d) (origin, dir math3d.Vector3d, ok bool) {
	near, ok := c.ScreenToWorld(screen, 0)
	if !ok {
		return origin, dir, false
	}
	far, ok := c.ScreenToWorld(screen, 1)
	if !ok {
		return origin, dir, false
	}
	return near, far.Sub(near).Normalized(), true
}

// ScreenToFloor intersects the ray through a pixel with the horizontal
// plane y = floorY. ok is false when the ray runs parallel to the floor or
// hits it behind the near plane.
func (c *Camera) ScreenToFloor(screen math3d.Vector2d, floorY float32) (math3d.Vector3d, bool) {
	origin, dir, ok := c.ScreenToRay(screen)
	if !ok || math32.Abs(dir.Y) < 1e-5 {
		return math3d.Vector3d{}, false
	}
	t := (floorY - origin.Y) / dir.Y
	if t < 0 {
		return math3d.Vector3d{}, false
	}
	return origin.Add(dir.Scale(t)), true
}

// SpriteScale is the number of pixels one world unit covers vertically at
// p. Flat sprites drawn over the 3D room scale by it. Points behind the
// camera get 0.
func (c *Camera) SpriteScale(p math3d.Vector3d) float32 {
	if c.Orthographic {
		if c.OrthoHeight <= 0 {
			return 0
		}
		return float32(c.Height) / c.OrthoHeight
	}
	dist := p.Sub(c.Position).Dot(c.Forward())
	if dist <= 0 {
		return 0
	}
	return float32(c.Height) / (2 * dist * c.FOV.Div(2).Tan())
}
