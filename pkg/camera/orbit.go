package camera

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/gimbal/pkg/math3d"
)

// Pitch stays short of the poles so the view never lines up with Up.
const (
	MinPitch = -89
	MaxPitch = 89
)

// springAxis follows a goal value with a critically damped spring.
type springAxis struct {
	Value    float64
	Goal     float64
	velocity float64
	spring   harmonica.Spring
}

func newSpringAxis(fps int, v float64) springAxis {
	return springAxis{
		Value: v,
		Goal:  v,
		// Frequency 6 settles in about half a second without overshoot.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (a *springAxis) update() {
	a.Value, a.velocity = a.spring.Update(a.Value, a.velocity, a.Goal)
}

func (a *springAxis) snap() {
	a.Value, a.velocity = a.Goal, 0
}

func (a *springAxis) settled(eps float64) bool {
	d := a.Goal - a.Value
	return d < eps && d > -eps && a.velocity < eps && a.velocity > -eps
}

// Orbit swings a camera around a target. Rotate and Zoom move the goals;
// Update advances the springs by one frame.
type Orbit struct {
	Target math3d.Vector3d

	yaw, pitch, distance springAxis

	MinDistance, MaxDistance float32
}

// NewOrbit starts at yaw 0, pitch 0, looking down -Z at target from
// distance away. fps is the rate Update will be called at.
func NewOrbit(fps int, target math3d.Vector3d, distance float32) *Orbit {
	return &Orbit{
		Target:      target,
		yaw:         newSpringAxis(fps, 0),
		pitch:       newSpringAxis(fps, 0),
		distance:    newSpringAxis(fps, float64(distance)),
		MinDistance: 0.5,
		MaxDistance: 100,
	}
}

// Rotate moves the yaw and pitch goals. Pitch is clamped to
// [MinPitch, MaxPitch].
func (o *Orbit) Rotate(yaw, pitch math3d.Angle) {
	o.yaw.Goal += float64(yaw.Degrees())
	o.pitch.Goal = min(max(o.pitch.Goal+float64(pitch.Degrees()), MinPitch), MaxPitch)
}

// Zoom multiplies the distance goal, clamped to the distance limits.
func (o *Orbit) Zoom(factor float32) {
	d := float32(o.distance.Goal) * factor
	o.distance.Goal = float64(min(max(d, o.MinDistance), o.MaxDistance))
}

// Update advances every axis by one frame.
func (o *Orbit) Update() {
	o.yaw.update()
	o.pitch.update()
	o.distance.update()
}

// Snap jumps to the goals, dropping any motion.
func (o *Orbit) Snap() {
	o.yaw.snap()
	o.pitch.snap()
	o.distance.snap()
}

// Settled reports whether every axis has come to rest on its goal.
func (o *Orbit) Settled() bool {
	return o.yaw.settled(1e-3) && o.pitch.settled(1e-3) && o.distance.settled(1e-4)
}

func (o *Orbit) Yaw() math3d.Angle   { return math3d.Degrees(float32(o.yaw.Value)) }
func (o *Orbit) Pitch() math3d.Angle { return math3d.Degrees(float32(o.pitch.Value)) }
func (o *Orbit) Distance() float32   { return float32(o.distance.Value) }

// Eye is the current camera position. Yaw turns about +Y starting from
// +Z; positive pitch raises the eye.
func (o *Orbit) Eye() math3d.Vector3d {
	yaw, pitch := o.Yaw(), o.Pitch()
	d := o.Distance()
	offset := math3d.V3(
		pitch.Cos()*yaw.Sin(),
		pitch.Sin(),
		pitch.Cos()*yaw.Cos(),
	)
	return o.Target.Add(offset.Scale(d))
}

// Apply points c at the target from the current eye position.
func (o *Orbit) Apply(c *Camera) {
	c.Position = o.Eye()
	c.Target = o.Target
	c.Up = math3d.V3(0, 1, 0)
}
