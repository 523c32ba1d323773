package math3d

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Angle stores a rotation in degrees. Radians are derived on demand.
//
// No canonical range is enforced; use Normalize or DegreesFrom to fold the
// value into [low, low+360).
type Angle struct {
	degrees float32
}

// Degrees creates an Angle from a value in degrees.
func Degrees(deg float32) Angle {
	return Angle{degrees: deg}
}

// Radians creates an Angle from a value in radians.
func Radians(rad float32) Angle {
	return Angle{degrees: RadToDeg(rad)}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}

// Degrees returns the raw, unfolded value in degrees.
func (a Angle) Degrees() float32 {
	return a.degrees
}

// Radians returns the raw, unfolded value in radians.
func (a Angle) Radians() float32 {
	return DegToRad(a.degrees)
}

// SetDegrees replaces the stored value.
func (a *Angle) SetDegrees(deg float32) {
	a.degrees = deg
}

// SetRadians replaces the stored value with one given in radians.
func (a *Angle) SetRadians(rad float32) {
	a.degrees = RadToDeg(rad)
}

// DegreesFrom returns the value folded into [low, low+360).
func (a Angle) DegreesFrom(low float32) float32 {
	return foldDegrees(a.degrees, low)
}

func foldDegrees(deg, low float32) float32 {
	high := low + 360
	if deg >= low && deg < high {
		return deg
	}
	deg -= math32.Floor((deg-low)/360) * 360
	// A tiny negative offset can round up to exactly high in float32.
	if deg >= high {
		deg -= 360
	}
	if deg < low {
		deg = low
	}
	return deg
}

// Normalize folds the angle in place into [low, low+360).
func (a *Angle) Normalize(low float32) {
	a.degrees = foldDegrees(a.degrees, low)
}

// Normalized returns a copy folded into [low, low+360).
func (a Angle) Normalized(low float32) Angle {
	return Angle{degrees: foldDegrees(a.degrees, low)}
}

// ClampDegrees folds the angle into [-180, 180) and clamps it to [-mag, mag].
func (a *Angle) ClampDegrees(mag float32) {
	a.ClampDegreesRange(-mag, mag)
}

// ClampDegreesRange folds the angle into [-180, 180) and clamps it to [lo, hi].
func (a *Angle) ClampDegreesRange(lo, hi float32) {
	d := foldDegrees(a.degrees, -180)
	if d < lo {
		d = lo
	}
	if d > hi {
		d = hi
	}
	a.degrees = d
}

// Cos returns the cosine of the raw value.
func (a Angle) Cos() float32 {
	return math32.Cos(a.Radians())
}

// Sin returns the sine of the raw value.
func (a Angle) Sin() float32 {
	return math32.Sin(a.Radians())
}

// Tan returns the tangent of the raw value.
func (a Angle) Tan() float32 {
	return math32.Tan(a.Radians())
}

// ArcCosine returns the angle whose cosine is x.
func ArcCosine(x float32) Angle {
	return Radians(math32.Acos(x))
}

// ArcSine returns the angle whose sine is x.
func ArcSine(x float32) Angle {
	return Radians(math32.Asin(x))
}

// ArcTangent returns the angle whose tangent is x.
func ArcTangent(x float32) Angle {
	return Radians(math32.Atan(x))
}

// ArcTangent2 returns the angle of the point (x, y), in the range [-180, 180].
func ArcTangent2(y, x float32) Angle {
	return Radians(math32.Atan2(y, x))
}

// Add returns a + b.
func (a Angle) Add(b Angle) Angle {
	return Angle{degrees: a.degrees + b.degrees}
}

// Sub returns a - b.
func (a Angle) Sub(b Angle) Angle {
	return Angle{degrees: a.degrees - b.degrees}
}

// AddDegrees returns a shifted by deg degrees.
func (a Angle) AddDegrees(deg float32) Angle {
	return Angle{degrees: a.degrees + deg}
}

// SubDegrees returns a shifted by -deg degrees.
func (a Angle) SubDegrees(deg float32) Angle {
	return Angle{degrees: a.degrees - deg}
}

// Mul scales the angle.
func (a Angle) Mul(f float32) Angle {
	return Angle{degrees: a.degrees * f}
}

// Div divides the angle.
func (a Angle) Div(f float32) Angle {
	return Angle{degrees: a.degrees / f}
}

// Neg returns -a.
func (a Angle) Neg() Angle {
	return Angle{degrees: -a.degrees}
}

// Equal compares the raw degree values exactly.
func (a Angle) Equal(b Angle) bool {
	return a.degrees == b.degrees
}

// Less reports whether a is smaller than b, comparing raw degrees.
func (a Angle) Less(b Angle) bool {
	return a.degrees < b.degrees
}

func (a Angle) String() string {
	return fmt.Sprintf("%g°", a.degrees)
}
