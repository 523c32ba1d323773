package math3d

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box. The zero value is an empty
// (invalid) box that the first Expand turns into a point.
type AABB struct {
	min, max Vector3d
	valid    bool
}

// NewAABB returns a valid box. min <= max is not checked.
func NewAABB(min, max Vector3d) AABB {
	return AABB{min: min, max: max, valid: true}
}

// Min returns the minimum corner.
func (b AABB) Min() Vector3d { return b.min }

// Max returns the maximum corner.
func (b AABB) Max() Vector3d { return b.max }

// Valid reports whether the box holds at least one point.
func (b AABB) Valid() bool { return b.valid }

// Reset empties the box.
func (b *AABB) Reset() {
	*b = AABB{}
}

// Expand grows the box to include v.
func (b *AABB) Expand(v Vector3d) {
	if !b.valid {
		b.min, b.max, b.valid = v, v, true
		return
	}
	b.min = b.min.Min(v)
	b.max = b.max.Max(v)
}

// ExpandAABB grows the box to include o. Empty boxes contribute nothing.
func (b *AABB) ExpandAABB(o AABB) {
	if !o.valid {
		return
	}
	b.Expand(o.min)
	b.Expand(o.max)
}

// Corners returns the eight box corners; bit 0 of the index selects max.X,
// bit 1 max.Y and bit 2 max.Z.
func (b AABB) Corners() [8]Vector3d {
	var out [8]Vector3d
	for i := range out {
		c := b.min
		if i&1 != 0 {
			c.X = b.max.X
		}
		if i&2 != 0 {
			c.Y = b.max.Y
		}
		if i&4 != 0 {
			c.Z = b.max.Z
		}
		out[i] = c
	}
	return out
}

// Transform replaces the box with the axis-aligned bounds of its eight
// corners after m is applied as a point transform. Under rotation the
// result is looser than the original. An empty box stays empty.
func (b *AABB) Transform(m Matrix4) {
	if !b.valid {
		return
	}
	corners := b.Corners()
	b.Reset()
	for _, c := range corners {
		m.Transform(&c, true)
		b.Expand(c)
	}
}

// Transformed returns a copy of b after Transform.
func (b AABB) Transformed(m Matrix4) AABB {
	b.Transform(m)
	return b
}

// Collides reports whether the boxes overlap on all three axes. Boxes that
// only share a face do not collide.
func (b AABB) Collides(o AABB) bool {
	return b.min.X < o.max.X && b.max.X > o.min.X &&
		b.min.Y < o.max.Y && b.max.Y > o.min.Y &&
		b.min.Z < o.max.Z && b.max.Z > o.min.Z
}

// Distance returns the per-axis gap from p to the box; its magnitude is
// the distance to the nearest point on the box and it is zero inside.
func (b AABB) Distance(p Vector3d) Vector3d {
	gap := func(lo, v, hi float32) float32 {
		return math32.Max(math32.Max(lo-v, v-hi), 0)
	}
	return Vector3d{
		gap(b.min.X, p.X, b.max.X),
		gap(b.min.Y, p.Y, b.max.Y),
		gap(b.min.Z, p.Z, b.max.Z),
	}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p Vector3d) bool {
	return b.valid &&
		p.X >= b.min.X && p.X <= b.max.X &&
		p.Y >= b.min.Y && p.Y <= b.max.Y &&
		p.Z >= b.min.Z && p.Z <= b.max.Z
}

// Center returns the box midpoint.
func (b AABB) Center() Vector3d {
	return b.min.Add(b.max).Scale(0.5)
}

// Size returns the box extent along each axis.
func (b AABB) Size() Vector3d {
	return b.max.Sub(b.min)
}

func (b AABB) String() string {
	if !b.valid {
		return "AABB(empty)"
	}
	return "AABB(" + b.min.String() + " - " + b.max.String() + ")"
}
