// Package skeleton evaluates bone hierarchies built on the math3d types:
// bind poses, animated poses, skinning matrices and skinned points.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/taigrr/gimbal/pkg/math3d"
)

// ErrBadParent is returned when a bone's parent index does not point to an
// earlier bone.
var ErrBadParent = errors.New("skeleton: parent must be -1 or an earlier bone")

// ErrPoseSize is returned when a pose does not carry one transform per bone.
var ErrPoseSize = errors.New("skeleton: pose size does not match bone count")

// Transform is a rigid local transform: rotate, then translate.
type Transform struct {
	Position math3d.Vector3d
	Rotation math3d.Quaternion
}

// IdentityTransform returns the transform that leaves points in place.
func IdentityTransform() Transform {
	return Transform{Rotation: math3d.IdentityQuaternion()}
}

// Matrix returns the transform as a Matrix4.
func (t Transform) Matrix() math3d.Matrix4 {
	m := t.Rotation.ToMatrix()
	m.SetPosition(t.Position)
	return m
}

// Interpolate blends position linearly and rotation along the shorter arc.
func (t Transform) Interpolate(to Transform, f float32) Transform {
	return Transform{
		Position: math3d.Interpolate(t.Position, to.Position, f),
		Rotation: t.Rotation.Slerp(to.Rotation, f).Normalized(),
	}
}

// Bone is one joint of the hierarchy. Parent is -1 for roots.
type Bone struct {
	Name   string
	Parent int
	Transform
}

// Pose holds one local transform per bone.
type Pose []Transform

// Skeleton is an ordered bone list where every parent precedes its
// children, so world matrices can be built in a single forward pass.
type Skeleton struct {
	Bones []Bone

	// InverseBind overrides the inverse bind matrices derived from the
	// bones, as glTF skins supply them. Ignored unless it has one entry per
	// bone.
	InverseBind []math3d.Matrix4
}

// New validates bones and returns a skeleton holding them.
func New(bones []Bone) (*Skeleton, error) {
	s := &Skeleton{Bones: bones}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the parent ordering.
func (s *Skeleton) Validate() error {
	for i, b := range s.Bones {
		if b.Parent < -1 || b.Parent >= i {
			return fmt.Errorf("bone %d (%s) has parent %d: %w", i, b.Name, b.Parent, ErrBadParent)
		}
	}
	return nil
}

// Len returns the bone count.
func (s *Skeleton) Len() int {
	return len(s.Bones)
}

// Find returns the index of the first bone named name.
func (s *Skeleton) Find(name string) (int, bool) {
	for i, b := range s.Bones {
		if b.Name == name {
			return i, true
		}
	}
	return -1, false
}

// BindPose returns the bones' own transforms as a pose.
func (s *Skeleton) BindPose() Pose {
	p := make(Pose, len(s.Bones))
	for i, b := range s.Bones {
		p[i] = b.Transform
	}
	return p
}

// WorldMatrices composes each bone's local transform with its parent's
// world matrix: world[i] = world[parent] * local[i].
func (s *Skeleton) WorldMatrices(p Pose) ([]math3d.Matrix4, error) {
	if len(p) != len(s.Bones) {
		return nil, fmt.Errorf("%d transforms for %d bones: %w", len(p), len(s.Bones), ErrPoseSize)
	}
	world := make([]math3d.Matrix4, len(s.Bones))
	for i, b := range s.Bones {
		local := p[i].Matrix()
		if b.Parent < 0 {
			world[i] = local
			continue
		}
		world[i] = world[b.Parent].Mul(local)
	}
	return world, nil
}

// WorldPositions returns the origin of every bone in world space.
func (s *Skeleton) WorldPositions(p Pose) ([]math3d.Vector3d, error) {
	world, err := s.WorldMatrices(p)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vector3d, len(world))
	for i, m := range world {
		out[i] = m.Position()
	}
	return out, nil
}

// InverseBindMatrices returns the matrices that take model space into each
// bone's bind space.
func (s *Skeleton) InverseBindMatrices() []math3d.Matrix4 {
	if len(s.InverseBind) == len(s.Bones) {
		return s.InverseBind
	}
	world, _ := s.WorldMatrices(s.BindPose())
	for i := range world {
		world[i].InvertAffineOrthonormal()
	}
	return world
}

// SkinMatrices returns world[i] * inverseBind[i] for pose p. In the bind
// pose every skin matrix is the identity.
func (s *Skeleton) SkinMatrices(p Pose) ([]math3d.Matrix4, error) {
	world, err := s.WorldMatrices(p)
	if err != nil {
		return nil, err
	}
	inv := s.InverseBindMatrices()
	for i := range world {
		world[i] = world[i].Mul(inv[i])
	}
	return world, nil
}

// Bounds returns the box around all bone origins in pose p.
func (s *Skeleton) Bounds(p Pose) (math3d.AABB, error) {
	var box math3d.AABB
	positions, err := s.WorldPositions(p)
	if err != nil {
		return box, err
	}
	for _, v := range positions {
		box.Expand(v)
	}
	return box, nil
}

// SkinPoint blends v through up to four skin matrices. Weights are
// normalized by their sum; a point with no weight is returned unchanged.
// Joint indices outside skin are skipped.
func SkinPoint(skin []math3d.Matrix4, v math3d.Vector3d, joints [4]int, weights [4]float32) math3d.Vector3d {
	var out math3d.Vector3d
	var total float32
	for k, j := range joints {
		w := weights[k]
		if w == 0 || j < 0 || j >= len(skin) {
			continue
		}
		p := v
		skin[j].Transform(&p, true)
		out = out.Add(p.Scale(w))
		total += w
	}
	if total == 0 {
		return v
	}
	return out.Div(total)
}

// SkinNormal is SkinPoint for directions; the result is normalized.
func SkinNormal(skin []math3d.Matrix4, n math3d.Vector3d, joints [4]int, weights [4]float32) math3d.Vector3d {
	var out math3d.Vector3d
	for k, j := range joints {
		w := weights[k]
		if w == 0 || j < 0 || j >= len(skin) {
			continue
		}
		d := n
		skin[j].Transform(&d, false)
		out = out.Add(d.Scale(w))
	}
	if out.IsZero() {
		return n
	}
	return out.Normalized()
}
