package skeleton

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

// ErrNoKeyframes is returned when an animation has nothing to sample.
var ErrNoKeyframes = errors.New("skeleton: animation has no keyframes")

// Keyframe is a full pose at a point in time (seconds).
type Keyframe struct {
	Time float32
	Pose Pose
}

// Animation is a keyframed pose track. Keyframes must be sorted by time and
// all carry the same number of transforms.
type Animation struct {
	Name      string
	Loop      bool
	Keyframes []Keyframe
}

// Duration returns the time of the last keyframe.
func (a *Animation) Duration() float32 {
	if len(a.Keyframes) == 0 {
		return 0
	}
	return a.Keyframes[len(a.Keyframes)-1].Time
}

// Validate checks ordering and that every pose fits s.
func (a *Animation) Validate(s *Skeleton) error {
	if len(a.Keyframes) == 0 {
		return ErrNoKeyframes
	}
	for i, k := range a.Keyframes {
		if len(k.Pose) != s.Len() {
			return fmt.Errorf("keyframe %d: %d transforms for %d bones: %w", i, len(k.Pose), s.Len(), ErrPoseSize)
		}
		if i > 0 && k.Time < a.Keyframes[i-1].Time {
			return fmt.Errorf("keyframe %d at %gs precedes keyframe %d at %gs", i, k.Time, i-1, a.Keyframes[i-1].Time)
		}
	}
	return nil
}

// Sample returns the pose at time t. Looping animations wrap t into
// [0, Duration); others clamp to the first and last keyframes. Between
// keyframes positions are interpolated linearly and rotations slerped.
func (a *Animation) Sample(t float32) (Pose, error) {
	n := len(a.Keyframes)
	if n == 0 {
		return nil, ErrNoKeyframes
	}
	if d := a.Duration(); a.Loop && d > 0 {
		t = math32.Mod(t, d)
		if t < 0 {
			t += d
		}
	}

	// Index of the first keyframe strictly after t.
	next := sort.Search(n, func(i int) bool { return a.Keyframes[i].Time > t })
	switch {
	case next == 0:
		return clonePose(a.Keyframes[0].Pose), nil
	case next == n:
		return clonePose(a.Keyframes[n-1].Pose), nil
	}

	k0, k1 := a.Keyframes[next-1], a.Keyframes[next]
	if len(k0.Pose) != len(k1.Pose) {
		return nil, fmt.Errorf("keyframes %d and %d: %w", next-1, next, ErrPoseSize)
	}
	f := (t - k0.Time) / (k1.Time - k0.Time)
	out := make(Pose, len(k0.Pose))
	for i := range out {
		out[i] = k0.Pose[i].Interpolate(k1.Pose[i], f)
	}
	return out, nil
}

func clonePose(p Pose) Pose {
	out := make(Pose, len(p))
	copy(out, p)
	return out
}
