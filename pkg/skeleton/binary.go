package skeleton

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/taigrr/gimbal/pkg/math3d"
)

// MaxBones bounds the bone count accepted by ReadBindPose.
const MaxBones = 1 << 16

// ErrTooManyBones is returned for a bind pose header above MaxBones.
var ErrTooManyBones = errors.New("skeleton: bone count too large")

// ReadBindPose decodes a bind pose stream: a little-endian uint32 bone
// count, then per bone an int32 parent index, three float32 for the
// position and four float32 for the rotation quaternion (x, y, z, w).
// Bones are named bone0, bone1, ...
func ReadBindPose(r io.Reader) (*Skeleton, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read bone count: %w", err)
	}
	if count > MaxBones {
		return nil, fmt.Errorf("%d bones: %w", count, ErrTooManyBones)
	}

	bones := make([]Bone, count)
	for i := range bones {
		var parent int32
		if err := binary.Read(r, binary.LittleEndian, &parent); err != nil {
			return nil, fmt.Errorf("bone %d parent: %w", i, unexpectedEOF(err))
		}
		var pos math3d.Vector3d
		if err := pos.ReadFromStream(r); err != nil {
			return nil, fmt.Errorf("bone %d position: %w", i, unexpectedEOF(err))
		}
		var rot math3d.Vector4d
		if err := rot.ReadFromStream(r); err != nil {
			return nil, fmt.Errorf("bone %d rotation: %w", i, unexpectedEOF(err))
		}
		bones[i] = Bone{
			Name:   fmt.Sprintf("bone%d", i),
			Parent: int(parent),
			Transform: Transform{
				Position: pos,
				Rotation: math3d.Quaternion{X: rot.X, Y: rot.Y, Z: rot.Z, W: rot.W}.Normalized(),
			},
		}
	}
	return New(bones)
}

// WriteBindPose encodes s in the format ReadBindPose reads. Names and
// InverseBind are not stored.
func WriteBindPose(w io.Writer, s *Skeleton) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Bones))); err != nil {
		return fmt.Errorf("write bone count: %w", err)
	}
	for i, b := range s.Bones {
		q := b.Rotation
		rec := struct {
			Parent int32
			Pos    [3]float32
			Rot    [4]float32
		}{
			Parent: int32(b.Parent),
			Pos:    [3]float32{b.Position.X, b.Position.Y, b.Position.Z},
			Rot:    [4]float32{q.X, q.Y, q.Z, q.W},
		}
		if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("write bone %d: %w", i, err)
		}
	}
	return nil
}

// A clean EOF inside a bone record still means the stream was cut short.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
