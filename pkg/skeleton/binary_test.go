package skeleton

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/taigrr/gimbal/pkg/math3d"
)

func TestBindPoseRoundTrip(t *testing.T) {
	s := arm(t)
	var buf bytes.Buffer
	if err := WriteBindPose(&buf, s); err != nil {
		t.Fatalf("WriteBindPose() error = %v", err)
	}
	if want := 4 + 3*(4+12+16); buf.Len() != want {
		t.Errorf("encoded size = %d, want %d", buf.Len(), want)
	}

	got, err := ReadBindPose(&buf)
	if err != nil {
		t.Fatalf("ReadBindPose() error = %v", err)
	}
	if got.Len() != s.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), s.Len())
	}
	for i, b := range got.Bones {
		want := s.Bones[i]
		if b.Parent != want.Parent {
			t.Errorf("bone %d parent = %d, want %d", i, b.Parent, want.Parent)
		}
		assertV3(t, "position", b.Position, want.Position)
		if d := b.Rotation.AngleBetween(want.Rotation).Degrees(); d > 0.1 {
			t.Errorf("bone %d rotation off by %v°", i, d)
		}
	}
	if got.Bones[2].Name != "bone2" {
		t.Errorf("Name = %q, want bone2", got.Bones[2].Name)
	}

	positions, err := got.WorldPositions(got.BindPose())
	if err != nil {
		t.Fatal(err)
	}
	assertV3(t, "decoded wrist", positions[2], math3d.V3(0, 2, 0))
}

func TestReadBindPoseErrors(t *testing.T) {
	var full bytes.Buffer
	if err := WriteBindPose(&full, arm(t)); err != nil {
		t.Fatal(err)
	}

	huge := make([]byte, 4)
	binary.LittleEndian.PutUint32(huge, MaxBones+1)

	var badParent bytes.Buffer
	binary.Write(&badParent, binary.LittleEndian, uint32(1))
	binary.Write(&badParent, binary.LittleEndian, int32(3))
	binary.Write(&badParent, binary.LittleEndian, [7]float32{0, 0, 0, 0, 0, 0, 1})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.EOF},
		{"truncated header", []byte{1, 0}, io.ErrUnexpectedEOF},
		{"truncated bone", full.Bytes()[:full.Len()-3], io.ErrUnexpectedEOF},
		{"count only", full.Bytes()[:4], io.ErrUnexpectedEOF},
		{"too many bones", huge, ErrTooManyBones},
		{"bad parent", badParent.Bytes(), ErrBadParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBindPose(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadBindPose() error = %v, want %v", err, tt.want)
			}
		})
	}
}
