package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/taigrr/gimbal/pkg/math3d"
)

const asciiSquare = `solid square
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid square`

// binarySTL encodes triangles as binary STL: each entry is a normal
// followed by three vertices.
func binarySTL(header string, tris ...[4]math3d.Vector3d) []byte {
	var buf bytes.Buffer
	h := make([]byte, 80)
	copy(h, header)
	buf.Write(h)
	binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		for _, v := range tri {
			binary.Write(&buf, binary.LittleEndian, [3]float32{v.X, v.Y, v.Z})
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestSTLLoaderASCII(t *testing.T) {
	mesh, err := NewSTLLoader().Load(strings.NewReader(asciiSquare), "test.stl")
	if err != nil {
		t.Fatalf("Failed to load ASCII STL: %v", err)
	}
	if mesh.Name != "square" {
		t.Errorf("Name = %q, want %q", mesh.Name, "square")
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
	// Two of the six corners are shared.
	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4 (deduplicated)", mesh.VertexCount())
	}
	for i, v := range mesh.Vertices {
		if v.Normal != math3d.V3(0, 0, 1) {
			t.Errorf("vertex %d normal = %v, want (0, 0, 1)", i, v.Normal)
		}
	}
}

func TestSTLLoaderBinary(t *testing.T) {
	data := binarySTL("Binary STL test", [4]math3d.Vector3d{
		math3d.V3(0, 0, 1),
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0),
	})
	mesh, err := NewSTLLoader().LoadBytes(data, "test.stl")
	if err != nil {
		t.Fatalf("Failed to load binary STL: %v", err)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}
	if mesh.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", mesh.VertexCount())
	}
	if v := mesh.Vertices[0]; v.Normal.Z != 1 {
		t.Errorf("Normal.Z = %f, want 1.0", v.Normal.Z)
	}
	assertV3(t, "Max", mesh.Bounds.Max(), math3d.V3(1, 1, 0))
}

func TestSTLDetection(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"ascii", []byte(asciiSquare), false},
		{"short", []byte("solid x\n"), false},
		{"binary empty", binarySTL("", nil...), true},
		{"binary with solid header", binarySTL("solid lies", [4]math3d.Vector3d{}), true},
		{"solid header with wrong size", append(binarySTL("solid lies", [4]math3d.Vector3d{}), 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBinarySTL(tt.data); got != tt.want {
				t.Errorf("isBinarySTL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSTLWindingOrder(t *testing.T) {
	mesh, err := NewSTLLoader().Load(strings.NewReader(asciiSquare), "test.stl")
	if err != nil {
		t.Fatal(err)
	}
	// The first facet is counter-clockwise seen from +Z; faces are stored
	// reversed, so the winding normal points to -Z while the stored vertex
	// normal keeps the file's +Z.
	face := mesh.Faces[0]
	if face.V != [3]int{0, 2, 1} {
		t.Errorf("face 0 = %v, want [0 2 1]", face.V)
	}
	assertV3(t, "winding normal", mesh.faceNormal(face).Normalized(), math3d.V3(0, 0, -1))
}

func TestSTLNoDedupe(t *testing.T) {
	loader := NewSTLLoader()
	loader.NoDedupe = true
	mesh, err := loader.Load(strings.NewReader(asciiSquare), "test.stl")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6 (no deduplication)", mesh.VertexCount())
	}
	for i, f := range mesh.Faces {
		b := i * 3
		if want := [3]int{b, b + 2, b + 1}; f.V != want {
			t.Errorf("Face %d: V = %v, want %v", i, f.V, want)
		}
	}
}

func TestSTLMergeTolerance(t *testing.T) {
	data := binarySTL("", [4]math3d.Vector3d{
		math3d.V3(0, 0, 1),
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0),
	}, [4]math3d.Vector3d{
		math3d.V3(0, 0, 1),
		math3d.V3(1.00001, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0),
	})

	exact, err := NewSTLLoader().LoadBytes(data, "exact")
	if err != nil {
		t.Fatal(err)
	}
	if exact.VertexCount() != 5 {
		t.Errorf("exact VertexCount = %d, want 5", exact.VertexCount())
	}

	loader := NewSTLLoader()
	loader.MergeTolerance = 1e-3
	merged, err := loader.LoadBytes(data, "merged")
	if err != nil {
		t.Fatal(err)
	}
	if merged.VertexCount() != 4 {
		t.Errorf("merged VertexCount = %d, want 4", merged.VertexCount())
	}
}

func TestSTLSharedVertexNormals(t *testing.T) {
	const fold = `solid fold
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 0 0 1
      vertex 1 0 0
    endloop
  endfacet
endsolid fold`

	mesh, err := NewSTLLoader().Load(strings.NewReader(fold), "fold.stl")
	if err != nil {
		t.Fatal(err)
	}
	// The origin is shared by both facets and averages their normals.
	n := mesh.Vertices[0].Normal
	assertV3(t, "shared normal", n, math3d.V3(0, -1, 1).Normalized())
	assertV3(t, "unshared normal", mesh.Vertices[2].Normal, math3d.V3(0, 0, 1))
}

func TestSTLClean(t *testing.T) {
	const dup = `solid dup
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 0 1 0
      vertex 0 0 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 5 5 5
      vertex 5 5 5
      vertex 6 6 6
    endloop
  endfacet
endsolid dup`

	loader := NewSTLLoader()
	loader.CleanMesh = true
	mesh, err := loader.Load(strings.NewReader(dup), "dup.stl")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}
	if mesh.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", mesh.VertexCount())
	}
	assertV3(t, "Max", mesh.Bounds.Max(), math3d.V3(1, 1, 0))
}

func TestSTLErrors(t *testing.T) {
	truncated := binarySTL("", [4]math3d.Vector3d{}, [4]math3d.Vector3d{})
	truncated = truncated[:len(truncated)-10]

	tests := []struct {
		name string
		data string
		want string
	}{
		{"truncated binary", string(truncated), "truncated"},
		{"vertex outside loop", "solid x\nvertex 0 0 0\nendsolid x\n", "line 2"},
		{"bad coordinate", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 zero 0\n", "line 4"},
		{"short vertex", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0\n", "line 4"},
		{"bad normal", "solid x\nfacet normal 0 0 up\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSTLLoader().LoadBytes([]byte(tt.data), "bad.stl")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadBytes() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestSTLLoadReaderError(t *testing.T) {
	_, err := NewSTLLoader().Load(failingReader{}, "broken")
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Load() error = %v, want ErrClosedPipe", err)
	}
}
