package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/gimbal/pkg/math3d"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal, three vertices, attribute count
)

// STLLoader loads STL (stereolithography) files in both ASCII and binary formats.
type STLLoader struct {
	SmoothNormals  bool    // Average normals per-vertex for smooth shading
	NoDedupe       bool    // Give every triangle its own vertices
	CleanMesh      bool    // Remove degenerate, duplicate and internal faces after loading
	MergeTolerance float32 // Grid size for vertex merging (0 = exact match)
}

// quantizedKey is a hashable position snapped to the merge grid.
type quantizedKey struct {
	x, y, z int64
}

func quantizePosition(pos math3d.Vector3d, tolerance float32) quantizedKey {
	if tolerance <= 0 {
		tolerance = 1e-12
	}
	scale := 1 / float64(tolerance)
	return quantizedKey{
		x: int64(math.Round(float64(pos.X) * scale)),
		y: int64(math.Round(float64(pos.Y) * scale)),
		z: int64(math.Round(float64(pos.Z) * scale)),
	}
}

// NewSTLLoader creates a new STL loader with default settings.
func NewSTLLoader() *STLLoader {
	return &STLLoader{}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}
	return l.LoadBytes(data, path)
}

// Load parses STL from a reader. The whole stream is read to detect the
// format.
func (l *STLLoader) Load(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Mesh, error) {
	b := newSTLBuilder(l, name)
	var err error
	if isBinarySTL(data) {
		err = b.readBinary(data)
	} else {
		err = b.readASCII(data)
	}
	if err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// isBinarySTL reports whether data is binary STL. ASCII files start with
// "solid", but so do some binary headers, so a "solid" file is still
// binary when its size matches the triangle count.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return true
	}
	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(triCount)*stlTriangleSize
}

// stlBuilder accumulates vertices for both STL encodings.
type stlBuilder struct {
	opts      *STLLoader
	mesh      *Mesh
	vertexMap map[quantizedKey]int
}

func newSTLBuilder(opts *STLLoader, name string) *stlBuilder {
	return &stlBuilder{
		opts:      opts,
		mesh:      NewMesh(name),
		vertexMap: make(map[quantizedKey]int),
	}
}

// vertex returns the index for pos, merging it with an existing vertex
// unless NoDedupe is set. Merged vertices accumulate facet normals.
func (b *stlBuilder) vertex(pos, normal math3d.Vector3d) int {
	if !b.opts.NoDedupe {
		key := quantizePosition(pos, b.opts.MergeTolerance)
		if idx, ok := b.vertexMap[key]; ok {
			b.mesh.Vertices[idx].Normal = b.mesh.Vertices[idx].Normal.Add(normal)
			return idx
		}
		b.vertexMap[key] = len(b.mesh.Vertices)
	}
	b.mesh.Vertices = append(b.mesh.Vertices, MeshVertex{Position: pos, Normal: normal})
	return len(b.mesh.Vertices) - 1
}

// face appends a triangle with winding reversed to match the glTF and OBJ
// loaders.
func (b *stlBuilder) face(v [3]int) {
	b.mesh.Faces = append(b.mesh.Faces, Face{
		V:        [3]int{v[0], v[2], v[1]},
		Material: -1,
	})
}

func (b *stlBuilder) finish() *Mesh {
	m := b.mesh
	if !b.opts.NoDedupe {
		for i := range m.Vertices {
			m.Vertices[i].Normal.Normalize()
		}
	}
	m.CalculateBounds()
	if b.opts.SmoothNormals {
		m.CalculateSmoothNormals()
	}
	if b.opts.CleanMesh {
		m.CleanMesh()
		m.CalculateBounds()
	}
	return m
}

func (b *stlBuilder) readBinary(data []byte) error {
	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	expected := stlHeaderSize + 4 + uint64(triCount)*stlTriangleSize
	if uint64(len(data)) < expected {
		return fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expected, len(data))
	}

	r := bytes.NewReader(data[stlHeaderSize+4:])
	for i := range triCount {
		var normal math3d.Vector3d
		if err := normal.ReadFromStream(r); err != nil {
			return fmt.Errorf("triangle %d normal: %w", i, err)
		}
		var tri [3]int
		for v := range tri {
			var pos math3d.Vector3d
			if err := pos.ReadFromStream(r); err != nil {
				return fmt.Errorf("triangle %d vertex %d: %w", i, v, err)
			}
			tri[v] = b.vertex(pos, normal)
		}
		if _, err := r.Seek(2, io.SeekCurrent); err != nil {
			return fmt.Errorf("triangle %d attribute: %w", i, err)
		}
		b.face(tri)
	}
	return nil
}

func (b *stlBuilder) readASCII(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	var normal math3d.Vector3d
	var tri []int
	inFacet, inLoop := false, false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = fields[1]
			}

		case "facet":
			if len(fields) >= 5 && strings.EqualFold(fields[1], "normal") {
				n, err := parseVector3(fields[2:5])
				if err != nil {
					return fmt.Errorf("line %d: invalid normal: %w", lineNum, err)
				}
				normal = n.Normalized()
			}
			inFacet = true
			tri = tri[:0]

		case "outer":
			if len(fields) >= 2 && strings.EqualFold(fields[1], "loop") {
				inLoop = true
			}

		case "vertex":
			if !inFacet || !inLoop {
				return fmt.Errorf("line %d: vertex outside facet/loop", lineNum)
			}
			if len(fields) < 4 {
				return fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			pos, err := parseVector3(fields[1:4])
			if err != nil {
				return fmt.Errorf("line %d: invalid vertex: %w", lineNum, err)
			}
			tri = append(tri, b.vertex(pos, normal))

		case "endloop":
			inLoop = false

		case "endfacet":
			if len(tri) >= 3 {
				b.face([3]int{tri[0], tri[1], tri[2]})
			}
			inFacet = false
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return nil
}

// parseVector3 parses three float fields.
func parseVector3(fields []string) (math3d.Vector3d, error) {
	var c [3]float32
	for i, f := range fields[:3] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math3d.Vector3d{}, err
		}
		c[i] = float32(v)
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

// LoadSTL loads an STL file with default settings.
func LoadSTL(path string) (*Mesh, error) {
	return NewSTLLoader().LoadFile(path)
}

// LoadSTLClean loads an STL file and cleans the mesh.
func LoadSTLClean(path string) (*Mesh, error) {
	loader := NewSTLLoader()
	loader.CleanMesh = true
	return loader.LoadFile(path)
}
