// Package models provides mesh loading and representation for gimbal.
package models

import (
	"image"

	"github.com/taigrr/gimbal/pkg/math3d"
	"github.com/taigrr/gimbal/pkg/skeleton"
)

// Mesh represents a triangle mesh with vertices, faces and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounds is recalculated on load and after Transform.
	Bounds math3d.AABB

	// Skeleton is set for skinned meshes; vertex Joints index its bones.
	Skeleton *skeleton.Skeleton
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vector3d
	Normal   math3d.Vector3d
	UV       math3d.Vector2d

	Joints  [4]int
	Weights [4]float32
}

// Face is a triangle with vertex indices and a material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the PBR subset read from glTF.
type Material struct {
	Name       string
	BaseColor  [4]float32 // RGBA in 0-1 range
	Metallic   float32
	Roughness  float32
	BaseMap    image.Image
	HasTexture bool
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds recomputes the bounding box from the vertex positions.
func (m *Mesh) CalculateBounds() {
	m.Bounds.Reset()
	for _, v := range m.Vertices {
		m.Bounds.Expand(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vector3d {
	return m.Bounds.Center()
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vector3d {
	return m.Bounds.Size()
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// Skinned reports whether the mesh carries a skeleton.
func (m *Mesh) Skinned() bool {
	return m.Skeleton != nil && m.Skeleton.Len() > 0
}

func (m *Mesh) faceNormal(f Face) math3d.Vector3d {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return math3d.CrossProduct(v1.Sub(v0), v2.Sub(v0))
}

// CalculateNormals assigns each face's normal to its three vertices.
// Shared vertices end up with the normal of the last face that uses them.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		normal := m.faceNormal(f).Normalized()
		for _, i := range f.V {
			m.Vertices[i].Normal = normal
		}
	}
}

// CalculateSmoothNormals averages area-weighted face normals per vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vector3d{}
	}
	for _, f := range m.Faces {
		normal := m.faceNormal(f)
		for _, i := range f.V {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Add(normal)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies mat to all positions and normals and refreshes Bounds.
// Normals use the rotation block only, so non-uniform scale skews them.
func (m *Mesh) Transform(mat math3d.Matrix4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		mat.Transform(&v.Position, true)
		mat.Transform(&v.Normal, false)
		v.Normal.Normalize()
	}
	m.CalculateBounds()
}

// Pose returns a copy of the mesh deformed by the skeleton in pose p.
// Meshes without a skeleton are cloned unchanged.
func (m *Mesh) Pose(p skeleton.Pose) (*Mesh, error) {
	out := m.Clone()
	if !m.Skinned() {
		return out, nil
	}
	skin, err := m.Skeleton.SkinMatrices(p)
	if err != nil {
		return nil, err
	}
	for i := range out.Vertices {
		v := &out.Vertices[i]
		v.Position = skeleton.SkinPoint(skin, v.Position, v.Joints, v.Weights)
		v.Normal = skeleton.SkinNormal(skin, v.Normal, v.Joints, v.Weights)
	}
	out.CalculateBounds()
	return out, nil
}

// Clone creates a deep copy of the mesh. The skeleton is shared.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		Bounds:    m.Bounds,
		Skeleton:  m.Skeleton,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetMaterial returns the material at index i, or nil if i is out of
// range (including -1).
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// Edges returns every distinct triangle edge once, lower index first, in
// order of first appearance.
func (m *Mesh) Edges() [][2]int {
	seen := make(map[[2]int]bool, len(m.Faces)*3/2)
	edges := make([][2]int, 0, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := range 3 {
			a, b := f.V[k], f.V[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := [2]int{a, b}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// faceKey creates a canonical key for a face by sorting vertex indices.
// Two faces with the same vertices (in any order) have the same key.
func faceKey(v0, v1, v2 int) [3]int {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return [3]int{v0, v1, v2}
}

// DeduplicateFaces keeps the first of any faces sharing the same three
// vertices, regardless of winding. Returns the number of faces removed.
func (m *Mesh) DeduplicateFaces() int {
	if len(m.Faces) == 0 {
		return 0
	}

	seen := make(map[[3]int]bool)
	kept := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		key := faceKey(f.V[0], f.V[1], f.V[2])
		if !seen[key] {
			seen[key] = true
			kept = append(kept, f)
		}
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveInternalFaces drops pairs of faces over the same vertices whose
// normals point in opposite directions. Such pairs appear where meshes
// were merged. Returns the number of faces removed.
func (m *Mesh) RemoveInternalFaces() int {
	if len(m.Faces) == 0 {
		return 0
	}

	type faceInfo struct {
		index  int
		normal math3d.Vector3d
	}
	groups := make(map[[3]int][]faceInfo)
	for i, f := range m.Faces {
		key := faceKey(f.V[0], f.V[1], f.V[2])
		groups[key] = append(groups[key], faceInfo{index: i, normal: m.faceNormal(f).Normalized()})
	}

	toRemove := make(map[int]bool)
	for _, faceList := range groups {
		if len(faceList) < 2 {
			continue
		}
		for i := range faceList {
			if toRemove[faceList[i].index] {
				continue
			}
			for j := i + 1; j < len(faceList); j++ {
				if toRemove[faceList[j].index] {
					continue
				}
				if faceList[i].normal.Dot(faceList[j].normal) < -0.99 {
					toRemove[faceList[i].index] = true
					toRemove[faceList[j].index] = true
					break
				}
			}
		}
	}
	if len(toRemove) == 0 {
		return 0
	}

	kept := make([]Face, 0, len(m.Faces)-len(toRemove))
	for i, f := range m.Faces {
		if !toRemove[i] {
			kept = append(kept, f)
		}
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// CleanMesh removes degenerate, internal and duplicate faces, in that
// order, then unreferenced vertices. Internal faces go before duplicates
// since deduplication would drop one face of each opposing pair.
// Returns the total number of faces removed.
func (m *Mesh) CleanMesh() int {
	removed := m.RemoveDegenerateFaces()
	removed += m.RemoveInternalFaces()
	removed += m.DeduplicateFaces()
	m.RemoveUnreferencedVertices()
	return removed
}

// RemoveDegenerateFaces removes faces with repeated indices or near-zero
// area. Returns the number of faces removed.
func (m *Mesh) RemoveDegenerateFaces() int {
	if len(m.Faces) == 0 {
		return 0
	}

	const minArea = 1e-10
	kept := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[0] == f.V[2] {
			continue
		}
		if m.faceNormal(f).Magnitude()*0.5 > minArea {
			kept = append(kept, f)
		}
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveUnreferencedVertices compacts the vertex array to the vertices
// used by faces and rewrites face indices to match.
func (m *Mesh) RemoveUnreferencedVertices() {
	if len(m.Faces) == 0 || len(m.Vertices) == 0 {
		return
	}

	referenced := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, i := range f.V {
			referenced[i] = true
		}
	}

	newIndex := make([]int, len(m.Vertices))
	newVertices := make([]MeshVertex, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if referenced[i] {
			newIndex[i] = len(newVertices)
			newVertices = append(newVertices, v)
		}
	}

	for i := range m.Faces {
		for k := range 3 {
			m.Faces[i].V[k] = newIndex[m.Faces[i].V[k]]
		}
	}
	m.Vertices = newVertices
}
