package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/gimbal/pkg/math3d"
)

func ptr[T any](v T) *T { return &v }

// docBuilder packs accessors into a single embedded buffer.
type docBuilder struct {
	doc *gltf.Document
	buf []byte
}

func newDocBuilder() *docBuilder {
	return &docBuilder{doc: &gltf.Document{Asset: gltf.Asset{Version: "2.0"}}}
}

func (b *docBuilder) accessor(typ gltf.AccessorType, ct gltf.ComponentType, count int, data any) int {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
	var w bytes.Buffer
	if err := binary.Write(&w, binary.LittleEndian, data); err != nil {
		panic(err)
	}
	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: len(b.buf),
		ByteLength: w.Len(),
	})
	b.buf = append(b.buf, w.Bytes()...)
	b.doc.Accessors = append(b.doc.Accessors, &gltf.Accessor{
		BufferView:    ptr(len(b.doc.BufferViews) - 1),
		ComponentType: ct,
		Count:         count,
		Type:          typ,
	})
	return len(b.doc.Accessors) - 1
}

func (b *docBuilder) positions(p ...[3]float32) int {
	return b.accessor(gltf.AccessorVec3, gltf.ComponentFloat, len(p), p)
}

func (b *docBuilder) triangleMesh(p [3][3]float32, indices []uint16) int {
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: b.positions(p[:]...)},
		Mode:       gltf.PrimitiveTriangles,
	}
	if indices != nil {
		prim.Indices = ptr(b.accessor(gltf.AccessorScalar, gltf.ComponentUshort, len(indices), indices))
	}
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Primitives: []*gltf.Primitive{prim}})
	return len(b.doc.Meshes) - 1
}

func (b *docBuilder) node(n *gltf.Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

func (b *docBuilder) build(roots ...int) *gltf.Document {
	b.doc.Buffers = []*gltf.Buffer{{ByteLength: len(b.buf), Data: b.buf}}
	if roots != nil {
		b.doc.Scenes = []*gltf.Scene{{Nodes: roots}}
		b.doc.Scene = ptr(0)
	}
	return b.doc
}

var unitTriangle = [3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

func TestGLTFStaticNodeTransform(t *testing.T) {
	b := newDocBuilder()
	mesh := b.triangleMesh(unitTriangle, []uint16{0, 1, 2})
	q := math3d.QuaternionZAxis(math3d.Degrees(90))
	root := b.node(&gltf.Node{
		Mesh:        ptr(mesh),
		Translation: [3]float64{0, 0, 5},
		Rotation:    [4]float64{float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)},
	})

	m, err := NewGLTFLoader().LoadDocument(b.build(root), "tri", "")
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Fatalf("counts = %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	assertV3(t, "vertex 1", m.Vertices[1].Position, math3d.V3(0, 1, 5))
	assertV3(t, "vertex 2", m.Vertices[2].Position, math3d.V3(-1, 0, 5))
	if m.Faces[0].V != [3]int{0, 2, 1} {
		t.Errorf("face = %v, want reversed winding [0 2 1]", m.Faces[0].V)
	}
	if m.Faces[0].Material != -1 {
		t.Errorf("Material = %d, want -1", m.Faces[0].Material)
	}
	if m.Skinned() {
		t.Error("static mesh reports a skeleton")
	}
	assertV3(t, "Min", m.Bounds.Min(), math3d.V3(-1, 0, 5))
	// Smooth normals come from the stored (reversed) winding.
	assertV3(t, "normal", m.Vertices[0].Normal, math3d.V3(0, 0, -1))
}

func TestGLTFHierarchyAndMatrix(t *testing.T) {
	b := newDocBuilder()
	mesh := b.triangleMesh(unitTriangle, nil)
	child := b.node(&gltf.Node{Mesh: ptr(mesh), Translation: [3]float64{1, 0, 0}})
	// Column-major uniform scale by 2 with a translation of (0, 0, 3).
	b.node(&gltf.Node{
		Children: []int{child},
		Matrix:   [16]float64{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 0, 0, 3, 1},
	})

	m, err := NewGLTFLoader().LoadDocument(b.build(), "tree", "")
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	assertV3(t, "vertex 0", m.Vertices[0].Position, math3d.V3(2, 0, 3))
	assertV3(t, "vertex 1", m.Vertices[1].Position, math3d.V3(4, 0, 3))
	assertV3(t, "vertex 2", m.Vertices[2].Position, math3d.V3(2, 2, 3))
}

func TestGLTFSkin(t *testing.T) {
	b := newDocBuilder()
	pos := b.positions([3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1})
	joints := b.accessor(gltf.AccessorVec4, gltf.ComponentUbyte, 3, [][4]uint8{{0}, {1}, {0, 1}})
	weights := b.accessor(gltf.AccessorVec4, gltf.ComponentFloat, 3, [][4]float32{{1}, {1}, {0.5, 0.5}})
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Primitives: []*gltf.Primitive{{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION:  pos,
			gltf.JOINTS_0:  joints,
			gltf.WEIGHTS_0: weights,
		},
		Mode: gltf.PrimitiveTriangles,
	}}})

	// Joints are listed child first; inverse binds follow that order.
	invBind := b.accessor(gltf.AccessorMat4, gltf.ComponentFloat, 2, [][16]float32{
		{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -1, 0, 1},
		{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	})
	tip := b.node(&gltf.Node{Name: "tip", Translation: [3]float64{0, 1, 0}})
	root := b.node(&gltf.Node{Name: "root", Children: []int{tip}})
	b.doc.Skins = []*gltf.Skin{{Joints: []int{tip, root}, InverseBindMatrices: ptr(invBind)}}
	body := b.node(&gltf.Node{Mesh: ptr(0), Skin: ptr(0), Translation: [3]float64{5, 0, 0}})

	m, err := NewGLTFLoader().LoadDocument(b.build(root, body), "rig", "")
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if !m.Skinned() {
		t.Fatal("mesh has no skeleton")
	}
	skel := m.Skeleton
	if skel.Len() != 2 || skel.Bones[0].Name != "root" || skel.Bones[1].Name != "tip" {
		t.Fatalf("bones = %+v, want root then tip", skel.Bones)
	}
	if skel.Bones[1].Parent != 0 {
		t.Errorf("tip parent = %d, want 0", skel.Bones[1].Parent)
	}
	assertV3(t, "tip bind position", skel.Bones[1].Position, math3d.V3(0, 1, 0))

	// The skinned node's own translation is ignored.
	assertV3(t, "bind vertex", m.Vertices[0].Position, math3d.V3(0, 1, 0))
	if m.Vertices[0].Joints[0] != 1 || m.Vertices[1].Joints[0] != 0 {
		t.Errorf("joints not remapped: %v, %v", m.Vertices[0].Joints, m.Vertices[1].Joints)
	}

	pose := skel.BindPose()
	pose[0].Rotation = math3d.QuaternionZAxis(math3d.Degrees(90))
	posed, err := m.Pose(pose)
	if err != nil {
		t.Fatalf("Pose() error = %v", err)
	}
	assertV3(t, "tip vertex", posed.Vertices[0].Position, math3d.V3(-1, 0, 0))
	assertV3(t, "root vertex", posed.Vertices[1].Position, math3d.V3(0, 1, 0))

	bind, err := m.Pose(skel.BindPose())
	if err != nil {
		t.Fatal(err)
	}
	for i := range m.Vertices {
		assertV3(t, "bind pose vertex", bind.Vertices[i].Position, m.Vertices[i].Position)
	}
}

func TestGLTFMaterials(t *testing.T) {
	b := newDocBuilder()
	mesh := b.triangleMesh(unitTriangle, nil)
	b.doc.Meshes[mesh].Primitives[0].Material = ptr(0)
	b.doc.Materials = []*gltf.Material{
		{
			Name: "brass",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{1, 0.5, 0.25, 1},
				MetallicFactor:  ptr(0.75),
			},
		},
		{Name: "plain"},
	}
	root := b.node(&gltf.Node{Mesh: ptr(mesh)})

	m, err := NewGLTFLoader().LoadDocument(b.build(root), "mat", "")
	if err != nil {
		t.Fatal(err)
	}
	if m.MaterialCount() != 2 {
		t.Fatalf("MaterialCount() = %d, want 2", m.MaterialCount())
	}
	brass := m.GetMaterial(m.Faces[0].Material)
	if brass == nil || brass.Name != "brass" {
		t.Fatalf("face material = %+v", brass)
	}
	if brass.BaseColor != [4]float32{1, 0.5, 0.25, 1} || brass.Metallic != 0.75 || brass.Roughness != 1 {
		t.Errorf("brass = %+v", brass)
	}
	if plain := m.GetMaterial(1); plain.BaseColor != [4]float32{1, 1, 1, 1} || plain.HasTexture {
		t.Errorf("plain = %+v", plain)
	}
}

func TestGLTFAccessorErrors(t *testing.T) {
	t.Run("overrun", func(t *testing.T) {
		b := newDocBuilder()
		mesh := b.triangleMesh(unitTriangle, nil)
		b.doc.Accessors[0].Count = 10
		root := b.node(&gltf.Node{Mesh: ptr(mesh)})
		if _, err := NewGLTFLoader().LoadDocument(b.build(root), "bad", ""); err == nil {
			t.Error("LoadDocument() accepted an accessor past its buffer view")
		}
	})
	t.Run("no buffer view", func(t *testing.T) {
		b := newDocBuilder()
		mesh := b.triangleMesh(unitTriangle, nil)
		b.doc.Accessors[0].BufferView = nil
		root := b.node(&gltf.Node{Mesh: ptr(mesh)})
		_, err := NewGLTFLoader().LoadDocument(b.build(root), "bad", "")
		if !errors.Is(err, errNoBufferView) {
			t.Errorf("LoadDocument() error = %v, want errNoBufferView", err)
		}
	})
	t.Run("index out of range", func(t *testing.T) {
		b := newDocBuilder()
		mesh := b.triangleMesh(unitTriangle, []uint16{0, 1, 7})
		root := b.node(&gltf.Node{Mesh: ptr(mesh)})
		if _, err := NewGLTFLoader().LoadDocument(b.build(root), "bad", ""); err == nil {
			t.Error("LoadDocument() accepted an index past the vertex count")
		}
	})
}

func TestGLTFNoScene(t *testing.T) {
	b := newDocBuilder()
	mesh := b.triangleMesh(unitTriangle, nil)
	child := b.node(&gltf.Node{Mesh: ptr(mesh), Translation: [3]float64{0, 0, 1}})
	b.node(&gltf.Node{Children: []int{child}, Translation: [3]float64{0, 0, 1}})

	m, err := NewGLTFLoader().LoadDocument(b.build(), "loose", "")
	if err != nil {
		t.Fatal(err)
	}
	// Only the parent is a root, so the mesh is visited once.
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", m.VertexCount())
	}
	assertV3(t, "vertex 0", m.Vertices[0].Position, math3d.V3(0, 0, 2))
}

func TestGLBFileRoundTrip(t *testing.T) {
	b := newDocBuilder()
	mesh := b.triangleMesh(unitTriangle, []uint16{0, 1, 2})
	root := b.node(&gltf.Node{Mesh: ptr(mesh), Translation: [3]float64{1, 2, 3}})
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(b.build(root), path); err != nil {
		t.Fatalf("SaveBinary() error = %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Name != "tri.glb" {
		t.Errorf("Name = %q, want tri.glb", m.Name)
	}
	assertV3(t, "vertex 2", m.Vertices[2].Position, math3d.V3(1, 3, 3))
}

func TestFormat(t *testing.T) {
	tests := map[string]string{
		"a.stl":      "stl",
		"b/C.OBJ":    "obj",
		"scene.gltf": "gltf",
		"x.glb":      "glb",
		"notes.txt":  "",
		"noext":      "",
	}
	for path, want := range tests {
		if got := Format(path); got != want {
			t.Errorf("Format(%q) = %q, want %q", path, got, want)
		}
	}

	if _, err := Load("model.fbx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(model.fbx) error = %v, want ErrUnsupportedFormat", err)
	}
}
