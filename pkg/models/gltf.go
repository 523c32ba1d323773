package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	_ "golang.org/x/image/webp"

	"github.com/taigrr/gimbal/pkg/math3d"
	"github.com/taigrr/gimbal/pkg/skeleton"
)

// GLTFLoader loads glTF/GLB files into Mesh format. All mesh nodes of the
// default scene are merged into one Mesh. The first skin found becomes the
// mesh skeleton; its vertices stay in bind space.
type GLTFLoader struct {
	CalculateNormals bool
	SmoothNormals    bool
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.LoadDocument(doc, filepath.Base(path), filepath.Dir(path))
}

// LoadDocument converts an already decoded document. dir resolves external
// image URIs.
func (l *GLTFLoader) LoadDocument(doc *gltf.Document, name, dir string) (*Mesh, error) {
	g := &gltfBuilder{
		doc:     doc,
		mesh:    NewMesh(name),
		skinIdx: -1,
	}
	g.mesh.Materials = extractMaterials(doc, dir)

	for _, nodeIdx := range rootNodes(doc) {
		if err := g.processNode(nodeIdx, math3d.NewMatrix4()); err != nil {
			return nil, err
		}
	}

	if g.skinIdx >= 0 {
		if err := g.buildSkeleton(); err != nil {
			return nil, err
		}
	}

	hasNormals := false
	for _, v := range g.mesh.Vertices {
		if v.Normal.Magnitude() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			g.mesh.CalculateSmoothNormals()
		} else {
			g.mesh.CalculateNormals()
		}
	}

	g.mesh.CalculateBounds()
	return g.mesh, nil
}

// rootNodes returns the nodes of the default scene, or every node that is
// nobody's child when the document has no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			sceneIdx = int(*doc.Scene)
		}
		roots := make([]int, len(doc.Scenes[sceneIdx].Nodes))
		for i, n := range doc.Scenes[sceneIdx].Nodes {
			roots[i] = int(n)
		}
		return roots
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

var gltfIdentity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeTRS returns the node's translation, rotation and scale with glTF
// defaults filled in for zero values.
func nodeTRS(node *gltf.Node) (t math3d.Vector3d, r math3d.Quaternion, s math3d.Vector3d) {
	t = math3d.V3(float32(node.Translation[0]), float32(node.Translation[1]), float32(node.Translation[2]))
	r = math3d.Quaternion{
		X: float32(node.Rotation[0]),
		Y: float32(node.Rotation[1]),
		Z: float32(node.Rotation[2]),
		W: float32(node.Rotation[3]),
	}
	if r == (math3d.Quaternion{}) {
		r = math3d.IdentityQuaternion()
	}
	s = math3d.V3(float32(node.Scale[0]), float32(node.Scale[1]), float32(node.Scale[2]))
	if s.IsZero() {
		s = math3d.V3(1, 1, 1)
	}
	return t, r.Normalized(), s
}

// nodeMatrix returns the node's local transform. An explicit matrix wins
// over TRS.
func nodeMatrix(node *gltf.Node) math3d.Matrix4 {
	if node.Matrix != gltfIdentity && node.Matrix != [16]float64{} {
		var cm [16]float32
		for i, v := range node.Matrix {
			cm[i] = float32(v)
		}
		return math3d.Matrix4FromColumnMajor(cm)
	}
	t, r, s := nodeTRS(node)
	return math3d.Translation(t).Mul(r.ToMatrix()).Mul(math3d.Scaling(s))
}

type gltfBuilder struct {
	doc  *gltf.Document
	mesh *Mesh

	// skinIdx is the document skin backing mesh.Skeleton, or -1.
	skinIdx int
	// world holds the world matrix of every node visited.
	world map[int]math3d.Matrix4
}

func (g *gltfBuilder) processNode(nodeIdx int, parent math3d.Matrix4) error {
	if nodeIdx < 0 || nodeIdx >= len(g.doc.Nodes) {
		return fmt.Errorf("node %d out of range", nodeIdx)
	}
	node := g.doc.Nodes[nodeIdx]
	world := parent.Mul(nodeMatrix(node))
	if g.world == nil {
		g.world = make(map[int]math3d.Matrix4)
	}
	g.world[nodeIdx] = world

	if node.Mesh != nil {
		skinned := false
		if node.Skin != nil {
			skin := int(*node.Skin)
			if g.skinIdx < 0 {
				g.skinIdx = skin
			}
			skinned = skin == g.skinIdx
		}
		if err := g.processMesh(int(*node.Mesh), world, skinned); err != nil {
			return fmt.Errorf("node %d mesh: %w", nodeIdx, err)
		}
	}

	for _, child := range node.Children {
		if err := g.processNode(int(child), world); err != nil {
			return err
		}
	}
	return nil
}

// processMesh appends the triangle primitives of a glTF mesh. Static
// geometry is baked into world space; skinned geometry keeps its bind
// space positions, as skinning ignores the node transform.
func (g *gltfBuilder) processMesh(meshIdx int, transform math3d.Matrix4, skinned bool) error {
	if meshIdx < 0 || meshIdx >= len(g.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	if skinned {
		transform = math3d.NewMatrix4()
	}

	for _, prim := range g.doc.Meshes[meshIdx].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(g.doc, int(posIdx))
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vector3d
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(g.doc, int(idx)); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vector2d
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(g.doc, int(idx)); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		var joints []int
		var weights []float32
		if skinned {
			if idx, ok := prim.Attributes[gltf.JOINTS_0]; ok {
				if joints, err = readIntAccessor(g.doc, int(idx)); err != nil {
					return fmt.Errorf("read joints: %w", err)
				}
			}
			if idx, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
				if weights, _, err = readFloatAccessor(g.doc, int(idx)); err != nil {
					return fmt.Errorf("read weights: %w", err)
				}
			}
		}

		materialIdx := -1
		if prim.Material != nil {
			materialIdx = int(*prim.Material)
		}

		baseVertex := len(g.mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			transform.Transform(&v.Position, true)
			if i < len(normals) {
				v.Normal = normals[i]
				transform.Transform(&v.Normal, false)
				v.Normal.Normalize()
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image.
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			if 4*i+3 < len(joints) && 4*i+3 < len(weights) {
				copy(v.Joints[:], joints[4*i:4*i+4])
				copy(v.Weights[:], weights[4*i:4*i+4])
			}
			g.mesh.Vertices = append(g.mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIntAccessor(g.doc, int(*prim.Indices)); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// glTF winds front faces counter-clockwise; faces are stored
		// reversed like the other loaders.
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if a >= len(positions) || b >= len(positions) || c >= len(positions) {
				return fmt.Errorf("triangle %d references vertex beyond %d", i/3, len(positions))
			}
			g.mesh.Faces = append(g.mesh.Faces, Face{
				V:        [3]int{baseVertex + a, baseVertex + c, baseVertex + b},
				Material: materialIdx,
			})
		}
	}
	return nil
}

// buildSkeleton turns the selected skin into mesh.Skeleton. Joints are
// reordered so parents precede children and vertex joint indices are
// remapped to match. Root joints carry their full world transform.
func (g *gltfBuilder) buildSkeleton() error {
	if g.skinIdx >= len(g.doc.Skins) {
		return fmt.Errorf("skin %d out of range", g.skinIdx)
	}
	skin := g.doc.Skins[g.skinIdx]
	n := len(skin.Joints)

	jointOf := make(map[int]int, n) // node index -> joint index
	for j, node := range skin.Joints {
		jointOf[int(node)] = j
	}
	parentNode := make(map[int]int, len(g.doc.Nodes))
	for i, node := range g.doc.Nodes {
		for _, c := range node.Children {
			parentNode[int(c)] = i
		}
	}

	// Parent joint: the nearest ancestor node that is also a joint.
	parentJoint := make([]int, n)
	for j, node := range skin.Joints {
		parentJoint[j] = -1
		p, ok := parentNode[int(node)]
		for steps := 0; ok && steps <= len(g.doc.Nodes); steps++ {
			if pj, isJoint := jointOf[p]; isJoint {
				parentJoint[j] = pj
				break
			}
			p, ok = parentNode[p]
		}
	}

	order := make([]int, 0, n) // new index -> joint index
	placed := make([]bool, n)
	var place func(j int) error
	depth := 0
	place = func(j int) error {
		if placed[j] {
			return nil
		}
		if depth > n {
			return fmt.Errorf("skin %d: joint hierarchy has a cycle", g.skinIdx)
		}
		if p := parentJoint[j]; p >= 0 {
			depth++
			err := place(p)
			depth--
			if err != nil {
				return err
			}
		}
		placed[j] = true
		order = append(order, j)
		return nil
	}
	for j := range n {
		if err := place(j); err != nil {
			return err
		}
	}
	newIndex := make([]int, n)
	for ni, j := range order {
		newIndex[j] = ni
	}

	var invBind []math3d.Matrix4
	if skin.InverseBindMatrices != nil {
		values, comps, err := readFloatAccessor(g.doc, int(*skin.InverseBindMatrices))
		if err != nil {
			return fmt.Errorf("read inverse bind matrices: %w", err)
		}
		if comps != 16 || len(values) < 16*n {
			return fmt.Errorf("skin %d: want %d MAT4 inverse bind matrices", g.skinIdx, n)
		}
		invBind = make([]math3d.Matrix4, n)
		for j := range n {
			var cm [16]float32
			copy(cm[:], values[16*j:16*j+16])
			invBind[newIndex[j]] = math3d.Matrix4FromColumnMajor(cm)
		}
	}

	bones := make([]skeleton.Bone, n)
	for ni, j := range order {
		nodeIdx := int(skin.Joints[j])
		bone := skeleton.Bone{Name: g.doc.Nodes[nodeIdx].Name, Parent: -1}
		if bone.Name == "" {
			bone.Name = fmt.Sprintf("joint%d", j)
		}
		local := g.nodeWorld(nodeIdx, parentNode, 0)
		if p := parentJoint[j]; p >= 0 {
			bone.Parent = newIndex[p]
			if inv, ok := g.nodeWorld(int(skin.Joints[p]), parentNode, 0).Inverse(); ok {
				local = inv.Mul(local)
			}
		}
		bone.Transform = skeleton.Transform{
			Position: local.Position(),
			Rotation: math3d.QuaternionFromMatrix4(local),
		}
		bones[ni] = bone
	}

	skel, err := skeleton.New(bones)
	if err != nil {
		return fmt.Errorf("skin %d: %w", g.skinIdx, err)
	}
	skel.InverseBind = invBind
	g.mesh.Skeleton = skel

	for i := range g.mesh.Vertices {
		v := &g.mesh.Vertices[i]
		for k, j := range v.Joints {
			if j >= 0 && j < n {
				v.Joints[k] = newIndex[j]
			} else {
				v.Weights[k] = 0
			}
		}
	}
	return nil
}

// nodeWorld returns the world matrix of a node, composing its ancestors
// when the scene walk did not reach it.
func (g *gltfBuilder) nodeWorld(idx int, parentNode map[int]int, depth int) math3d.Matrix4 {
	if w, ok := g.world[idx]; ok {
		return w
	}
	local := nodeMatrix(g.doc.Nodes[idx])
	p, ok := parentNode[idx]
	if !ok || depth > len(g.doc.Nodes) {
		return local
	}
	return g.nodeWorld(p, parentNode, depth+1).Mul(local)
}

// extractMaterials reads base color and metal/roughness factors plus any
// base color texture.
func extractMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, len(doc.Materials))

	for i, mat := range doc.Materials {
		m := Material{
			Name:      mat.Name,
			BaseColor: [4]float32{1, 1, 1, 1},
			Roughness: 1,
		}
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				for c := range 4 {
					m.BaseColor[c] = float32(pbr.BaseColorFactor[c])
				}
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = float32(*pbr.MetallicFactor)
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = float32(*pbr.RoughnessFactor)
			}
			if pbr.BaseColorTexture != nil {
				texIdx := int(pbr.BaseColorTexture.Index)
				if texIdx < len(doc.Textures) {
					tex := doc.Textures[texIdx]
					if tex.Source != nil && int(*tex.Source) < len(doc.Images) {
						if img := loadGLTFImage(doc, doc.Images[*tex.Source], dir); img != nil {
							m.BaseMap = img
							m.HasTexture = true
						}
					}
				}
			}
		}
		materials[i] = m
	}
	return materials
}

// loadGLTFImage decodes an embedded or external PNG, JPEG or WebP image.
// Failures leave the material untextured.
func loadGLTFImage(doc *gltf.Document, img *gltf.Image, dir string) image.Image {
	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if buf.Data == nil || end > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset:end]
	case img.URI != "":
		b, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
		data = b
	default:
		return nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}

func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vector3d, error) {
	values, comps, err := readFloatAccessor(doc, idx)
	if err != nil {
		return nil, err
	}
	if comps != 3 {
		return nil, fmt.Errorf("accessor %d: expected VEC3, got %d components", idx, comps)
	}
	out := make([]math3d.Vector3d, len(values)/3)
	for i := range out {
		out[i] = math3d.V3(values[3*i], values[3*i+1], values[3*i+2])
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, idx int) ([]math3d.Vector2d, error) {
	values, comps, err := readFloatAccessor(doc, idx)
	if err != nil {
		return nil, err
	}
	if comps != 2 {
		return nil, fmt.Errorf("accessor %d: expected VEC2, got %d components", idx, comps)
	}
	out := make([]math3d.Vector2d, len(values)/2)
	for i := range out {
		out[i] = math3d.V2(values[2*i], values[2*i+1])
	}
	return out, nil
}

var errNoBufferView = errors.New("accessor has no buffer view")

func accessorComponents(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

func componentSize(c gltf.ComponentType) int {
	switch c {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

// accessorView returns the raw elements of an accessor: the buffer slice
// starting at the first element, the byte stride between elements, the
// component count and the component size.
func accessorView(doc *gltf.Document, idx int) (data []byte, stride, comps, size int, err error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, 0, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, 0, 0, 0, fmt.Errorf("accessor %d: %w", idx, errNoBufferView)
	}
	comps, size = accessorComponents(acc.Type), componentSize(acc.ComponentType)
	if comps == 0 || size == 0 {
		return nil, 0, 0, 0, fmt.Errorf("accessor %d: unsupported type %v / %v", idx, acc.Type, acc.ComponentType)
	}

	bv := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, 0, 0, fmt.Errorf("accessor %d: buffer has no data", idx)
	}
	stride = bv.ByteStride
	if stride == 0 {
		stride = comps * size
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + comps*size
		if end > len(buf.Data) || end > bv.ByteOffset+bv.ByteLength {
			return nil, 0, 0, 0, fmt.Errorf("accessor %d: %d elements overrun buffer view", idx, acc.Count)
		}
	}
	return buf.Data[start:], stride, comps, size, nil
}

// readFloatAccessor returns every component as float32, flattened.
// Normalized integer components are mapped to [0, 1].
func readFloatAccessor(doc *gltf.Document, idx int) ([]float32, int, error) {
	data, stride, comps, size, err := accessorView(doc, idx)
	if err != nil {
		return nil, 0, err
	}
	acc := doc.Accessors[idx]
	out := make([]float32, acc.Count*comps)
	for i := range acc.Count {
		for c := range comps {
			p := data[i*stride+c*size:]
			var v float32
			switch acc.ComponentType {
			case gltf.ComponentFloat:
				v = math.Float32frombits(binary.LittleEndian.Uint32(p))
			case gltf.ComponentUbyte:
				v = float32(p[0])
				if acc.Normalized {
					v /= math.MaxUint8
				}
			case gltf.ComponentUshort:
				v = float32(binary.LittleEndian.Uint16(p))
				if acc.Normalized {
					v /= math.MaxUint16
				}
			case gltf.ComponentByte:
				v = float32(int8(p[0]))
			case gltf.ComponentShort:
				v = float32(int16(binary.LittleEndian.Uint16(p)))
			case gltf.ComponentUint:
				v = float32(binary.LittleEndian.Uint32(p))
			}
			out[i*comps+c] = v
		}
	}
	return out, comps, nil
}

// readIntAccessor reads unsigned integer components (indices, joints),
// flattened.
func readIntAccessor(doc *gltf.Document, idx int) ([]int, error) {
	data, stride, comps, size, err := accessorView(doc, idx)
	if err != nil {
		return nil, err
	}
	acc := doc.Accessors[idx]
	out := make([]int, acc.Count*comps)
	for i := range acc.Count {
		for c := range comps {
			p := data[i*stride+c*size:]
			switch acc.ComponentType {
			case gltf.ComponentUbyte:
				out[i*comps+c] = int(p[0])
			case gltf.ComponentUshort:
				out[i*comps+c] = int(binary.LittleEndian.Uint16(p))
			case gltf.ComponentUint:
				out[i*comps+c] = int(binary.LittleEndian.Uint32(p))
			default:
				return nil, fmt.Errorf("accessor %d: expected unsigned integers, got %v", idx, acc.ComponentType)
			}
		}
	}
	return out, nil
}
