package gltfasset

import (
	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
)

// TriangleMesh is raw triangle geometry to be added to a document.
type TriangleMesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32 // optional
	Indices   []uint32     // optional; nil means implicit triangles
}

// AddPrimitive appends a triangle-list primitive to mesh, creating the mesh
// when mesh equals MeshCount(). Each attribute gets its own buffer. Returns
// the mesh and primitive ids.
func (d *Document) AddPrimitive(mesh int, tm TriangleMesh) (int, int) {
	if mesh >= len(d.doc.Meshes) {
		d.doc.Meshes = append(d.doc.Meshes, &gltf.Mesh{Name: tm.Name})
		mesh = len(d.doc.Meshes) - 1
	}

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{},
		Mode:       gltf.PrimitiveTriangles,
	}
	prim.Attributes["POSITION"] = d.addVec3(tm.Positions)
	if tm.Normals != nil {
		prim.Attributes["NORMAL"] = d.addVec3(tm.Normals)
	}
	if tm.Indices != nil {
		prim.Indices = gltf.Index(d.addIndices(tm.Indices))
	}

	m := d.doc.Meshes[mesh]
	m.Primitives = append(m.Primitives, prim)
	return mesh, len(m.Primitives) - 1
}

func (d *Document) addVec3(values [][3]float32) int {
	data := make([]byte, len(values)*12)
	minV := [3]float64{gomath.Inf(1), gomath.Inf(1), gomath.Inf(1)}
	maxV := [3]float64{gomath.Inf(-1), gomath.Inf(-1), gomath.Inf(-1)}
	for i, v := range values {
		binary.Float.PutVec3(data[i*12:], v)
		for c := 0; c < 3; c++ {
			minV[c] = gomath.Min(minV[c], float64(v[c]))
			maxV[c] = gomath.Max(maxV[c], float64(v[c]))
		}
	}

	view := d.appendData(data, gltf.TargetArrayBuffer)
	acc := &gltf.Accessor{
		BufferView:    gltf.Index(view),
		ComponentType: gltf.ComponentFloat,
		Count:         len(values),
		Type:          gltf.AccessorVec3,
	}
	if len(values) > 0 {
		acc.Min = minV[:]
		acc.Max = maxV[:]
	}
	return d.AppendAccessor(acc)
}

func (d *Document) addIndices(indices []uint32) int {
	data := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.Uint.PutScalar(data[i*4:], idx)
	}
	view := d.appendData(data, gltf.TargetElementArrayBuffer)
	return d.AppendAccessor(&gltf.Accessor{
		BufferView:    gltf.Index(view),
		ComponentType: gltf.ComponentUint,
		Count:         len(indices),
		Type:          gltf.AccessorScalar,
	})
}

func (d *Document) appendData(data []byte, target gltf.Target) int {
	buffer := d.AppendBuffer(&gltf.Buffer{ByteLength: len(data), Data: data})
	return d.AppendBufferView(&gltf.BufferView{
		Buffer:     buffer,
		ByteLength: len(data),
		Target:     target,
	})
}

// Cube returns a unit cube centred on the origin with four vertices per face
// and flat per-face normals.
func Cube() TriangleMesh {
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
	}

	tm := TriangleMesh{Name: "cube"}
	for _, f := range faces {
		base := uint32(len(tm.Positions))
		for _, c := range f.corners {
			tm.Positions = append(tm.Positions, c)
			tm.Normals = append(tm.Normals, f.normal)
		}
		tm.Indices = append(tm.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return tm
}
