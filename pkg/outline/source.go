package outline

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
)

// TriangleSource yields the vertex indices of a triangle list, either from an
// index buffer or implicitly from vertex order (0,1,2 / 3,4,5 / ...).
type TriangleSource struct {
	indices  []uint32
	vertices int
	indexed  bool
}

// IndexedTriangles returns a source backed by an index buffer.
func IndexedTriangles(indices []uint32) TriangleSource {
	return TriangleSource{indices: indices, indexed: true}
}

// ImplicitTriangles returns a source for a non-indexed triangle list with the
// given vertex count.
func ImplicitTriangles(vertexCount int) TriangleSource {
	return TriangleSource{vertices: vertexCount}
}

// Indexed reports whether triangles come from an index buffer.
func (s TriangleSource) Indexed() bool {
	return s.indexed
}

// Len returns the number of vertex slots (index count or vertex count).
// Trailing slots that do not form a full triangle are ignored.
func (s TriangleSource) Len() int {
	if s.indexed {
		return len(s.indices)
	}
	return s.vertices
}

// TriangleCount returns the number of complete triangles.
func (s TriangleSource) TriangleCount() int {
	return s.Len() / 3
}

// VertexIndexAt returns the vertex index of corner (0..2) of the triangle
// starting at triangleStart.
func (s TriangleSource) VertexIndexAt(triangleStart, corner int) int {
	if s.indexed {
		return int(s.indices[triangleStart+corner])
	}
	return triangleStart + corner
}

// MaxVertexIndex returns the largest referenced vertex index, or -1 if the
// source is empty.
func (s TriangleSource) MaxVertexIndex() int {
	n := s.TriangleCount() * 3
	if n == 0 {
		return -1
	}
	if !s.indexed {
		return n - 1
	}
	maxIdx := 0
	for _, idx := range s.indices[:n] {
		if int(idx) > maxIdx {
			maxIdx = int(idx)
		}
	}
	return maxIdx
}

// DecodeIndices converts tightly packed index data of an unsigned byte,
// short or int component type into uint32 indices.
func DecodeIndices(data []byte, componentType gltf.ComponentType, count int) ([]uint32, error) {
	switch componentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return nil, fmt.Errorf("unsupported index component type %v", componentType)
	}
	size := componentType.ByteSize()
	if len(data) < size*count {
		return nil, fmt.Errorf("index data truncated: need %d bytes, have %d", size*count, len(data))
	}

	indices := make([]uint32, count)
	for i := range indices {
		b := data[i*size:]
		switch componentType {
		case gltf.ComponentUbyte:
			indices[i] = uint32(binary.Ubyte.Scalar(b))
		case gltf.ComponentUshort:
			indices[i] = uint32(binary.Ushort.Scalar(b))
		default:
			indices[i] = binary.Uint.Scalar(b)
		}
	}
	return indices, nil
}
