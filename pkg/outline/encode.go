package outline

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
)

// PrimitiveRestart is the 16-bit index reserved by graphics APIs for
// primitive restart. It must never appear as a real 16-bit vertex index.
const PrimitiveRestart = 0xFFFF

// Encoded is a packed outline index buffer.
type Encoded struct {
	Data          []byte
	ComponentType gltf.ComponentType
	Count         int // number of indices (two per edge)
	MaxIndex      int
}

// Flatten returns the edges as a line-list index sequence.
func Flatten(edges []Edge) []uint32 {
	indices := make([]uint32, 0, len(edges)*2)
	for _, e := range edges {
		indices = append(indices, uint32(e.Start), uint32(e.End))
	}
	return indices
}

// EncodeIndices packs indices as little-endian uint16 when every index is
// below PrimitiveRestart, otherwise as uint32.
func EncodeIndices(indices []uint32) Encoded {
	maxIndex := 0
	for _, idx := range indices {
		if int(idx) > maxIndex {
			maxIndex = int(idx)
		}
	}

	if maxIndex < PrimitiveRestart {
		data := make([]byte, len(indices)*gltf.ComponentUshort.ByteSize())
		for i, idx := range indices {
			binary.Ushort.PutScalar(data[i*2:], uint16(idx))
		}
		return Encoded{Data: data, ComponentType: gltf.ComponentUshort, Count: len(indices), MaxIndex: maxIndex}
	}

	data := make([]byte, len(indices)*gltf.ComponentUint.ByteSize())
	for i, idx := range indices {
		binary.Uint.PutScalar(data[i*4:], idx)
	}
	return Encoded{Data: data, ComponentType: gltf.ComponentUint, Count: len(indices), MaxIndex: maxIndex}
}
