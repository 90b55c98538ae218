// Package outline finds crease edges of triangle meshes and encodes them
// as an auxiliary line-list index buffer for glTF primitives.
package outline

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf/binary"
	"gonum.org/v1/gonum/spatial/r3"
)

// Attribute view errors.
var (
	ErrInvalidStride      = errors.New("invalid attribute stride")
	ErrTruncatedAttribute = errors.New("truncated attribute data")
)

// floatSize is the byte size of one float32 component.
const floatSize = 4

// AttributeView gives random access to a VEC3 float attribute stored in a
// raw, possibly interleaved, little-endian buffer.
type AttributeView struct {
	data   []byte
	stride int // floats per vertex
	count  int
}

// NewAttributeView creates a view over count vertices. stride is the number
// of float elements between the start of consecutive vertices (3 for tightly
// packed data).
func NewAttributeView(data []byte, stride, count int) (AttributeView, error) {
	if stride < 3 {
		return AttributeView{}, fmt.Errorf("%w: %d", ErrInvalidStride, stride)
	}
	if count < 0 {
		count = 0
	}
	if count > 0 {
		need := ((count-1)*stride + 3) * floatSize
		if len(data) < need {
			return AttributeView{}, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedAttribute, need, len(data))
		}
	}
	return AttributeView{data: data, stride: stride, count: count}, nil
}

// Len returns the number of vertices in the view.
func (v AttributeView) Len() int {
	return v.count
}

// At returns the vector of vertex i. i must be in [0, Len()).
func (v AttributeView) At(i int) r3.Vec {
	f := binary.Float.Vec3(v.data[i*v.stride*floatSize:])
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}
