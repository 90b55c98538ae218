package gltfasset

import (
	"fmt"

	"github.com/qmuntal/gltf"
)

// Resources resolves buffer views against the resident data of a document's
// buffers.
type Resources struct {
	doc *gltf.Document
}

// NewResources creates a loader for d.
func NewResources(d *Document) *Resources {
	return &Resources{doc: d.doc}
}

// BufferViewBytes returns the bytes covered by view. The slice aliases the
// buffer data and must not be modified.
func (r *Resources) BufferViewBytes(view *gltf.BufferView) ([]byte, error) {
	if view.Buffer < 0 || view.Buffer >= len(r.doc.Buffers) {
		return nil, fmt.Errorf("%w: %d", ErrBufferNotFound, view.Buffer)
	}
	buf := r.doc.Buffers[view.Buffer]
	if buf == nil || buf.Data == nil {
		return nil, fmt.Errorf("%w: %d", ErrBufferNotResident, view.Buffer)
	}

	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || view.ByteLength < 0 || end > len(buf.Data) {
		return nil, fmt.Errorf("%w: [%d:%d] of %d bytes", ErrBufferViewOverflow, view.ByteOffset, end, len(buf.Data))
	}
	return buf.Data[view.ByteOffset:end], nil
}
