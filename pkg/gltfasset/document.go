// Package gltfasset adapts qmuntal/gltf documents to the asset container and
// resource loader used by outline generation.
package gltfasset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// DracoExtension is the compressed mesh encoding outline generation cannot read.
const DracoExtension = "KHR_draco_mesh_compression"

// Asset errors.
var (
	ErrBufferNotFound     = errors.New("buffer not found")
	ErrBufferNotResident  = errors.New("buffer data not resident")
	ErrBufferViewOverflow = errors.New("buffer view exceeds buffer")
)

// Document wraps a glTF document. It only appends records; existing entries
// are never modified except for primitive extension blocks.
type Document struct {
	doc *gltf.Document
}

// New wraps doc. A nil doc yields an empty document.
func New(doc *gltf.Document) *Document {
	if doc == nil {
		doc = gltf.NewDocument()
	}
	return &Document{doc: doc}
}

// Open reads a .gltf or .glb file including its external buffers.
func Open(path string) (*Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening glTF %s: %w", path, err)
	}
	return New(doc), nil
}

// Save writes the document. Duplicate extensionsUsed entries are removed.
// Buffers without a URI are embedded as data URIs in the written file only,
// except the first buffer of a .glb which goes into the binary chunk.
func (d *Document) Save(path string) error {
	d.DedupExtensionsUsed()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(d.doc, path)
	} else {
		err = gltf.Save(d.doc, path)
	}
	if err != nil {
		return fmt.Errorf("saving glTF %s: %w", path, err)
	}
	return nil
}

// GLTF returns the underlying document.
func (d *Document) GLTF() *gltf.Document {
	return d.doc
}

// MeshCount returns the number of meshes.
func (d *Document) MeshCount() int {
	return len(d.doc.Meshes)
}

// PrimitiveCount returns the number of primitives of a mesh.
func (d *Document) PrimitiveCount(mesh int) int {
	if mesh < 0 || mesh >= len(d.doc.Meshes) {
		return 0
	}
	return len(d.doc.Meshes[mesh].Primitives)
}

// Primitive returns a primitive, or nil if it does not exist.
func (d *Document) Primitive(mesh, prim int) *gltf.Primitive {
	if prim < 0 || prim >= d.PrimitiveCount(mesh) {
		return nil
	}
	return d.doc.Meshes[mesh].Primitives[prim]
}

// Accessor returns the accessor with the given id.
func (d *Document) Accessor(id int) (*gltf.Accessor, bool) {
	if id < 0 || id >= len(d.doc.Accessors) || d.doc.Accessors[id] == nil {
		return nil, false
	}
	return d.doc.Accessors[id], true
}

// BufferView returns the buffer view with the given id.
func (d *Document) BufferView(id int) (*gltf.BufferView, bool) {
	if id < 0 || id >= len(d.doc.BufferViews) || d.doc.BufferViews[id] == nil {
		return nil, false
	}
	return d.doc.BufferViews[id], true
}

// AppendBuffer adds a buffer and returns its id.
func (d *Document) AppendBuffer(b *gltf.Buffer) int {
	d.doc.Buffers = append(d.doc.Buffers, b)
	return len(d.doc.Buffers) - 1
}

// AppendBufferView adds a buffer view and returns its id.
func (d *Document) AppendBufferView(v *gltf.BufferView) int {
	d.doc.BufferViews = append(d.doc.BufferViews, v)
	return len(d.doc.BufferViews) - 1
}

// AppendAccessor adds an accessor and returns its id.
func (d *Document) AppendAccessor(a *gltf.Accessor) int {
	d.doc.Accessors = append(d.doc.Accessors, a)
	return len(d.doc.Accessors) - 1
}

// PrimitiveExtension returns the named extension value of a primitive.
func (d *Document) PrimitiveExtension(mesh, prim int, name string) (any, bool) {
	p := d.Primitive(mesh, prim)
	if p == nil || p.Extensions == nil {
		return nil, false
	}
	v, ok := p.Extensions[name]
	return v, ok
}

// SetPrimitiveExtension sets the named extension value of a primitive.
func (d *Document) SetPrimitiveExtension(mesh, prim int, name string, value any) {
	p := d.Primitive(mesh, prim)
	if p == nil {
		return
	}
	if p.Extensions == nil {
		p.Extensions = make(gltf.Extensions)
	}
	p.Extensions[name] = value
}

// ExtensionsUsed returns the top-level extensionsUsed list.
func (d *Document) ExtensionsUsed() []string {
	return d.doc.ExtensionsUsed
}

// AddExtensionUsed appends name to extensionsUsed. Duplicates are kept until
// DedupExtensionsUsed runs.
func (d *Document) AddExtensionUsed(name string) {
	d.doc.ExtensionsUsed = append(d.doc.ExtensionsUsed, name)
}

// DedupExtensionsUsed removes repeated extensionsUsed entries, keeping the
// first occurrence of each.
func (d *Document) DedupExtensionsUsed() {
	seen := make(map[string]bool, len(d.doc.ExtensionsUsed))
	out := d.doc.ExtensionsUsed[:0]
	for _, name := range d.doc.ExtensionsUsed {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	d.doc.ExtensionsUsed = out
}

// Compressed reports whether the document declares Draco compression.
func (d *Document) Compressed() bool {
	for _, name := range d.doc.ExtensionsUsed {
		if name == DracoExtension {
			return true
		}
	}
	for _, name := range d.doc.ExtensionsRequired {
		if name == DracoExtension {
			return true
		}
	}
	return false
}
