package outline

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// ExtensionName is the primitive extension that carries outline indices.
const ExtensionName = "CESIUM_primitive_outline"

// hintKey is the optional per-primitive threshold stored in the extension.
const hintKey = "outlineWhenAngleBetweenFaceNormalsExceeds"

// Asset is the container that owns meshes, accessors and buffers. The
// generator only reads existing records and appends new ones.
type Asset interface {
	MeshCount() int
	PrimitiveCount(mesh int) int
	Primitive(mesh, prim int) *gltf.Primitive
	Accessor(id int) (*gltf.Accessor, bool)
	BufferView(id int) (*gltf.BufferView, bool)

	AppendBuffer(b *gltf.Buffer) int
	AppendBufferView(v *gltf.BufferView) int
	AppendAccessor(a *gltf.Accessor) int

	PrimitiveExtension(mesh, prim int, name string) (any, bool)
	SetPrimitiveExtension(mesh, prim int, name string, value any)

	ExtensionsUsed() []string
	AddExtensionUsed(name string)

	// Compressed reports whether the asset declares a compressed mesh
	// encoding as used or required.
	Compressed() bool
}

// ResourceLoader resolves a buffer view to its resident bytes.
type ResourceLoader interface {
	BufferViewBytes(view *gltf.BufferView) ([]byte, error)
}

// decodeExtension accepts the forms an extension value takes after loading:
// a generic map or the raw JSON kept for unknown extensions.
func decodeExtension(v any) (map[string]any, bool) {
	switch ext := v.(type) {
	case map[string]any:
		return ext, true
	case json.RawMessage:
		var m map[string]any
		if err := json.Unmarshal(ext, &m); err != nil {
			return nil, false
		}
		return m, true
	case []byte:
		return decodeExtension(json.RawMessage(ext))
	}
	return nil, false
}

// StoredThreshold returns the threshold hint stored on a primitive's outline
// extension, if any.
func StoredThreshold(asset Asset, mesh, prim int) (float64, bool) {
	v, ok := asset.PrimitiveExtension(mesh, prim, ExtensionName)
	if !ok {
		return 0, false
	}
	fields, ok := decodeExtension(v)
	if !ok {
		return 0, false
	}
	switch t := fields[hintKey].(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

// attachExtension stores the outline accessor on the primitive, keeping any
// threshold hint already present.
func attachExtension(asset Asset, mesh, prim, accessor int) {
	block := map[string]any{"indices": accessor}
	if hint, ok := StoredThreshold(asset, mesh, prim); ok {
		block[hintKey] = hint
	}
	asset.SetPrimitiveExtension(mesh, prim, ExtensionName, block)
	asset.AddExtensionUsed(ExtensionName)
}

// OutlineAccessor returns the accessor id attached to a primitive's outline
// extension.
func OutlineAccessor(asset Asset, mesh, prim int) (int, bool) {
	v, ok := asset.PrimitiveExtension(mesh, prim, ExtensionName)
	if !ok {
		return 0, false
	}
	fields, ok := decodeExtension(v)
	if !ok {
		return 0, false
	}
	switch id := fields["indices"].(type) {
	case int:
		return id, true
	case float64:
		return int(id), true
	}
	return 0, false
}
