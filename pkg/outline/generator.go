package outline

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Attribute semantics read by the generator.
const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
)

// Primitive read errors. They never leave the generator; they explain why a
// primitive was skipped in the log.
var (
	ErrMissingAttribute    = errors.New("missing attribute")
	ErrMissingAccessor     = errors.New("accessor not found")
	ErrMissingBufferView   = errors.New("buffer view not found")
	ErrUnsupportedAccessor = errors.New("unsupported accessor layout")
	ErrUnsupportedTopology = errors.New("primitive is not a triangle list")
	ErrIndexOutOfRange     = errors.New("vertex index out of range")
)

// Option configures a Generator.
type Option func(*Generator)

// WithMode sets the generation mode. Default is ModeOn.
func WithMode(m Mode) Option {
	return func(g *Generator) {
		g.mode = m
	}
}

// WithThreshold forces the angle threshold in radians, overriding any stored
// hint.
func WithThreshold(radians float64) Option {
	return func(g *Generator) {
		g.threshold = &radians
	}
}

// WithLogger sets the logger used for skip diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// Generator runs outline generation over the primitives of an asset.
type Generator struct {
	mode      Mode
	threshold *float64
	log       *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		mode: ModeOn,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mode returns the configured generation mode.
func (g *Generator) Mode() Mode {
	return g.mode
}

// Result describes the outline attached to one primitive.
type Result struct {
	Mesh          int
	Primitive     int
	Accessor      int
	Edges         []Edge
	ComponentType gltf.ComponentType
	Threshold     float64
}

// Report aggregates an asset-level run.
type Report struct {
	Results []Result
	Skipped int // primitives that produced no outline
}

// OutlineAsset outlines every primitive of every mesh. It reports whether
// any primitive received outline data. Assets declaring a compressed mesh
// encoding are left untouched.
func (g *Generator) OutlineAsset(asset Asset, loader ResourceLoader) (Report, bool) {
	var report Report
	if g.mode == ModeOff {
		return report, false
	}
	if asset.Compressed() {
		g.log.Info("asset uses compressed meshes, skipping outline generation")
		return report, false
	}

	for m := 0; m < asset.MeshCount(); m++ {
		for p := 0; p < asset.PrimitiveCount(m); p++ {
			res, ok := g.OutlinePrimitive(asset, loader, m, p)
			if !ok {
				report.Skipped++
				continue
			}
			report.Results = append(report.Results, res)
		}
	}

	g.log.Debug("outline generation finished",
		zap.Int("outlined", len(report.Results)),
		zap.Int("skipped", report.Skipped))
	return report, len(report.Results) > 0
}

// OutlinePrimitive computes and attaches the outline of a single primitive.
// It returns false, leaving the primitive unmodified, when the primitive
// cannot be processed or has no crease edges.
func (g *Generator) OutlinePrimitive(asset Asset, loader ResourceLoader, mesh, prim int) (Result, bool) {
	res := Result{Mesh: mesh, Primitive: prim}
	if g.mode == ModeOff || asset.Compressed() {
		return res, false
	}

	log := g.log.With(zap.Int("mesh", mesh), zap.Int("primitive", prim))

	source, positions, normals, err := g.readGeometry(asset, loader, mesh, prim)
	if err != nil {
		log.Warn("skipping primitive", zap.Error(err))
		return res, false
	}

	hint, hasHint := StoredThreshold(asset, mesh, prim)
	res.Threshold = ResolveThreshold(g.threshold, hint, hasHint, g.mode)

	res.Edges = FindEdges(source, positions, normals, res.Threshold, log)
	if len(res.Edges) == 0 {
		log.Debug("no outline edges", zap.Float64("threshold", res.Threshold))
		return res, false
	}

	enc := EncodeIndices(Flatten(res.Edges))
	res.ComponentType = enc.ComponentType
	res.Accessor = appendIndexBuffer(asset, enc)
	attachExtension(asset, mesh, prim, res.Accessor)

	log.Debug("outline attached",
		zap.Int("edges", len(res.Edges)),
		zap.Int("accessor", res.Accessor),
		zap.Int("indexSize", enc.ComponentType.ByteSize()))
	return res, true
}

// readGeometry resolves the triangle source and the position and normal
// views of a primitive.
func (g *Generator) readGeometry(asset Asset, loader ResourceLoader, mesh, prim int) (TriangleSource, AttributeView, AttributeView, error) {
	var source TriangleSource

	p := asset.Primitive(mesh, prim)
	if p == nil {
		return source, AttributeView{}, AttributeView{}, fmt.Errorf("primitive %d/%d not found", mesh, prim)
	}
	if p.Mode != gltf.PrimitiveTriangles {
		return source, AttributeView{}, AttributeView{}, ErrUnsupportedTopology
	}

	posID, ok := p.Attributes[attrPosition]
	if !ok {
		return source, AttributeView{}, AttributeView{}, fmt.Errorf("%w: %s", ErrMissingAttribute, attrPosition)
	}
	normID, ok := p.Attributes[attrNormal]
	if !ok {
		return source, AttributeView{}, AttributeView{}, fmt.Errorf("%w: %s", ErrMissingAttribute, attrNormal)
	}

	positions, err := readVec3(asset, loader, posID)
	if err != nil {
		return source, AttributeView{}, AttributeView{}, fmt.Errorf("reading positions: %w", err)
	}
	normals, err := readVec3(asset, loader, normID)
	if err != nil {
		return source, AttributeView{}, AttributeView{}, fmt.Errorf("reading normals: %w", err)
	}

	if p.Indices != nil {
		indices, err := readIndices(asset, loader, *p.Indices)
		if err != nil {
			return source, AttributeView{}, AttributeView{}, fmt.Errorf("reading indices: %w", err)
		}
		source = IndexedTriangles(indices)
	} else {
		source = ImplicitTriangles(positions.Len())
	}

	if maxIdx := source.MaxVertexIndex(); maxIdx >= positions.Len() || maxIdx >= normals.Len() {
		return source, AttributeView{}, AttributeView{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, maxIdx)
	}
	return source, positions, normals, nil
}

// accessorBytes returns the bytes of an accessor starting at its first
// element, along with the accessor and its buffer view.
func accessorBytes(asset Asset, loader ResourceLoader, id int) ([]byte, *gltf.Accessor, *gltf.BufferView, error) {
	acc, ok := asset.Accessor(id)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrMissingAccessor, id)
	}
	if acc.BufferView == nil {
		return nil, nil, nil, fmt.Errorf("%w: accessor %d has no buffer view", ErrUnsupportedAccessor, id)
	}
	if acc.Sparse != nil {
		return nil, nil, nil, fmt.Errorf("%w: accessor %d is sparse", ErrUnsupportedAccessor, id)
	}
	view, ok := asset.BufferView(*acc.BufferView)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrMissingBufferView, *acc.BufferView)
	}
	data, err := loader.BufferViewBytes(view)
	if err != nil {
		return nil, nil, nil, err
	}
	if acc.ByteOffset > len(data) {
		return nil, nil, nil, fmt.Errorf("%w: accessor offset %d past view end", ErrTruncatedAttribute, acc.ByteOffset)
	}
	return data[acc.ByteOffset:], acc, view, nil
}

func readVec3(asset Asset, loader ResourceLoader, id int) (AttributeView, error) {
	data, acc, view, err := accessorBytes(asset, loader, id)
	if err != nil {
		return AttributeView{}, err
	}
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return AttributeView{}, fmt.Errorf("%w: accessor %d is not float VEC3", ErrUnsupportedAccessor, id)
	}

	stride := 3
	if view.ByteStride != 0 {
		if view.ByteStride%floatSize != 0 {
			return AttributeView{}, fmt.Errorf("%w: byte stride %d", ErrInvalidStride, view.ByteStride)
		}
		stride = view.ByteStride / floatSize
	}
	return NewAttributeView(data, stride, acc.Count)
}

func readIndices(asset Asset, loader ResourceLoader, id int) ([]uint32, error) {
	data, acc, _, err := accessorBytes(asset, loader, id)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("%w: index accessor %d is not SCALAR", ErrUnsupportedAccessor, id)
	}

	switch acc.ComponentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return nil, fmt.Errorf("%w: index component type %v", ErrUnsupportedAccessor, acc.ComponentType)
	}
	return DecodeIndices(data, acc.ComponentType, acc.Count)
}

// appendIndexBuffer registers enc as a new buffer, element-array buffer view
// and scalar accessor, returning the accessor id.
func appendIndexBuffer(asset Asset, enc Encoded) int {
	bufferID := asset.AppendBuffer(&gltf.Buffer{
		ByteLength: len(enc.Data),
		Data:       enc.Data,
	})
	viewID := asset.AppendBufferView(&gltf.BufferView{
		Buffer:     bufferID,
		ByteLength: len(enc.Data),
		Target:     gltf.TargetElementArrayBuffer,
	})
	return asset.AppendAccessor(&gltf.Accessor{
		BufferView:    gltf.Index(viewID),
		ComponentType: enc.ComponentType,
		Count:         enc.Count,
		Type:          gltf.AccessorScalar,
	})
}
