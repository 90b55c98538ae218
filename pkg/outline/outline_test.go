package outline

import (
	gomath "math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/midgard-outline/pkg/gltfasset"
)

// packVec3 encodes tightly packed float32 VEC3 data.
func packVec3(values [][3]float32) []byte {
	data := make([]byte, len(values)*12)
	for i, v := range values {
		binary.Float.PutVec3(data[i*12:], v)
	}
	return data
}

func mustView(t *testing.T, values [][3]float32) AttributeView {
	t.Helper()
	v, err := NewAttributeView(packVec3(values), 3, len(values))
	if err != nil {
		t.Fatalf("NewAttributeView: %v", err)
	}
	return v
}

func edgesOf(t *testing.T, tm gltfasset.TriangleMesh, threshold float64) []Edge {
	t.Helper()
	positions := mustView(t, tm.Positions)
	normals := mustView(t, tm.Normals)
	var source TriangleSource
	if tm.Indices != nil {
		source = IndexedTriangles(tm.Indices)
	} else {
		source = ImplicitTriangles(len(tm.Positions))
	}
	return FindEdges(source, positions, normals, threshold, nil)
}

func flatQuad() gltfasset.TriangleMesh {
	up := [3]float32{0, 0, 1}
	return gltfasset.TriangleMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Normals:   [][3]float32{up, up, up, up},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

// unindexed expands an indexed mesh into an implicit triangle list.
func unindexed(tm gltfasset.TriangleMesh) gltfasset.TriangleMesh {
	out := gltfasset.TriangleMesh{Name: tm.Name}
	for _, idx := range tm.Indices {
		out.Positions = append(out.Positions, tm.Positions[idx])
		out.Normals = append(out.Normals, tm.Normals[idx])
	}
	return out
}

func TestAttributeView_Stride(t *testing.T) {
	// Interleaved position + normal, 6 floats per vertex.
	values := [][3]float32{{1, 2, 3}, {0, 0, 1}, {4, 5, 6}, {0, 1, 0}}
	v, err := NewAttributeView(packVec3(values), 6, 2)
	if err != nil {
		t.Fatalf("NewAttributeView: %v", err)
	}
	if got := v.At(1); got != (r3.Vec{X: 4, Y: 5, Z: 6}) {
		t.Errorf("At(1) = %v, want {4 5 6}", got)
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
}

func TestAttributeView_Errors(t *testing.T) {
	if _, err := NewAttributeView(nil, 2, 1); err == nil {
		t.Error("expected stride error")
	}
	if _, err := NewAttributeView(make([]byte, 20), 3, 2); err == nil {
		t.Error("expected truncation error")
	}
	if _, err := NewAttributeView(nil, 3, 0); err != nil {
		t.Errorf("empty view: unexpected error %v", err)
	}
}

func TestTriangleSource(t *testing.T) {
	indexed := IndexedTriangles([]uint32{4, 5, 6, 7, 8, 9, 1})
	if indexed.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", indexed.TriangleCount())
	}
	if got := indexed.VertexIndexAt(3, 2); got != 9 {
		t.Errorf("VertexIndexAt(3, 2) = %d, want 9", got)
	}
	if got := indexed.MaxVertexIndex(); got != 9 {
		t.Errorf("MaxVertexIndex() = %d, want 9 (trailing index ignored)", got)
	}

	implicit := ImplicitTriangles(7)
	if implicit.Indexed() {
		t.Error("implicit source reports indexed")
	}
	if got := implicit.VertexIndexAt(3, 1); got != 4 {
		t.Errorf("VertexIndexAt(3, 1) = %d, want 4", got)
	}
	if got := implicit.MaxVertexIndex(); got != 5 {
		t.Errorf("MaxVertexIndex() = %d, want 5", got)
	}
}

func TestDecodeIndices(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		componentType gltf.ComponentType
		want          []uint32
	}{
		{"ubyte", []byte{1, 2, 3}, gltf.ComponentUbyte, []uint32{1, 2, 3}},
		{"ushort", []byte{1, 0, 0, 1}, gltf.ComponentUshort, []uint32{1, 256}},
		{"uint", []byte{0, 0, 1, 0}, gltf.ComponentUint, []uint32{65536}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIndices(tt.data, tt.componentType, len(tt.want))
			if err != nil {
				t.Fatalf("DecodeIndices: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("index %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, err := DecodeIndices([]byte{1}, gltf.ComponentUshort, 1); err == nil {
		t.Error("expected truncation error")
	}
	if _, err := DecodeIndices([]byte{1, 2, 3, 4}, gltf.ComponentFloat, 1); err == nil {
		t.Error("expected component type error")
	}
}

func TestBuildHalfEdges_MergesByPosition(t *testing.T) {
	// Two triangles share the edge (1,0,0)-(0,1,0) through duplicated vertices.
	positions := mustView(t, [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	})
	m := BuildHalfEdges(ImplicitTriangles(6), positions)

	// 6 triangle edges, one shared: 5 geometric edges, 10 directed.
	if m.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", m.Len())
	}

	e, ok := m.Lookup(r3.Vec{X: 1}, r3.Vec{Y: 1})
	if !ok {
		t.Fatal("shared half-edge not found")
	}
	if len(e.Origins) != 2 || e.Origins[0] != 1 || e.Origins[1] != 3 {
		t.Errorf("Origins = %v, want [1 3]", e.Origins)
	}
	if len(e.Destinations) != 2 || e.Destinations[0] != 2 || e.Destinations[1] != 5 {
		t.Errorf("Destinations = %v, want [2 5]", e.Destinations)
	}
	if e.TriangleStarts != nil {
		t.Errorf("TriangleStarts = %v, want nil for implicit triangles", e.TriangleStarts)
	}
}

func TestBuildHalfEdges_Indexed(t *testing.T) {
	tm := flatQuad()
	m := BuildHalfEdges(IndexedTriangles(tm.Indices), mustView(t, tm.Positions))

	e, ok := m.Lookup(r3.Vec{}, r3.Vec{X: 1, Y: 1})
	if !ok {
		t.Fatal("diagonal half-edge not found")
	}
	// Reverse winding of the first triangle, natural winding of the second.
	if len(e.TriangleStarts) != 2 || e.TriangleStarts[0] != 0 || e.TriangleStarts[1] != 3 {
		t.Errorf("TriangleStarts = %v, want [0 3]", e.TriangleStarts)
	}
	if _, ok := m.Lookup(r3.Vec{X: 1, Y: 1}, r3.Vec{}); !ok {
		t.Error("reverse diagonal not registered")
	}
}

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name    string
		a, b    r3.Vec
		want    float64
		wantErr bool
	}{
		{"parallel", r3.Vec{Z: 1}, r3.Vec{Z: 2}, 0, false},
		{"perpendicular", r3.Vec{X: 1}, r3.Vec{Y: 1}, gomath.Pi / 2, false},
		{"opposite", r3.Vec{X: 1}, r3.Vec{X: -1}, gomath.Pi, false},
		{"zero", r3.Vec{}, r3.Vec{X: 1}, 0, true},
		{"nan", r3.Vec{X: gomath.NaN()}, r3.Vec{X: 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AngleBetween(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if gomath.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AngleBetween = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindEdges_FlatQuad(t *testing.T) {
	if edges := edgesOf(t, flatQuad(), DefaultMinimumAngle); len(edges) != 0 {
		t.Errorf("flat quad produced %d edges, want 0: %v", len(edges), edges)
	}
}

func TestFindEdges_Cube(t *testing.T) {
	for _, tc := range []struct {
		name string
		mesh gltfasset.TriangleMesh
	}{
		{"indexed", gltfasset.Cube()},
		{"implicit", unindexed(gltfasset.Cube())},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tm := tc.mesh
			edges := edgesOf(t, tm, gomath.Pi/4)
			if len(edges) != 12 {
				t.Fatalf("cube produced %d edges, want 12", len(edges))
			}

			for _, e := range edges {
				a, b := tm.Positions[e.Start], tm.Positions[e.End]
				// Face-boundary edges of the cube differ in exactly one axis;
				// face diagonals differ in two.
				diff := 0
				for c := 0; c < 3; c++ {
					if a[c] != b[c] {
						diff++
					}
				}
				if diff != 1 {
					t.Errorf("edge %v (%v -> %v) is not a cube boundary edge", e, a, b)
				}
				if e.Start < 0 || e.Start >= len(tm.Positions) || e.End < 0 || e.End >= len(tm.Positions) {
					t.Errorf("edge %v out of vertex range", e)
				}
			}
		})
	}
}

func TestFindEdges_ThresholdAboveRightAngle(t *testing.T) {
	if edges := edgesOf(t, gltfasset.Cube(), gomath.Pi/2+0.1); len(edges) != 0 {
		t.Errorf("got %d edges with threshold above 90 degrees, want 0", len(edges))
	}
}

func TestFindEdges_Idempotent(t *testing.T) {
	first := edgesOf(t, gltfasset.Cube(), DefaultMinimumAngle)
	second := edgesOf(t, gltfasset.Cube(), DefaultMinimumAngle)
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("edge %d differs: %v vs %v", i, first[i], second[i])
		}
	}
	if EncodeIndices(Flatten(first)).ComponentType != EncodeIndices(Flatten(second)).ComponentType {
		t.Error("runs chose different index widths")
	}
}

// fold returns two triangles meeting along the x axis with the given normals.
func fold(nA, nB [3]float32) gltfasset.TriangleMesh {
	return gltfasset.TriangleMesh{
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{0, 0, 0}, {1, 0, 0}, {0, 0, -1},
		},
		Normals: [][3]float32{nA, nA, nA, nB, nB, nB},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
}

func TestFindEdges_OppositeNormalsRejected(t *testing.T) {
	edges := edgesOf(t, fold([3]float32{0, 0, 1}, [3]float32{0, 0, -1}), DefaultMinimumAngle)
	if len(edges) != 0 {
		t.Errorf("normals at exactly pi produced %v, want none", edges)
	}
}

func TestFindEdges_DegenerateNormalSkipped(t *testing.T) {
	edges := edgesOf(t, fold([3]float32{0, 0, 1}, [3]float32{0, 0, 0}), DefaultMinimumAngle)
	if len(edges) != 0 {
		t.Errorf("degenerate normal produced %v, want none", edges)
	}
}

// fan returns triangles that all share the edge (0,0,0)-(1,0,0). Triangle i
// gets normals[i] on all three of its vertices.
func fan(normals ...[3]float32) gltfasset.TriangleMesh {
	var tm gltfasset.TriangleMesh
	for i, n := range normals {
		base := uint32(len(tm.Positions))
		tm.Positions = append(tm.Positions, [3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, float32(i)})
		tm.Normals = append(tm.Normals, n, n, n)
		tm.Indices = append(tm.Indices, base, base+1, base+2)
	}
	return tm
}

// observedEdges runs FindEdges with a debug-level observer attached.
func observedEdges(t *testing.T, tm gltfasset.TriangleMesh) ([]Edge, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	edges := FindEdges(IndexedTriangles(tm.Indices), mustView(t, tm.Positions), mustView(t, tm.Normals),
		DefaultMinimumAngle, zap.New(core))
	return edges, logs
}

func TestFindEdges_ContinuesAfterDegeneratePair(t *testing.T) {
	edges, logs := observedEdges(t, fan(
		[3]float32{0, 0, 0},
		[3]float32{0, 0, 1},
		[3]float32{0, 1, 0},
	))
	if len(edges) != 1 || edges[0] != (Edge{Start: 0, End: 1}) {
		t.Fatalf("edges = %v, want [{0 1}]", edges)
	}
	if n := logs.FilterMessage("skipping face pair").Len(); n == 0 {
		t.Error("degenerate face pair was not logged")
	}
}

func TestFindEdges_OccurrenceCap(t *testing.T) {
	up, side := [3]float32{0, 0, 1}, [3]float32{0, 1, 0}
	tests := []struct {
		name      string
		triangles int
		want      int
	}{
		{"crease face within cap", maxOccurrences, 1},
		{"crease face beyond cap", maxOccurrences + 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normals := make([][3]float32, tt.triangles)
			for i := range normals {
				normals[i] = up
			}
			normals[len(normals)-1] = side

			if edges := edgesOf(t, fan(normals...), DefaultMinimumAngle); len(edges) != tt.want {
				t.Errorf("got %d edges, want %d: %v", len(edges), tt.want, edges)
			}
		})
	}
}

func TestFindEdges_SharedFirstVertexNotCompared(t *testing.T) {
	// Both triangles start at vertex 0, so they count as the same face and
	// the zero normal on vertex 0 is never evaluated.
	tm := gltfasset.TriangleMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Normals:   [][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 0, 1}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2, 0, 1, 3},
	}
	edges, logs := observedEdges(t, tm)
	if len(edges) != 0 {
		t.Errorf("edges = %v, want none", edges)
	}
	if n := logs.FilterMessage("skipping face pair").Len(); n != 0 {
		t.Errorf("%d face pairs evaluated, want 0", n)
	}
}

func TestFindEdges_SingleTriangle(t *testing.T) {
	tri := gltfasset.TriangleMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	for _, tc := range []struct {
		name string
		mesh gltfasset.TriangleMesh
	}{
		{"indexed", tri},
		{"implicit", unindexed(tri)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if edges := edgesOf(t, tc.mesh, 0); len(edges) != 0 {
				t.Errorf("boundary edges outlined: %v", edges)
			}
		})
	}
}

func TestFindEdges_Fold(t *testing.T) {
	edges := edgesOf(t, fold([3]float32{0, 0, 1}, [3]float32{0, 1, 0}), DefaultMinimumAngle)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0] != (Edge{Start: 0, End: 1}) {
		t.Errorf("edge = %v, want {0 1}", edges[0])
	}
}

func TestFindEdges_InconsistentWinding(t *testing.T) {
	tm := fold([3]float32{0, 0, 1}, [3]float32{0, 1, 0})
	// Second triangle wound the same way across the shared edge.
	tm.Indices = []uint32{0, 1, 2, 4, 3, 5}
	if edges := edgesOf(t, tm, DefaultMinimumAngle); len(edges) != 1 {
		t.Errorf("got %d edges, want 1", len(edges))
	}
}

func TestCapOccurrences(t *testing.T) {
	s := make([]int, 30)
	for i := range s {
		s[i] = i
	}
	got := capOccurrences(s)
	if len(got) != maxOccurrences || got[0] != 0 || got[maxOccurrences-1] != maxOccurrences-1 {
		t.Errorf("capOccurrences kept %v", got)
	}
}

func TestEncodeIndices(t *testing.T) {
	tests := []struct {
		name     string
		indices  []uint32
		wantType gltf.ComponentType
	}{
		{"small", []uint32{0, 1, 2, 3}, gltf.ComponentUshort},
		{"below sentinel", []uint32{0, 65534}, gltf.ComponentUshort},
		{"sentinel", []uint32{0, 65535}, gltf.ComponentUint},
		{"large", []uint32{1, 70000}, gltf.ComponentUint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := EncodeIndices(tt.indices)
			if enc.ComponentType != tt.wantType {
				t.Errorf("ComponentType = %v, want %v", enc.ComponentType, tt.wantType)
			}
			if want := len(tt.indices) * tt.wantType.ByteSize(); len(enc.Data) != want {
				t.Errorf("len(Data) = %d, want %d", len(enc.Data), want)
			}
			if enc.Count != len(tt.indices) {
				t.Errorf("Count = %d, want %d", enc.Count, len(tt.indices))
			}
			decoded, err := DecodeIndices(enc.Data, enc.ComponentType, enc.Count)
			if err != nil {
				t.Fatalf("DecodeIndices: %v", err)
			}
			for i := range tt.indices {
				if decoded[i] != tt.indices[i] {
					t.Errorf("index %d = %d, want %d", i, decoded[i], tt.indices[i])
				}
			}
		})
	}
}

func TestMode(t *testing.T) {
	for _, m := range []Mode{ModeOff, ModeOn, ModeUseModelSettings} {
		parsed, err := ParseMode(m.String())
		if err != nil || parsed != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), parsed, err)
		}
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestResolveThreshold(t *testing.T) {
	override := 0.5
	tests := []struct {
		name     string
		override *float64
		hint     float64
		hasHint  bool
		mode     Mode
		want     float64
	}{
		{"override wins", &override, 1.0, true, ModeUseModelSettings, 0.5},
		{"hint in model mode", nil, 1.0, true, ModeUseModelSettings, 1.0},
		{"hint ignored when on", nil, 1.0, true, ModeOn, DefaultMinimumAngle},
		{"default", nil, 0, false, ModeUseModelSettings, DefaultMinimumAngle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveThreshold(tt.override, tt.hint, tt.hasHint, tt.mode); got != tt.want {
				t.Errorf("ResolveThreshold = %v, want %v", got, tt.want)
			}
		})
	}
}
