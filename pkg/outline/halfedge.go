package outline

import "gonum.org/v1/gonum/spatial/r3"

// edgeKey identifies a directed edge by its exact endpoint positions.
type edgeKey struct {
	src, dst r3.Vec
}

func (k edgeKey) reversed() edgeKey {
	return edgeKey{src: k.dst, dst: k.src}
}

// HalfEdge is a directed edge merged from every triangle corner pair that
// shares the same source and destination positions.
type HalfEdge struct {
	Source      r3.Vec
	Destination r3.Vec

	// Origins and Destinations hold the vertex indices of each merged
	// occurrence, in insertion order.
	Origins      []int
	Destinations []int

	// TriangleStarts holds the index-buffer offset of the owning triangle of
	// each occurrence. Nil when triangles are implicit.
	TriangleStarts []int
}

func (e *HalfEdge) key() edgeKey {
	return edgeKey{src: e.Source, dst: e.Destination}
}

// HalfEdgeMap stores half-edges in an arena, indexed by position-pair key.
// Iteration follows insertion order.
type HalfEdgeMap struct {
	edges []HalfEdge
	index map[edgeKey]int
}

func newHalfEdgeMap(capacity int) *HalfEdgeMap {
	return &HalfEdgeMap{
		edges: make([]HalfEdge, 0, capacity),
		index: make(map[edgeKey]int, capacity),
	}
}

// Len returns the number of distinct half-edges.
func (m *HalfEdgeMap) Len() int {
	return len(m.edges)
}

// Edge returns the i-th half-edge in insertion order.
func (m *HalfEdgeMap) Edge(i int) *HalfEdge {
	return &m.edges[i]
}

// Lookup returns the half-edge running from src to dst, if any.
func (m *HalfEdgeMap) Lookup(src, dst r3.Vec) (*HalfEdge, bool) {
	return m.lookup(edgeKey{src: src, dst: dst})
}

func (m *HalfEdgeMap) lookup(k edgeKey) (*HalfEdge, bool) {
	i, ok := m.index[k]
	if !ok {
		return nil, false
	}
	return &m.edges[i], true
}

// add registers one occurrence of the directed edge from -> to. Occurrences
// sharing a key are appended to the existing record.
func (m *HalfEdgeMap) add(positions AttributeView, from, to, triangleStart int, indexed bool) {
	k := edgeKey{src: positions.At(from), dst: positions.At(to)}
	if i, ok := m.index[k]; ok {
		e := &m.edges[i]
		e.Origins = append(e.Origins, from)
		e.Destinations = append(e.Destinations, to)
		if indexed {
			e.TriangleStarts = append(e.TriangleStarts, triangleStart)
		}
		return
	}

	e := HalfEdge{
		Source:       k.src,
		Destination:  k.dst,
		Origins:      []int{from},
		Destinations: []int{to},
	}
	if indexed {
		e.TriangleStarts = []int{triangleStart}
	}
	m.index[k] = len(m.edges)
	m.edges = append(m.edges, e)
}

// BuildHalfEdges registers six half-edges per triangle: the natural winding
// a->b, b->c, c->a and the reversed winding c->b, b->a, a->c. Registering
// both lets neighbours be found across inconsistently wound triangles.
func BuildHalfEdges(source TriangleSource, positions AttributeView) *HalfEdgeMap {
	triangles := source.TriangleCount()
	m := newHalfEdgeMap(triangles * 3)
	indexed := source.Indexed()

	for t := 0; t < triangles; t++ {
		start := t * 3
		a := source.VertexIndexAt(start, 0)
		b := source.VertexIndexAt(start, 1)
		c := source.VertexIndexAt(start, 2)

		m.add(positions, a, b, start, indexed)
		m.add(positions, b, c, start, indexed)
		m.add(positions, c, a, start, indexed)

		m.add(positions, c, b, start, indexed)
		m.add(positions, b, a, start, indexed)
		m.add(positions, a, c, start, indexed)
	}
	return m
}
