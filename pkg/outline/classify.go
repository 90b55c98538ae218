package outline

import (
	"errors"
	gomath "math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMinimumAngle is the face-normal angle (radians) above which an edge
// is outlined when no other threshold is configured.
const DefaultMinimumAngle = gomath.Pi / 20

// maxOccurrences caps how many merged occurrences per side of an edge are
// compared. Pathological non-manifold input otherwise grows quadratically.
const maxOccurrences = 21

// ErrDegenerateNormal is returned when an angle involves a zero-length or
// non-finite normal.
var ErrDegenerateNormal = errors.New("degenerate normal")

// AngleBetween returns the angle in radians between a and b.
func AngleBetween(a, b r3.Vec) (float64, error) {
	if !finite(a) || !finite(b) {
		return 0, ErrDegenerateNormal
	}
	if r3.Norm2(a) == 0 || r3.Norm2(b) == 0 {
		return 0, ErrDegenerateNormal
	}
	return gomath.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b)), nil
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if gomath.IsNaN(c) || gomath.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Edge is an outlined edge as a pair of mesh vertex indices.
type Edge struct {
	Start, End int
}

// Classifier decides which half-edges are creases.
type Classifier struct {
	Normals   AttributeView
	Source    TriangleSource
	Threshold float64
	Log       *zap.Logger
}

// FindOutlineEdges walks the half-edges in insertion order and returns the
// edges whose adjacent faces meet at an angle strictly between the threshold
// and pi. Each geometric edge is evaluated once; edges without an opposing
// half-edge are never outlined.
func (c *Classifier) FindOutlineEdges(edges *HalfEdgeMap) []Edge {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	var result []Edge
	visited := make(map[edgeKey]struct{}, edges.Len())

	for i := 0; i < edges.Len(); i++ {
		edge := edges.Edge(i)
		k := edge.key()
		if _, ok := visited[k]; ok {
			continue
		}
		if _, ok := visited[k.reversed()]; ok {
			continue
		}

		neighbor, ok := edges.lookup(k.reversed())
		visited[k] = struct{}{}
		if !ok {
			continue
		}
		visited[neighbor.key()] = struct{}{}

		if c.isCrease(edge, neighbor, log) {
			result = append(result, Edge{Start: edge.Origins[0], End: edge.Destinations[0]})
		}
	}
	return result
}

// isCrease compares every face pair across the edge and stops at the first
// pair whose normals exceed the threshold.
func (c *Classifier) isCrease(edge, neighbor *HalfEdge, log *zap.Logger) bool {
	faces := c.faceVertices(edge)
	neighborFaces := c.faceVertices(neighbor)

	for _, fa := range faces {
		for _, fb := range neighborFaces {
			if fa == fb {
				continue
			}
			angle, err := AngleBetween(c.Normals.At(fa), c.Normals.At(fb))
			if err != nil {
				log.Debug("skipping face pair",
					zap.Int("vertexA", fa),
					zap.Int("vertexB", fb),
					zap.Error(err))
				continue
			}
			if angle > c.Threshold && angle < gomath.Pi {
				return true
			}
		}
	}
	return false
}

// faceVertices returns the first vertex index of each face owning an
// occurrence of e, capped at maxOccurrences.
func (c *Classifier) faceVertices(e *HalfEdge) []int {
	if e.TriangleStarts != nil {
		starts := capOccurrences(e.TriangleStarts)
		faces := make([]int, len(starts))
		for i, start := range starts {
			faces[i] = c.Source.VertexIndexAt(start, 0)
		}
		return faces
	}

	origins := capOccurrences(e.Origins)
	faces := make([]int, len(origins))
	for i, idx := range origins {
		faces[i] = idx - idx%3
	}
	return faces
}

func capOccurrences(s []int) []int {
	if len(s) > maxOccurrences {
		return s[:maxOccurrences]
	}
	return s
}

// FindEdges builds the half-edge graph for source and returns its crease
// edges. It is the whole per-primitive pipeline minus asset integration.
func FindEdges(source TriangleSource, positions, normals AttributeView, threshold float64, log *zap.Logger) []Edge {
	edges := BuildHalfEdges(source, positions)
	c := Classifier{
		Normals:   normals,
		Source:    source,
		Threshold: threshold,
		Log:       log,
	}
	return c.FindOutlineEdges(edges)
}
