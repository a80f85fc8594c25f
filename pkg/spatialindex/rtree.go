package spatialindex

import (
	"math"
	"sort"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	// first search box radius for nearest vertex lookups, doubled until a vertex is found
	initialNearestRadiusM = 100.0
	maxNearestRadiusM     = 200_000.0
)

// Rtree indexes graph vertices by coordinate. Vertices are never removed from a graph, so the
// index stays valid after closures.
type Rtree struct {
	tr    *rtree.RTreeG[da.Index]
	graph *da.Graph
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[da.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. insert every vertex of graph as a point leaf.
func (rt *Rtree) Build(graph *da.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("vertices", graph.NumberOfVertices()))
	rt.graph = graph
	graph.ForVertices(func(v *da.Vertex) {
		p := [2]float64{v.GetLon(), v.GetLat()}
		rt.tr.Insert(p, p, v.GetID())
	})
	log.Info("R-tree spatial index built.")
}

// Rebind points the index at another graph with identical vertices, e.g. a clone.
func (rt *Rtree) Rebind(graph *da.Graph) *Rtree {
	return &Rtree{tr: rt.tr, graph: graph}
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// candidates collects vertices inside the bounding box of the circle (center, radiusM). A circle
// crossing the antimeridian is searched as two boxes.
func (rt *Rtree) candidates(center geo.Coordinate, radiusM float64) []da.Index {
	boxes := geo.SearchBoxesAround(center, radiusM)

	results := make([]da.Index, 0, 16)
	seen := make(map[da.Index]struct{})
	for _, b := range boxes {
		rt.tr.Search([2]float64{b.MinLon, b.MinLat}, [2]float64{b.MaxLon, b.MaxLat},
			func(min, max [2]float64, data da.Index) bool {
				if len(boxes) > 1 {
					// a vertex on ±180 lies in both boxes
					if _, ok := seen[data]; ok {
						return true
					}
					seen[data] = struct{}{}
				}
				results = append(results, data)
				return true
			})
	}
	return results
}

// NearestVertex returns the vertex with the smallest geodesic distance to q, and that distance in
// meter. Ties go to the lower vertex index.
func (rt *Rtree) NearestVertex(q geo.Coordinate) (da.Index, float64, error) {
	if rt.graph == nil || rt.graph.NumberOfVertices() == 0 {
		return da.INVALID_VERTEX_ID, 0, util.WrapErrorf(nil, util.ErrEmptyGraph, "nearest vertex of %v", q)
	}

	for r := initialNearestRadiusM; r <= maxNearestRadiusM; r *= 2 {
		best, bestDist, ok := rt.closestOf(q, rt.candidates(q, r))
		// a candidate within r is exact, anything outside the circle could be beaten by an
		// unseen vertex in the next ring
		if ok && bestDist <= r {
			return best, bestDist, nil
		}
	}

	return rt.nearestLinear(q)
}

func (rt *Rtree) closestOf(q geo.Coordinate, cands []da.Index) (da.Index, float64, bool) {
	best := da.INVALID_VERTEX_ID
	bestDist := math.Inf(1)
	for _, v := range cands {
		d := geo.GeodesicDistance(q, rt.graph.GetVertexCoordinate(v))
		if d < bestDist || (d == bestDist && v < best) {
			best, bestDist = v, d
		}
	}
	return best, bestDist, best != da.INVALID_VERTEX_ID
}

// nearestLinear. O(V) scan for queries far away from the network.
func (rt *Rtree) nearestLinear(q geo.Coordinate) (da.Index, float64, error) {
	best := da.INVALID_VERTEX_ID
	bestDist := math.Inf(1)
	rt.graph.ForVertices(func(v *da.Vertex) {
		d := geo.GeodesicDistance(q, v.GetCoordinate())
		if d < bestDist {
			best, bestDist = v.GetID(), d
		}
	})
	return best, bestDist, nil
}

// WithinRadius returns every vertex whose geodesic distance to center is <= radiusM, sorted by
// vertex index.
func (rt *Rtree) WithinRadius(center geo.Coordinate, radiusM float64) []da.Index {
	if rt.graph == nil || radiusM < 0 {
		return nil
	}
	cands := rt.candidates(center, radiusM)
	results := make([]da.Index, 0, len(cands))
	for _, v := range cands {
		if geo.GeodesicDistance(center, rt.graph.GetVertexCoordinate(v)) <= radiusM {
			results = append(results, v)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i] < results[j]
	})
	return results
}
