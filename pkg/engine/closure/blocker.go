package closure

import (
	"math"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

type BlockResult struct {
	Removed  int          `json:"removed_edges"`
	Vertices []da.Index   `json:"blocked_nodes"`
	Edges    []da.EdgeKey `json:"edges"`
}

func (br *BlockResult) merge(o BlockResult) {
	br.Removed += o.Removed
	br.Vertices = append(br.Vertices, o.Vertices...)
	br.Edges = append(br.Edges, o.Edges...)
}

// Blocker removes road segments around disaster sites. Removal is in place and can only be
// undone by reloading the network.
type Blocker struct {
	log *zap.Logger
}

func NewBlocker(log *zap.Logger) *Blocker {
	return &Blocker{log: log}
}

// BlockArea removes every edge incident to a vertex within radiusM meters (geodesic) of center.
// With a nil index all vertices are scanned, otherwise the index prefilters candidates and the
// same geodesic test decides.
func (b *Blocker) BlockArea(g *da.Graph, index *spatialindex.Rtree, center geo.Coordinate, radiusM float64) (BlockResult, error) {
	if radiusM < 0 || math.IsNaN(radiusM) {
		return BlockResult{}, util.WrapErrorf(nil, util.ErrBadParamInput, "block radius %v must be >= 0", radiusM)
	}
	if !center.Valid() {
		return BlockResult{}, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid block center %v", center)
	}

	var vertices []da.Index
	if index != nil {
		vertices = index.WithinRadius(center, radiusM)
	} else {
		vertices = make([]da.Index, 0)
		g.ForVertices(func(v *da.Vertex) {
			if geo.GeodesicDistance(center, v.GetCoordinate()) <= radiusM {
				vertices = append(vertices, v.GetID())
			}
		})
	}

	res := b.removeIncident(g, vertices)

	b.log.Info("blocked disaster area",
		zap.Float64("lat", center.Lat), zap.Float64("lon", center.Lon),
		zap.Float64("radius_m", radiusM),
		zap.Int("blocked_nodes", len(res.Vertices)),
		zap.Int("removed_edges", res.Removed))
	return res, nil
}

// AddPointClosures removes every edge incident to the nearest vertex of each coordinate.
func (b *Blocker) AddPointClosures(g *da.Graph, index *spatialindex.Rtree, coords []geo.Coordinate) (BlockResult, error) {
	if g.NumberOfVertices() == 0 {
		return BlockResult{}, util.WrapErrorf(nil, util.ErrEmptyGraph, "point closures")
	}

	res := BlockResult{Vertices: make([]da.Index, 0, len(coords)), Edges: make([]da.EdgeKey, 0)}
	for _, c := range coords {
		if !c.Valid() {
			return res, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid closure coordinate %v", c)
		}
		var (
			v   da.Index
			err error
		)
		if index != nil {
			v, _, err = index.NearestVertex(c)
			if err != nil {
				return res, err
			}
		} else {
			v = nearestLinear(g, c)
		}
		res.merge(b.removeIncident(g, []da.Index{v}))
	}

	b.log.Info("added point closures",
		zap.Int("closures", len(coords)),
		zap.Int("removed_edges", res.Removed))
	return res, nil
}

func (b *Blocker) removeIncident(g *da.Graph, vertices []da.Index) BlockResult {
	res := BlockResult{Vertices: vertices, Edges: make([]da.EdgeKey, 0)}
	for _, v := range vertices {
		// only active edges are listed, so an edge shared by two blocked vertices is removed once
		keys := g.IncidentEdges(v)
		res.Removed += g.RemoveEdges(keys)
		res.Edges = append(res.Edges, keys...)
	}
	return res
}

func nearestLinear(g *da.Graph, q geo.Coordinate) da.Index {
	best := da.INVALID_VERTEX_ID
	bestDist := math.Inf(1)
	g.ForVertices(func(v *da.Vertex) {
		d := geo.GeodesicDistance(q, v.GetCoordinate())
		if d < bestDist {
			best, bestDist = v.GetID(), d
		}
	})
	return best
}
