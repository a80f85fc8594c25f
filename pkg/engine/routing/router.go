package routing

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/spatialindex"
	"go.uber.org/zap"
)

// Router answers point to point queries on one graph. Callers sequence it against graph mutations.
type Router struct {
	graph *da.Graph
	index *spatialindex.Rtree
	log   *zap.Logger
}

func NewRouter(graph *da.Graph, index *spatialindex.Rtree, log *zap.Logger) *Router {
	return &Router{
		graph: graph,
		index: index,
		log:   log,
	}
}

// ShortestPath resolves both coordinates to their nearest vertices and runs dijkstra. No path is a
// NotFound result and a cancelled ctx a TimedOut result, neither is an error. Errors are only
// returned for an empty graph.
func (r *Router) ShortestPath(ctx context.Context, origin, dest geo.Coordinate, weight WeightKind) (RouteResult, error) {
	s, _, err := r.index.NearestVertex(origin)
	if err != nil {
		return RouteResult{}, err
	}
	t, _, err := r.index.NearestVertex(dest)
	if err != nil {
		return RouteResult{}, err
	}

	return r.ShortestPathBetween(ctx, s, t, weight), nil
}

func (r *Router) ShortestPathBetween(ctx context.Context, s, t da.Index, weight WeightKind) RouteResult {
	if ctx.Err() != nil {
		return newTimedOut(s, t, weight)
	}

	if s == t {
		return newFound(r.graph, []da.Index{s}, nil, weight)
	}

	dijkstra := NewDijkstra(r.graph, weight)
	nodes, edges, status := dijkstra.ShortestPath(ctx, s, t)

	switch status {
	case Found:
		return newFound(r.graph, nodes, edges, weight)
	case TimedOut:
		r.log.Warn("shortest path search cancelled",
			zap.Uint32("origin", uint32(s)), zap.Uint32("destination", uint32(t)),
			zap.Int("settled", dijkstra.GetNumSettledNodes()))
		return newTimedOut(s, t, weight)
	default:
		r.log.Debug("no path", zap.Uint32("origin", uint32(s)), zap.Uint32("destination", uint32(t)))
		return newNotFound(s, t, weight)
	}
}
