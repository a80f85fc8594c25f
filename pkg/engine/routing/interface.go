package routing

import (
	"context"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
)

// PathFinder computes a route between two coordinates on the current road network.
type PathFinder interface {
	ShortestPath(ctx context.Context, origin, dest geo.Coordinate, weight WeightKind) (RouteResult, error)
}
