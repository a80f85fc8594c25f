package usecases

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
)

type RoutingEngine interface {
	ShortestPath(ctx context.Context, origin, dest geo.Coordinate, weight routing.WeightKind) (routing.RouteResult, error)
	BlockArea(center geo.Coordinate, radiusM float64) (closure.BlockResult, error)
	AddPointClosures(coords []geo.Coordinate) (closure.BlockResult, error)
	ApplyTraffic(multipliers map[da.EdgeKey]float64) (int, error)
	Scenario() (*engine.Engine, error)
	Reload(ctx context.Context) error
	Stats() engine.Stats
}

type FacilityLocator interface {
	FindFacilities(ctx context.Context, center geo.Coordinate, kind facility.Kind, radiusM float64,
		maxResults int) ([]facility.Facility, error)
}
