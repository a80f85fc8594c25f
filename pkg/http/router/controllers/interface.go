package controllers

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/usecases"
)

type RoutingService interface {
	ShortestPath(ctx context.Context, origin, dest geo.Coordinate, weight routing.WeightKind) (routing.RouteResult, error)
	Close(center *geo.Coordinate, radiusM float64, points []geo.Coordinate) (closure.BlockResult, error)
	ApplyTraffic(multipliers map[da.EdgeKey]float64) (int, error)
	Reload(ctx context.Context) (engine.Stats, error)
	Stats() engine.Stats
}

type DispatchService interface {
	Dispatch(ctx context.Context, req usecases.DispatchRequest) (*usecases.DispatchReport, error)
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
}
