package usecases

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

type RoutingService struct {
	log          *zap.Logger
	engine       RoutingEngine
	blockRadiusM float64
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine, blockRadiusM float64) *RoutingService {
	return &RoutingService{
		log:          log,
		engine:       engine,
		blockRadiusM: blockRadiusM,
	}
}

func (rs *RoutingService) ShortestPath(ctx context.Context, origin, dest geo.Coordinate,
	weight routing.WeightKind) (routing.RouteResult, error) {
	return rs.engine.ShortestPath(ctx, origin, dest, weight)
}

// Close blocks the area around center (when given) and every point closure. radiusM <= 0 takes
// the configured block radius.
func (rs *RoutingService) Close(center *geo.Coordinate, radiusM float64, points []geo.Coordinate) (closure.BlockResult, error) {
	if center == nil && len(points) == 0 {
		return closure.BlockResult{}, util.WrapErrorf(nil, util.ErrBadParamInput, "nothing to close")
	}

	var res closure.BlockResult
	if center != nil {
		if radiusM <= 0 {
			radiusM = rs.blockRadiusM
		}
		area, err := rs.engine.BlockArea(*center, radiusM)
		if err != nil {
			return closure.BlockResult{}, err
		}
		res = area
	}
	if len(points) > 0 {
		pts, err := rs.engine.AddPointClosures(points)
		if err != nil {
			return res, err
		}
		res.Removed += pts.Removed
		res.Vertices = append(res.Vertices, pts.Vertices...)
		res.Edges = append(res.Edges, pts.Edges...)
	}
	rs.log.Info("road closures applied", zap.Int("removed_edges", res.Removed), zap.Int("blocked_nodes", len(res.Vertices)))
	return res, nil
}

func (rs *RoutingService) ApplyTraffic(multipliers map[da.EdgeKey]float64) (int, error) {
	return rs.engine.ApplyTraffic(multipliers)
}

func (rs *RoutingService) Reload(ctx context.Context) (engine.Stats, error) {
	if err := rs.engine.Reload(ctx); err != nil {
		return engine.Stats{}, err
	}
	return rs.engine.Stats(), nil
}

func (rs *RoutingService) Stats() engine.Stats {
	return rs.engine.Stats()
}
