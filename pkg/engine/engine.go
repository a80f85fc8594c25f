package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/dispatch"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/mapdata"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/metrics"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

type EngineOption func(*Engine)

// WithRouteTimeout bounds every shortest path query. Zero means only the caller's ctx applies.
func WithRouteTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.routeTimeout = d
	}
}

// Engine owns one road network. Closures and traffic updates take the write lock, queries the
// read lock, so a query never observes a half applied closure.
type Engine struct {
	mu           sync.RWMutex
	source       mapdata.Source
	graph        *da.Graph
	index        *spatialindex.Rtree
	region       string
	networkType  pkg.NetworkType
	blocker      *closure.Blocker
	routeTimeout time.Duration
	// only the served network reports gauges, scenarios stay silent
	reportGauges bool
	log          *zap.Logger
}

func NewEngine(source mapdata.Source, log *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		source:       source,
		blocker:      closure.NewBlocker(log),
		reportGauges: true,
		log:          log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the network with a fresh one for region, discarding all closures and traffic
// updates. On failure the engine is left without a network.
func (e *Engine) Load(ctx context.Context, region string, networkType pkg.NetworkType) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph, e.index = nil, nil
	e.region, e.networkType = region, networkType

	start := time.Now()
	graph, err := e.source.LoadNetwork(ctx, region, networkType)
	if err == nil && (graph == nil || graph.NumberOfVertices() == 0) {
		err = util.WrapErrorf(nil, util.ErrNetworkLoad, "region %q has no road network", region)
	}
	if err != nil {
		metrics.NetworkLoads.WithLabelValues("error").Inc()
		e.updateGauges()
		e.log.Error("failed to load road network", zap.String("region", region), zap.Error(err))
		if !errors.Is(err, util.ErrNetworkLoad) {
			err = util.WrapErrorf(err, util.ErrNetworkLoad, "load %q", region)
		}
		return err
	}

	e.setGraph(graph)
	metrics.NetworkLoads.WithLabelValues("ok").Inc()
	e.log.Info("road network loaded", zap.String("region", region), zap.String("network_type", string(networkType)),
		zap.Int("vertices", graph.NumberOfVertices()), zap.Int("edges", graph.NumberOfEdges()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Reload loads the last requested region again.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.RLock()
	region, networkType := e.region, e.networkType
	e.mu.RUnlock()
	if region == "" {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "no region loaded yet")
	}
	return e.Load(ctx, region, networkType)
}

// SetGraph serves graph directly, e.g. one built in memory.
func (e *Engine) SetGraph(graph *da.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setGraph(graph)
}

func (e *Engine) setGraph(graph *da.Graph) {
	index := spatialindex.NewRtree()
	index.Build(graph, e.log)
	e.graph, e.index = graph, index
	e.updateGauges()
}

func (e *Engine) updateGauges() {
	if !e.reportGauges {
		return
	}
	if e.graph == nil {
		metrics.NetworkVertices.Set(0)
		metrics.NetworkActiveEdges.Set(0)
		return
	}
	metrics.NetworkVertices.Set(float64(e.graph.NumberOfVertices()))
	metrics.NetworkActiveEdges.Set(float64(e.graph.NumberOfEdges()))
}

func errNoNetwork() error {
	return util.WrapErrorf(nil, util.ErrEmptyGraph, "no road network loaded")
}

// Stats. Components counts strongly connected components over the active edges, closures that
// cut the network show up as more components.
type Stats struct {
	Region           string `json:"region"`
	Vertices         int    `json:"vertices"`
	ActiveEdges      int    `json:"active_edges"`
	RemovedEdges     int    `json:"removed_edges"`
	Components       int    `json:"components"`
	LargestComponent int    `json:"largest_component"`
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.graph == nil {
		return Stats{Region: e.region}
	}
	comp, count := e.graph.StronglyConnectedComponents()
	return Stats{
		Region:           e.region,
		Vertices:         e.graph.NumberOfVertices(),
		ActiveEdges:      e.graph.NumberOfEdges(),
		RemovedEdges:     e.graph.NumberOfRemovedEdges(),
		Components:       count,
		LargestComponent: da.LargestComponentSize(comp, count),
	}
}

func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph != nil
}

func (e *Engine) BlockArea(center geo.Coordinate, radiusM float64) (closure.BlockResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil {
		return closure.BlockResult{}, errNoNetwork()
	}
	res, err := e.blocker.BlockArea(e.graph, e.index, center, radiusM)
	if err != nil {
		return res, err
	}
	if e.reportGauges {
		metrics.EdgesBlocked.WithLabelValues("area").Add(float64(res.Removed))
	}
	e.updateGauges()
	return res, nil
}

func (e *Engine) AddPointClosures(coords []geo.Coordinate) (closure.BlockResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil {
		return closure.BlockResult{}, errNoNetwork()
	}
	res, err := e.blocker.AddPointClosures(e.graph, e.index, coords)
	if err != nil {
		return res, err
	}
	if e.reportGauges {
		metrics.EdgesBlocked.WithLabelValues("point").Add(float64(res.Removed))
	}
	e.updateGauges()
	return res, nil
}

func (e *Engine) ScaleTravelTime(key da.EdgeKey, multiplier float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil {
		return errNoNetwork()
	}
	if err := e.graph.ScaleTravelTime(key, multiplier); err != nil {
		return err
	}
	metrics.TrafficEdgesScaled.Inc()
	return nil
}

// ApplyTraffic scales the travel time of every listed edge. Nothing is applied when a multiplier
// is invalid. Edges that do not exist are skipped.
func (e *Engine) ApplyTraffic(multipliers map[da.EdgeKey]float64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil {
		return 0, errNoNetwork()
	}
	n, err := e.graph.ApplyTrafficMultipliers(multipliers)
	if err != nil {
		return 0, err
	}
	metrics.TrafficEdgesScaled.Add(float64(n))
	e.log.Info("traffic multipliers applied", zap.Int("requested", len(multipliers)), zap.Int("scaled", n))
	return n, nil
}

// ShortestPath implements routing.PathFinder on the current network.
func (e *Engine) ShortestPath(ctx context.Context, origin, dest geo.Coordinate, weight routing.WeightKind) (routing.RouteResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.graph == nil {
		return routing.RouteResult{}, errNoNetwork()
	}

	if e.routeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.routeTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := routing.NewRouter(e.graph, e.index, e.log).ShortestPath(ctx, origin, dest, weight)
	if err != nil {
		return res, err
	}
	metrics.RouteQueries.WithLabelValues(weight.String(), res.Status.String()).Inc()
	metrics.RouteQueryDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	return res, nil
}

// NearestVertex. the vertex a coordinate snaps to and its distance in meters.
func (e *Engine) NearestVertex(c geo.Coordinate) (da.Index, float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.graph == nil {
		return da.INVALID_VERTEX_ID, 0, errNoNetwork()
	}
	return e.index.NearestVertex(c)
}

// Scenario returns an independent engine on a deep copy of the current network. Closures on the
// scenario are invisible to e and the other way round.
func (e *Engine) Scenario() (*Engine, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.graph == nil {
		return nil, errNoNetwork()
	}
	graph := e.graph.Clone()
	return &Engine{
		source:       e.source,
		graph:        graph,
		index:        e.index.Rebind(graph),
		region:       e.region,
		networkType:  e.networkType,
		blocker:      e.blocker,
		routeTimeout: e.routeTimeout,
		log:          e.log,
	}, nil
}

// CompareBlockade routes origin to dest on the current network, then again on a scenario with the
// area around center blocked. The current network is not modified.
func (e *Engine) CompareBlockade(ctx context.Context, origin, dest, center geo.Coordinate, radiusM float64,
	weight routing.WeightKind) (dispatch.RouteComparison, closure.BlockResult, error) {
	primary, err := e.ShortestPath(ctx, origin, dest, weight)
	if err != nil {
		return dispatch.RouteComparison{}, closure.BlockResult{}, err
	}

	scenario, err := e.Scenario()
	if err != nil {
		return dispatch.RouteComparison{}, closure.BlockResult{}, err
	}
	blocked, err := scenario.BlockArea(center, radiusM)
	if err != nil {
		return dispatch.RouteComparison{}, closure.BlockResult{}, err
	}
	rerouted, err := scenario.ShortestPath(ctx, origin, dest, weight)
	if err != nil {
		return dispatch.RouteComparison{}, blocked, err
	}
	return dispatch.CompareRoutes(primary, rerouted), blocked, nil
}
