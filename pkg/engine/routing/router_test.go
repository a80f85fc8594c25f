package routing

import (
	"context"
	"errors"
	"testing"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/closure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var (
	coordA = geo.NewCoordinate(41.0, -87.0)
	coordB = geo.NewCoordinate(41.0009, -87.0)
	coordC = geo.NewCoordinate(41.0, -86.9988)
	coordD = geo.NewCoordinate(41.0009, -86.9988)
)

const (
	vA da.Index = iota
	vB
	vC
	vD
)

type testEdge struct {
	u, v       da.Index
	length, tt float64
}

func buildRouter(t *testing.T, coords []geo.Coordinate, edges []testEdge) (*Router, *da.Graph, *spatialindex.Rtree) {
	t.Helper()
	g := da.NewGraph()
	for i, c := range coords {
		g.AddVertex(c.Lat, c.Lon, int64(i+1))
	}
	for _, e := range edges {
		_, _, err := g.AddBidirectionalEdge(e.u, e.v, e.length, e.tt)
		require.NoError(t, err)
	}
	rt := spatialindex.NewRtree()
	rt.Build(g, zap.NewNop())
	return NewRouter(g, rt, zaptest.NewLogger(t)), g, rt
}

func squareRouter(t *testing.T) (*Router, *da.Graph, *spatialindex.Rtree) {
	return buildRouter(t, []geo.Coordinate{coordA, coordB, coordC, coordD}, []testEdge{
		{vA, vB, 100, 10},
		{vB, vD, 100, 10},
		{vA, vC, 100, 10},
		{vC, vD, 100, 10},
	})
}

func TestShortestPathSquare(t *testing.T) {
	testCases := []struct {
		name       string
		block      func(t *testing.T, g *da.Graph, rt *spatialindex.Rtree)
		wantStatus RouteStatus
		wantNodes  []da.Index
		wantDist   float64
	}{
		{
			name:       "tie resolved by edge insertion order",
			block:      func(t *testing.T, g *da.Graph, rt *spatialindex.Rtree) {},
			wantStatus: Found,
			wantNodes:  []da.Index{vA, vB, vD},
			wantDist:   200,
		},
		{
			name: "block area around b reroutes via c",
			block: func(t *testing.T, g *da.Graph, rt *spatialindex.Rtree) {
				res, err := closure.NewBlocker(zap.NewNop()).BlockArea(g, rt, coordB, 50)
				require.NoError(t, err)
				require.Equal(t, 4, res.Removed)
			},
			wantStatus: Found,
			wantNodes:  []da.Index{vA, vC, vD},
			wantDist:   200,
		},
		{
			name: "blocking b and c cuts d off",
			block: func(t *testing.T, g *da.Graph, rt *spatialindex.Rtree) {
				_, err := closure.NewBlocker(zap.NewNop()).AddPointClosures(g, rt, []geo.Coordinate{coordB, coordC})
				require.NoError(t, err)
			},
			wantStatus: NotFound,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, g, rt := squareRouter(t)
			tt.block(t, g, rt)

			res, err := r.ShortestPath(context.Background(), coordA, coordD, Length)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantNodes, res.Nodes)
			assert.InDelta(t, tt.wantDist, res.DistanceM, 1e-9)
			assert.NoError(t, res.Err())

			if tt.wantStatus == Found {
				require.Len(t, res.Coords, len(tt.wantNodes))
				assert.Equal(t, coordA, res.Coords[0])
				assert.Equal(t, coordD, res.Coords[len(res.Coords)-1])
				assert.NotEmpty(t, res.Polyline)
				assert.Len(t, res.Edges, len(tt.wantNodes)-1)
			} else {
				assert.Nil(t, res.Coords)
				assert.Empty(t, res.Polyline)
			}
		})
	}
}

func TestShortestPathSameNode(t *testing.T) {
	r, _, _ := squareRouter(t)
	res, err := r.ShortestPath(context.Background(), coordA, geo.NewCoordinate(41.00001, -87.00001), Length)
	require.NoError(t, err)
	assert.Equal(t, Found, res.Status)
	assert.Equal(t, []da.Index{vA}, res.Nodes)
	assert.Equal(t, 0.0, res.DistanceM)
	assert.Equal(t, []geo.Coordinate{coordA}, res.Coords)
}

func TestShortestPathTravelTimeReportsLength(t *testing.T) {
	// a-b-d is shorter, a-c-d is faster
	r, _, _ := buildRouter(t, []geo.Coordinate{coordA, coordB, coordC, coordD}, []testEdge{
		{vA, vB, 100, 30},
		{vB, vD, 100, 30},
		{vA, vC, 150, 10},
		{vC, vD, 150, 10},
	})

	byLength, err := r.ShortestPath(context.Background(), coordA, coordD, Length)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{vA, vB, vD}, byLength.Nodes)
	assert.InDelta(t, 200, byLength.DistanceM, 1e-9)
	assert.InDelta(t, 60, byLength.TravelTimeS, 1e-9)

	byTime, err := r.ShortestPath(context.Background(), coordA, coordD, TravelTime)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{vA, vC, vD}, byTime.Nodes)
	assert.InDelta(t, 300, byTime.DistanceM, 1e-9, "distance is summed length even when time picked the path")
	assert.InDelta(t, 20, byTime.TravelTimeS, 1e-9)
}

func TestShortestPathTrafficChangesChoice(t *testing.T) {
	r, g, _ := squareRouter(t)
	require.NoError(t, g.ScaleTravelTime(da.NewEdgeKey(vA, vB, 0), 5))

	res, err := r.ShortestPath(context.Background(), coordA, coordD, TravelTime)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{vA, vC, vD}, res.Nodes)

	res, err = r.ShortestPath(context.Background(), coordA, coordD, Length)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{vA, vB, vD}, res.Nodes, "length ignores traffic")
}

func TestShortestPathDeterministic(t *testing.T) {
	r, _, _ := squareRouter(t)
	first, err := r.ShortestPath(context.Background(), coordA, coordD, Length)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := r.ShortestPath(context.Background(), coordA, coordD, Length)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestShortestPathMonotonicUnderBlocking(t *testing.T) {
	// ladder a0-a1-a2-a3 on the bottom, b0-b1-b2-b3 on top, rungs between
	coords := make([]geo.Coordinate, 0, 8)
	for i := 0; i < 4; i++ {
		coords = append(coords, geo.NewCoordinate(41.0, -87.0+float64(i)*0.0012))
	}
	for i := 0; i < 4; i++ {
		coords = append(coords, geo.NewCoordinate(41.0009, -87.0+float64(i)*0.0012))
	}
	edges := []testEdge{
		{0, 1, 100, 10}, {1, 2, 100, 10}, {2, 3, 100, 10},
		{4, 5, 100, 10}, {5, 6, 100, 10}, {6, 7, 100, 10},
		{0, 4, 100, 10}, {1, 5, 100, 10}, {2, 6, 100, 10}, {3, 7, 100, 10},
	}
	r, g, rt := buildRouter(t, coords, edges)
	blocker := closure.NewBlocker(zap.NewNop())

	prev := 0.0
	cut := false
	for _, v := range []da.Index{1, 6, 2} {
		res, err := r.ShortestPath(context.Background(), coords[0], coords[7], Length)
		require.NoError(t, err)
		if cut {
			assert.Equal(t, NotFound, res.Status, "a cut network stays cut")
		} else if res.Found() {
			assert.GreaterOrEqual(t, res.DistanceM, prev)
			prev = res.DistanceM
		} else {
			cut = true
		}

		_, err = blocker.AddPointClosures(g, rt, []geo.Coordinate{coords[v]})
		require.NoError(t, err)
	}
}

func TestShortestPathCancelled(t *testing.T) {
	r, _, _ := squareRouter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.ShortestPath(ctx, coordA, coordD, Length)
	require.NoError(t, err)
	assert.Equal(t, TimedOut, res.Status)
	assert.True(t, errors.Is(res.Err(), util.ErrTimeout))
	assert.Nil(t, res.Nodes)
}

func TestShortestPathEmptyGraph(t *testing.T) {
	r, _, _ := buildRouter(t, nil, nil)
	_, err := r.ShortestPath(context.Background(), coordA, coordD, Length)
	assert.True(t, errors.Is(err, util.ErrEmptyGraph))
}

func TestParseWeightKind(t *testing.T) {
	w, err := ParseWeightKind("travel_time")
	require.NoError(t, err)
	assert.Equal(t, TravelTime, w)

	w, err = ParseWeightKind("")
	require.NoError(t, err)
	assert.Equal(t, Length, w)

	_, err = ParseWeightKind("speed")
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
}
