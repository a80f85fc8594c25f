package spatialindex

import (
	"errors"
	"testing"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildIndex(t *testing.T, coords ...geo.Coordinate) (*Rtree, *da.Graph) {
	t.Helper()
	g := da.NewGraph()
	for i, c := range coords {
		g.AddVertex(c.Lat, c.Lon, int64(i+1))
	}
	rt := NewRtree()
	rt.Build(g, zap.NewNop())
	return rt, g
}

func TestNearestVertex(t *testing.T) {
	rt, _ := buildIndex(t,
		geo.NewCoordinate(41.0, -87.0),
		geo.NewCoordinate(41.0009, -87.0),
		geo.NewCoordinate(41.0, -86.9988),
		geo.NewCoordinate(41.0009, -86.9988),
	)
	require.Equal(t, 4, rt.Len())

	testCases := []struct {
		name string
		q    geo.Coordinate
		want da.Index
	}{
		{name: "exact vertex", q: geo.NewCoordinate(41.0009, -87.0), want: 1},
		{name: "close to c", q: geo.NewCoordinate(41.0001, -86.9989), want: 2},
		{name: "far outside the initial box", q: geo.NewCoordinate(41.05, -86.9988), want: 3},
		{name: "outside every search ring", q: geo.NewCoordinate(45.0, -80.0), want: 3},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, dist, err := rt.NearestVertex(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, dist, 0.0)
		})
	}
}

func TestNearestVertexTieGoesToLowerIndex(t *testing.T) {
	rt, _ := buildIndex(t,
		geo.NewCoordinate(41.0, -87.0005),
		geo.NewCoordinate(41.0, -87.0005),
	)
	got, _, err := rt.NearestVertex(geo.NewCoordinate(41.0, -87.0))
	require.NoError(t, err)
	assert.Equal(t, da.Index(0), got)
}

func TestNearestVertexEmptyGraph(t *testing.T) {
	rt, _ := buildIndex(t)
	_, _, err := rt.NearestVertex(geo.NewCoordinate(41.0, -87.0))
	assert.True(t, errors.Is(err, util.ErrEmptyGraph))
}

func TestWithinRadius(t *testing.T) {
	rt, _ := buildIndex(t,
		geo.NewCoordinate(41.0, -87.0),
		geo.NewCoordinate(41.0009, -87.0), // ~100 m north
		geo.NewCoordinate(41.0, -86.9988), // ~100 m east
		geo.NewCoordinate(41.0009, -86.9988),
	)

	testCases := []struct {
		name   string
		center geo.Coordinate
		radius float64
		want   []da.Index
	}{
		{name: "only b", center: geo.NewCoordinate(41.0009, -87.0), radius: 50, want: []da.Index{1}},
		{name: "b and its neighbours", center: geo.NewCoordinate(41.0009, -87.0), radius: 110, want: []da.Index{0, 1, 3}},
		{name: "everything", center: geo.NewCoordinate(41.00045, -86.9994), radius: 1000, want: []da.Index{0, 1, 2, 3}},
		{name: "nothing nearby", center: geo.NewCoordinate(42.0, -87.0), radius: 500, want: []da.Index{}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rt.WithinRadius(tt.center, tt.radius))
		})
	}
}

func TestWithinRadiusAcrossAntimeridian(t *testing.T) {
	rt, g := buildIndex(t,
		geo.NewCoordinate(0, 179.9995),
		geo.NewCoordinate(0, -179.9995), // ~110 m east of the first, across 180
		geo.NewCoordinate(0, 179.99),
		geo.NewCoordinate(0, 180),
	)

	testCases := []struct {
		name   string
		center geo.Coordinate
		radius float64
		want   []da.Index
	}{
		{name: "center west of 180", center: geo.NewCoordinate(0, 179.9999), radius: 200, want: []da.Index{0, 1, 3}},
		{name: "center east of 180", center: geo.NewCoordinate(0, -179.9999), radius: 200, want: []da.Index{0, 1, 3}},
		{name: "only the far side", center: geo.NewCoordinate(0, -179.999), radius: 100, want: []da.Index{1}},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := rt.WithinRadius(tt.center, tt.radius)
			assert.Equal(t, tt.want, got)

			// same answer as a full scan
			scan := make([]da.Index, 0)
			g.ForVertices(func(v *da.Vertex) {
				if geo.GeodesicDistance(tt.center, v.GetCoordinate()) <= tt.radius {
					scan = append(scan, v.GetID())
				}
			})
			assert.Equal(t, scan, got)
		})
	}

	nearest, _, err := rt.NearestVertex(geo.NewCoordinate(0, -179.99999))
	require.NoError(t, err)
	assert.Equal(t, da.Index(3), nearest)
}

func TestRebindFollowsClone(t *testing.T) {
	rt, g := buildIndex(t, geo.NewCoordinate(41.0, -87.0), geo.NewCoordinate(41.0009, -87.0))
	c := g.Clone()
	rc := rt.Rebind(c)
	got, _, err := rc.NearestVertex(geo.NewCoordinate(41.0008, -87.0))
	require.NoError(t, err)
	assert.Equal(t, da.Index(1), got)
}
