package usecases

import (
	"context"
	"errors"
	"testing"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/dispatch"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/roster"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	coordA = geo.NewCoordinate(41.0, -87.0)
	coordB = geo.NewCoordinate(41.0009, -87.0)
	coordC = geo.NewCoordinate(41.0, -86.9988)
	coordD = geo.NewCoordinate(41.0009, -86.9988)
)

// A-B, A-C, B-D, C-D two way, 100 m and 10 s each.
func squareEngine(t *testing.T) *engine.Engine {
	t.Helper()
	g := da.NewGraph()
	for i, c := range []geo.Coordinate{coordA, coordB, coordC, coordD} {
		g.AddVertex(c.Lat, c.Lon, int64(i+1))
	}
	for _, e := range [][2]da.Index{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
		_, _, err := g.AddBidirectionalEdge(e[0], e[1], 100, 10)
		require.NoError(t, err)
	}
	e := engine.NewEngine(nil, zaptest.NewLogger(t))
	e.SetGraph(g)
	return e
}

type fakeLocator struct {
	byKind map[facility.Kind][]facility.Facility
	err    error
}

func (l *fakeLocator) FindFacilities(_ context.Context, _ geo.Coordinate, kind facility.Kind, _ float64,
	_ int) ([]facility.Facility, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.byKind[kind], nil
}

type fakeGeocoder struct {
	known map[string]geo.Coordinate
	err   error
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (geo.Coordinate, bool, error) {
	if g.err != nil {
		return geo.Coordinate{}, false, g.err
	}
	c, ok := g.known[address]
	return c, ok, nil
}

func fireStation(name string, c geo.Coordinate) facility.Facility {
	return facility.Facility{Name: name, Coord: c, Kind: facility.FireStation, AvailableTrucks: 3, Operational: true}
}

func hospital(name string, c geo.Coordinate) facility.Facility {
	return facility.Facility{Name: name, Coord: c, Kind: facility.Hospital, AvailableAmbulances: 5, Operational: true}
}

func settings() DispatchSettings {
	return DispatchSettings{SearchRadiusM: 5000, MaxResults: 5, AssumedSpeedKmh: 50, Workers: 2}
}

func TestDispatchSelectsPerKind(t *testing.T) {
	e := squareEngine(t)
	locator := &fakeLocator{byKind: map[facility.Kind][]facility.Facility{
		facility.FireStation: {fireStation("Engine 42", coordB), fireStation("Engine 13", coordC)},
		facility.Hospital:    {hospital("Mercy", coordD)},
	}}
	gc := &fakeGeocoder{known: map[string]geo.Coordinate{"1060 W Addison St": coordA}}
	ds := NewDispatchService(zaptest.NewLogger(t), e, locator, gc, nil, settings())

	report, err := ds.Dispatch(context.Background(), DispatchRequest{Address: "1060 W Addison St", WithGeoJSON: true})
	require.NoError(t, err)

	assert.Equal(t, coordA, report.Disaster)
	require.Len(t, report.Outcomes, 2)
	require.Len(t, report.Decisions, 2)

	// equal road distance, the earlier candidate wins
	assert.Equal(t, "Engine 42", report.Decisions[0].StationName)
	assert.Equal(t, "fire", report.Decisions[0].DispatchType)
	assert.InDelta(t, 0.1, report.Decisions[0].DistanceKm, 1e-9)
	assert.Equal(t, "Mercy", report.Decisions[1].StationName)
	assert.Equal(t, "ambulance", report.Decisions[1].DispatchType)
	assert.InDelta(t, 0.2, report.Decisions[1].DistanceKm, 1e-9)

	require.NotNil(t, report.GeoJSON)
	assert.NotEmpty(t, report.GeoJSON.Features)
}

func TestDispatchBlockingStaysPrivate(t *testing.T) {
	e := squareEngine(t)
	locator := &fakeLocator{byKind: map[facility.Kind][]facility.Facility{
		facility.FireStation: {fireStation("Engine 42", coordB)},
	}}
	ds := NewDispatchService(zaptest.NewLogger(t), e, locator, nil, nil, settings())

	report, err := ds.Dispatch(context.Background(), DispatchRequest{
		Location:     &coordA,
		Kinds:        []facility.Kind{facility.FireStation},
		BlockRadiusM: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Blocked.Removed)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].NoResponder())
	assert.Equal(t, dispatch.NoneAvailable, report.Outcomes[0].State)
	rej, ok := report.Outcomes[0].RejectionOf(0)
	require.True(t, ok)
	assert.Equal(t, dispatch.NoRoute, rej.Reason)
	assert.Empty(t, report.Decisions)

	// the session network is untouched
	assert.Equal(t, 8, e.Stats().ActiveEdges)
}

func TestDispatchConstraintsPerKind(t *testing.T) {
	e := squareEngine(t)
	short := fireStation("Engine 13", coordC)
	short.AvailableTrucks = 1
	locator := &fakeLocator{byKind: map[facility.Kind][]facility.Facility{
		facility.FireStation: {short, fireStation("Engine 42", coordB)},
		facility.Hospital:    {hospital("Mercy", coordD)},
	}}
	ds := NewDispatchService(zaptest.NewLogger(t), e, locator, nil, nil, settings())

	report, err := ds.Dispatch(context.Background(), DispatchRequest{
		Location: &coordA,
		Constraints: dispatch.Constraints{
			MinAvailableTrucks:     dispatch.IntPtr(2),
			MinAvailableAmbulances: dispatch.IntPtr(4),
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)

	fire := report.Outcomes[0]
	assert.Equal(t, dispatch.Selected, fire.State)
	assert.Equal(t, "Engine 42", fire.Selected.Facility.Name)
	rej, ok := fire.RejectionOf(0)
	require.True(t, ok)
	assert.Equal(t, dispatch.InsufficientTrucks, rej.Reason)

	// hospitals carry no trucks, the truck minimum does not apply to them
	ambulance := report.Outcomes[1]
	assert.Equal(t, dispatch.Selected, ambulance.State)
	assert.Equal(t, "Mercy", ambulance.Selected.Facility.Name)
	assert.Empty(t, ambulance.Rejections)
	require.Len(t, report.Decisions, 2)
}

func TestDispatchMergesRoster(t *testing.T) {
	e := squareEngine(t)
	locator := &fakeLocator{byKind: map[facility.Kind][]facility.Facility{}}
	stations := &roster.Roster{FireStations: []facility.Facility{fireStation("Engine 78", coordD)}}
	ds := NewDispatchService(zaptest.NewLogger(t), e, locator, nil, func() *roster.Roster { return stations }, settings())

	report, err := ds.Dispatch(context.Background(), DispatchRequest{
		Location: &coordA,
		Kinds:    []facility.Kind{facility.FireStation},
		Weight:   routing.TravelTime,
	})
	require.NoError(t, err)
	require.Len(t, report.Decisions, 1)
	assert.Equal(t, "Engine 78", report.Decisions[0].StationName)
	assert.InDelta(t, 0.2, report.Decisions[0].DistanceKm, 1e-9)
}

func TestDispatchErrors(t *testing.T) {
	invalid := geo.NewCoordinate(91, 0)
	locatorErr := util.WrapErrorf(errors.New("disk"), util.ErrNetworkLoad, "poi lookup")

	tests := []struct {
		name    string
		gc      *fakeGeocoder
		locator *fakeLocator
		req     DispatchRequest
		want    error
	}{
		{"no address or location", nil, &fakeLocator{}, DispatchRequest{}, util.ErrBadParamInput},
		{"invalid location", nil, &fakeLocator{}, DispatchRequest{Location: &invalid}, util.ErrBadParamInput},
		{"geocoding not configured", nil, &fakeLocator{}, DispatchRequest{Address: "x"}, util.ErrBadParamInput},
		{"unknown address", &fakeGeocoder{}, &fakeLocator{}, DispatchRequest{Address: "nowhere"}, util.ErrNotFound},
		{"geocoder down", &fakeGeocoder{err: util.WrapErrorf(nil, util.ErrGeocodeFailure, "503")}, &fakeLocator{},
			DispatchRequest{Address: "x"}, util.ErrGeocodeFailure},
		{"locator failure", nil, &fakeLocator{err: locatorErr}, DispatchRequest{Location: &coordA}, util.ErrNetworkLoad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ds *DispatchService
			if tt.gc == nil {
				ds = NewDispatchService(zaptest.NewLogger(t), squareEngine(t), tt.locator, nil, nil, settings())
			} else {
				ds = NewDispatchService(zaptest.NewLogger(t), squareEngine(t), tt.locator, tt.gc, nil, settings())
			}
			_, err := ds.Dispatch(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDispatchWithoutNetwork(t *testing.T) {
	e := engine.NewEngine(nil, zaptest.NewLogger(t))
	ds := NewDispatchService(zaptest.NewLogger(t), e, &fakeLocator{}, nil, nil, settings())
	_, err := ds.Dispatch(context.Background(), DispatchRequest{Location: &coordA})
	assert.ErrorIs(t, err, util.ErrEmptyGraph)
}

func TestRoutingServiceClose(t *testing.T) {
	tests := []struct {
		name        string
		center      *geo.Coordinate
		radiusM     float64
		points      []geo.Coordinate
		wantRemoved int
		wantActive  int
	}{
		{"area with explicit radius", &coordA, 50, nil, 4, 4},
		{"area with default radius", &coordA, 0, nil, 4, 4},
		{"points only", nil, 0, []geo.Coordinate{coordD}, 4, 4},
		{"area and points", &coordA, 50, []geo.Coordinate{coordD}, 8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := squareEngine(t)
			rs := NewRoutingService(zaptest.NewLogger(t), e, 50)
			res, err := rs.Close(tt.center, tt.radiusM, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, res.Removed)
			assert.Equal(t, tt.wantActive, rs.Stats().ActiveEdges)
		})
	}

	rs := NewRoutingService(zaptest.NewLogger(t), squareEngine(t), 50)
	_, err := rs.Close(nil, 0, nil)
	assert.ErrorIs(t, err, util.ErrBadParamInput)
}

func TestRoutingServiceTraffic(t *testing.T) {
	e := squareEngine(t)
	rs := NewRoutingService(zaptest.NewLogger(t), e, 50)
	ctx := context.Background()

	before, err := rs.ShortestPath(ctx, coordA, coordD, routing.TravelTime)
	require.NoError(t, err)
	assert.InDelta(t, 20, before.TravelTimeS, 1e-9)

	n, err := rs.ApplyTraffic(map[da.EdgeKey]float64{
		da.NewEdgeKey(0, 1, 0): 5,
		da.NewEdgeKey(0, 2, 0): 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	after, err := rs.ShortestPath(ctx, coordA, coordD, routing.TravelTime)
	require.NoError(t, err)
	assert.InDelta(t, 60, after.TravelTimeS, 1e-9)
}
