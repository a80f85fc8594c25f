package osmparser

import (
	"context"
	"strings"
	"testing"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const smallTown = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="41.0" lon="-87.0"/>
  <node id="2" lat="41.0009" lon="-87.0"/>
  <node id="3" lat="41.0018" lon="-87.0"/>
  <node id="4" lat="41.0009" lon="-86.9988"/>
  <node id="5" lat="41.0005" lon="-87.0005">
    <tag k="amenity" v="fire_station"/>
    <tag k="name" v="Engine 1"/>
  </node>
  <node id="6" lat="41.002" lon="-86.999"/>
  <node id="7" lat="41.002" lon="-86.998"/>
  <node id="8" lat="41.003" lon="-86.998"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="11">
    <nd ref="2"/>
    <nd ref="4"/>
    <tag k="highway" v="residential"/>
    <tag k="oneway" v="yes"/>
    <tag k="maxspeed" v="30 mph"/>
  </way>
  <way id="12">
    <nd ref="3"/>
    <nd ref="4"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="13">
    <nd ref="6"/>
    <nd ref="7"/>
    <nd ref="8"/>
    <nd ref="6"/>
    <tag k="amenity" v="hospital"/>
    <tag k="building" v="yes"/>
  </way>
</osm>`

const gatedStreet = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="41.0" lon="-87.0"/>
  <node id="2" lat="41.0009" lon="-87.0">
    <tag k="barrier" v="gate"/>
    <tag k="access" v="no"/>
  </node>
  <node id="3" lat="41.0018" lon="-87.0"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
  </way>
</osm>`

func parse(t *testing.T, doc string, networkType pkg.NetworkType) (*datastructure.Graph, []PointOfInterest) {
	t.Helper()
	p := NewOSMParser(networkType, zap.NewNop())
	g, pois, err := p.Parse(context.Background(), strings.NewReader(doc), XMLScanner)
	require.NoError(t, err)
	return g, pois
}

func outNeighbours(g *datastructure.Graph, u datastructure.Index) []datastructure.Index {
	res := []datastructure.Index{}
	g.ForOutEdgesOf(u, func(e *datastructure.Edge) {
		res = append(res, e.GetHead())
	})
	return res
}

func TestParseDriveNetwork(t *testing.T) {
	g, pois := parse(t, smallTown, pkg.NETWORK_DRIVE)

	// vertices in order of first appearance: osm 1, 2, 3, 4
	assert.Equal(t, 4, g.NumberOfVertices())
	assert.Equal(t, 5, g.NumberOfEdges())

	osmIDs := []int64{}
	g.ForVertices(func(v *datastructure.Vertex) {
		osmIDs = append(osmIDs, v.GetOsmID())
	})
	assert.Equal(t, []int64{1, 2, 3, 4}, osmIDs)

	assert.Equal(t, []datastructure.Index{1}, outNeighbours(g, 0))
	assert.Equal(t, []datastructure.Index{0, 2, 3}, outNeighbours(g, 1))
	// the oneway and the footway give osm node 4 no way out
	assert.Empty(t, outNeighbours(g, 3))

	e, ok := g.GetEdge(datastructure.NewEdgeKey(0, 1, 0))
	require.True(t, ok)
	wantLen := geo.CalculateHaversineDistance(41.0, -87.0, 41.0009, -87.0) * 1000
	assert.InDelta(t, wantLen, e.GetLength(), 1e-6)
	assert.InDelta(t, wantLen/(30/3.6), e.GetTravelTime(), 1e-6)

	oneway, ok := g.GetEdge(datastructure.NewEdgeKey(1, 3, 0))
	require.True(t, ok)
	assert.InDelta(t, oneway.GetLength()/(30*1.60934/3.6), oneway.GetTravelTime(), 1e-6)

	require.Len(t, pois, 2)
	assert.Equal(t, int64(5), pois[0].OsmID)
	assert.Equal(t, "Engine 1", pois[0].Name)
	assert.True(t, pois[0].HasTag("amenity", "fire_station"))
	require.NotNil(t, pois[0].Centroid)
	assert.InDelta(t, 41.0005, pois[0].Centroid.Lat, 1e-9)

	assert.Equal(t, int64(13), pois[1].OsmID)
	assert.Equal(t, "", pois[1].Name)
	require.NotNil(t, pois[1].Centroid)
	assert.InDelta(t, (41.002+41.002+41.003)/3, pois[1].Centroid.Lat, 1e-4)
	assert.InDelta(t, (-86.999-86.998-86.998)/3, pois[1].Centroid.Lon, 1e-4)
}

func TestParseWalkNetwork(t *testing.T) {
	g, _ := parse(t, smallTown, pkg.NETWORK_WALK)

	assert.Equal(t, 4, g.NumberOfVertices())
	// every way is walkable in both directions
	assert.Equal(t, 8, g.NumberOfEdges())

	e, ok := g.GetEdge(datastructure.NewEdgeKey(0, 1, 0))
	require.True(t, ok)
	assert.InDelta(t, e.GetLength()/(WALKING_SPEED_KMH/3.6), e.GetTravelTime(), 1e-6)
}

func TestParseBarrierSplitsStreet(t *testing.T) {
	g, _ := parse(t, gatedStreet, pkg.NETWORK_DRIVE)

	// the gate is duplicated so each side ends at its own copy
	assert.Equal(t, 4, g.NumberOfVertices())
	assert.Equal(t, 4, g.NumberOfEdges())
	assert.Equal(t, []datastructure.Index{1}, outNeighbours(g, 0))
	assert.Equal(t, []datastructure.Index{0}, outNeighbours(g, 1))

	gate, err := g.GetVertex(1)
	require.NoError(t, err)
	gateCopy, err := g.GetVertex(2)
	require.NoError(t, err)
	assert.Equal(t, gate.GetCoordinate(), gateCopy.GetCoordinate())
}

func TestParseMaxSpeed(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOk bool
	}{
		{"50", 50, true},
		{"50 km/h", 50, true},
		{"30 mph", 30 * 1.60934, true},
		{"10 knots", 18.52, true},
		{"40;60", 40, true},
		{"", 0, false},
		{"signals", 0, false},
		{"-5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMaxSpeed(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLoadNodeLinkJSON(t *testing.T) {
	doc := `{"graph": {
	  "nodes": [{"id": 100, "x": -87.0, "y": 41.0}, {"id": "200", "x": -87.0, "y": 41.0009}],
	  "links": [
	    {"source": 100, "target": 200, "length": 100, "travel_time": 12},
	    {"source": 200, "target": 100, "length": 100, "maxspeed": "36 km/h"},
	    {"source": 200, "target": 100, "length": 90}
	  ]}}`

	g, err := LoadNodeLinkJSON(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumberOfVertices())
	assert.Equal(t, 3, g.NumberOfEdges())

	v, err := g.GetVertex(0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v.GetOsmID())
	assert.Equal(t, 41.0, v.GetLat())
	assert.Equal(t, -87.0, v.GetLon())

	e, _ := g.GetEdge(datastructure.NewEdgeKey(0, 1, 0))
	assert.Equal(t, 12.0, e.GetTravelTime())
	e, _ = g.GetEdge(datastructure.NewEdgeKey(1, 0, 0))
	assert.InDelta(t, 10.0, e.GetTravelTime(), 1e-9)
	e, _ = g.GetEdge(datastructure.NewEdgeKey(1, 0, 1))
	assert.InDelta(t, 90/(pkg.DEFAULT_ROAD_SPEED_KMH/3.6), e.GetTravelTime(), 1e-9)
}

func TestLoadNodeLinkJSONRejectsUnknownNode(t *testing.T) {
	doc := `{"graph": {"nodes": [{"id": 1, "x": 0, "y": 0}], "links": [{"source": 1, "target": 2, "length": 5}]}}`
	_, err := LoadNodeLinkJSON(strings.NewReader(doc), zap.NewNop())
	assert.Error(t, err)
}
