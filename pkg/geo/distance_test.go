package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeodesicDistance(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   Coordinate
		wantM  float64
		tolPct float64
	}{
		{
			name:   "same point",
			a:      NewCoordinate(41.8781, -87.6298),
			b:      NewCoordinate(41.8781, -87.6298),
			wantM:  0,
			tolPct: 0,
		},
		{
			name:   "one degree of latitude",
			a:      NewCoordinate(0, 0),
			b:      NewCoordinate(1, 0),
			wantM:  111195,
			tolPct: 0.1,
		},
		{
			name:   "chicago loop to wrigley field",
			a:      NewCoordinate(41.8781, -87.6298),
			b:      NewCoordinate(41.9484, -87.6553),
			wantM:  8100,
			tolPct: 2,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := GeodesicDistance(tt.a, tt.b)
			assert.InDelta(t, tt.wantM, got, tt.wantM*tt.tolPct/100+1e-6)

			hav := CalculateHaversineDistance(tt.a.Lat, tt.a.Lon, tt.b.Lat, tt.b.Lon) * 1000
			assert.InDelta(t, hav, got, 1.0, "s2 and haversine should agree on a sphere")
		})
	}
}

func TestBoundingBoxAroundContainsCircle(t *testing.T) {
	center := NewCoordinate(41.8781, -87.6298)
	radius := 750.0
	minLat, minLon, maxLat, maxLon := BoundingBoxAround(center, radius)

	for bearing := 0.0; bearing < 360; bearing += 15 {
		lat, lon := GetDestinationPoint(center.Lat, center.Lon, bearing, radius/1000*0.999)
		assert.True(t, lat >= minLat && lat <= maxLat, "bearing %v lat outside box", bearing)
		assert.True(t, lon >= minLon && lon <= maxLon, "bearing %v lon outside box", bearing)
	}
}

func TestSearchBoxesAround(t *testing.T) {
	testCases := []struct {
		name   string
		center Coordinate
		boxes  int
	}{
		{name: "inland", center: NewCoordinate(41.8781, -87.6298), boxes: 1},
		{name: "west of the antimeridian", center: NewCoordinate(0, 179.9999), boxes: 2},
		{name: "east of the antimeridian", center: NewCoordinate(0, -179.9999), boxes: 2},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			boxes := SearchBoxesAround(tt.center, 500)
			require.Len(t, boxes, tt.boxes)
			for _, b := range boxes {
				assert.GreaterOrEqual(t, b.MinLon, -180.0)
				assert.LessOrEqual(t, b.MaxLon, 180.0)
				assert.LessOrEqual(t, b.MinLon, b.MaxLon)
			}
		})
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(38.5, -120.2),
		NewCoordinate(40.7, -120.95),
		NewCoordinate(43.252, -126.453),
	}
	line := PolylineFromCoords(coords)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", line)

	decoded, err := CoordsFromPolyline(line)
	require.NoError(t, err)
	require.Len(t, decoded, len(coords))
	for i := range coords {
		assert.InDelta(t, coords[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, coords[i].Lon, decoded[i].Lon, 1e-5)
	}
}

func TestCentroid(t *testing.T) {
	_, ok := Centroid(nil)
	assert.False(t, ok)

	c, ok := Centroid([]Coordinate{
		NewCoordinate(41.0, -87.0),
		NewCoordinate(41.0, -86.998),
		NewCoordinate(41.002, -86.998),
		NewCoordinate(41.002, -87.0),
	})
	require.True(t, ok)
	assert.True(t, math.Abs(c.Lat-41.001) < 1e-4)
	assert.True(t, math.Abs(c.Lon+86.999) < 1e-4)
}

func TestBearingTo(t *testing.T) {
	origin := NewCoordinate(0, 0)
	testCases := []struct {
		name        string
		to          Coordinate
		wantBearing float64
		wantCompass string
	}{
		{"north", NewCoordinate(1, 0), 0, "N"},
		{"east", NewCoordinate(0, 1), 90, "E"},
		{"south", NewCoordinate(-1, 0), 180, "S"},
		{"west", NewCoordinate(0, -1), 270, "W"},
		{"north east", NewCoordinate(1, 1), 45, "NE"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			b := BearingTo(origin, tt.to)
			assert.InDelta(t, tt.wantBearing, b, 0.1)
			assert.Equal(t, tt.wantCompass, CompassPoint(b))
		})
	}
	assert.Equal(t, "N", CompassPoint(350))
}
