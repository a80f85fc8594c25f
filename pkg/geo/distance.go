package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// Valid reports whether c is a finite lat/lon pair inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = earthRadiusKM * 1000
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance. calculate haversine distance in km
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

func radToDeg(r float64) float64 {
	return 180.0 * r / math.Pi
}

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in km
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusKM

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return radToDeg(lat2), normalizeLongitude(radToDeg(lon2))
}

// BoundingBoxAround returns a lat/lon box that contains every point within radiusM meters of c.
// The box is clamped at the poles and widened to the full longitude range when it would cross them.
func BoundingBoxAround(c Coordinate, radiusM float64) (minLat, minLon, maxLat, maxLon float64) {
	dLat := radToDeg(radiusM / earthRadiusM)
	minLat = math.Max(c.Lat-dLat, -90)
	maxLat = math.Min(c.Lat+dLat, 90)

	cosLat := math.Cos(util.DegreeToRadians(math.Max(math.Abs(minLat), math.Abs(maxLat))))
	if cosLat < 1e-9 || dLat/cosLat >= 180 {
		return minLat, -180, maxLat, 180
	}
	dLon := dLat / cosLat
	return minLat, c.Lon - dLon, maxLat, c.Lon + dLon
}

// Box is a lat/lon rectangle with MinLon <= MaxLon.
type Box struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// SearchBoxesAround is BoundingBoxAround split at the antimeridian, so every returned box lies in
// [-180, 180] longitude. One box is returned unless the circle crosses ±180.
func SearchBoxesAround(c Coordinate, radiusM float64) []Box {
	minLat, minLon, maxLat, maxLon := BoundingBoxAround(c, radiusM)
	switch {
	case minLon < -180:
		return []Box{{minLat, minLon + 360, maxLat, 180}, {minLat, -180, maxLat, maxLon}}
	case maxLon > 180:
		return []Box{{minLat, minLon, maxLat, 180}, {minLat, -180, maxLat, maxLon - 360}}
	}
	return []Box{{minLat, minLon, maxLat, maxLon}}
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
