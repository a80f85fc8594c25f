package geo

import (
	"github.com/golang/geo/s2"
)

// GeodesicDistance returns the great-circle distance between a and b in meters.
func GeodesicDistance(a, b Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * earthRadiusM
}

// GeodesicDistanceKm. same as GeodesicDistance, in km
func GeodesicDistanceKm(a, b Coordinate) float64 {
	return GeodesicDistance(a, b) / 1000
}

// Centroid returns the spherical centroid of coords, used for facility polygons.
func Centroid(coords []Coordinate) (Coordinate, bool) {
	if len(coords) == 0 {
		return Coordinate{}, false
	}
	var sum s2.Point
	for _, c := range coords {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
		sum = s2.Point{Vector: sum.Add(p.Vector)}
	}
	if sum.Norm() == 0 {
		return coords[0], true
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees()), true
}
