package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
)

/*
BearingTo. initial great circle bearing from a to b in degrees, clockwise from north in [0, 360).
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(a, b Coordinate) float64 {
	dLon := util.DegreeToRadians(b.Lon - a.Lon)

	lat1 := util.DegreeToRadians(a.Lat)
	lat2 := util.DegreeToRadians(b.Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassPoint maps a bearing to one of the 8 principal winds.
func CompassPoint(bearing float64) string {
	i := int(math.Round(math.Mod(bearing+360, 360)/45)) % len(compassPoints)
	return compassPoints[i]
}
