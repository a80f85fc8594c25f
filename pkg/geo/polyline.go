package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes coords with the google polyline algorithm (precision 5).
func PolylineFromCoords(coords []Coordinate) string {
	pts := make([][]float64, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(pts))
}

func CoordsFromPolyline(line string) ([]Coordinate, error) {
	pts, _, err := polyline.DecodeCoords([]byte(line))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, 0, len(pts))
	for _, p := range pts {
		coords = append(coords, NewCoordinate(p[0], p[1]))
	}
	return coords, nil
}
