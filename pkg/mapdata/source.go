package mapdata

import (
	"context"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
)

// Tag is an OSM key=value pair, e.g. amenity=hospital.
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string {
	return t.Key + "=" + t.Value
}

// POI is a point of interest as reported by the map source. Name is empty when the feature has
// no name tag. Centroid is nil when no geometry could be resolved.
type POI struct {
	OsmID    int64
	Name     string
	Centroid *geo.Coordinate
	Tags     map[string]string
}

// Source provides road networks and points of interest for a region.
type Source interface {
	LoadNetwork(ctx context.Context, region string, networkType pkg.NetworkType) (*da.Graph, error)
	FindPOIs(ctx context.Context, center geo.Coordinate, radiusM float64, tag Tag) ([]POI, error)
}
