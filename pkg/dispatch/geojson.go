package dispatch

import (
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders the disaster and the ranked routes of every outcome for map display.
// Each route is a LineString with its station as a Point, the selected route is flagged.
func FeatureCollection(disaster geo.Coordinate, outcomes ...*Outcome) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	site := geojson.NewFeature(orb.Point{disaster.Lon, disaster.Lat})
	site.Properties["type"] = "disaster"
	site.Properties["title"] = "DISASTER LOCATION"
	fc.Append(site)

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		routeType, stationType := "fire_route", "fire_station"
		if o.Kind == facility.Hospital {
			routeType, stationType = "ambulance_route", "hospital"
		}

		for _, sel := range o.Ranked {
			line := make(orb.LineString, 0, len(sel.Route.Coords))
			for _, c := range sel.Route.Coords {
				line = append(line, orb.Point{c.Lon, c.Lat})
			}
			route := geojson.NewFeature(line)
			route.Properties["type"] = routeType
			route.Properties["selected"] = sel.Selected
			route.Properties["station_name"] = sel.Facility.Name
			route.Properties["distance_km"] = sel.DistanceKm
			route.Properties["estimated_arrival_minutes"] = sel.EstimatedArrivalMinutes
			bearing := geo.BearingTo(sel.Facility.Coord, disaster)
			route.Properties["bearing_deg"] = bearing
			route.Properties["heading"] = geo.CompassPoint(bearing)
			fc.Append(route)

			station := geojson.NewFeature(orb.Point{sel.Facility.Coord.Lon, sel.Facility.Coord.Lat})
			station.Properties["type"] = stationType
			station.Properties["title"] = sel.Facility.Name
			station.Properties["selected"] = sel.Selected
			fc.Append(station)
		}
	}
	return fc
}
