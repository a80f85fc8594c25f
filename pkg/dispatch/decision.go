package dispatch

import (
	"time"

	"github.com/google/uuid"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
)

type RouteData struct {
	Nodes    []da.Index       `json:"nodes"`
	Coords   []geo.Coordinate `json:"coords"`
	Polyline string           `json:"polyline"`
}

// DispatchDecision is the record handed to whatever layer persists dispatches.
type DispatchDecision struct {
	ID                      uuid.UUID      `json:"id"`
	RequestID               uuid.UUID      `json:"request_id"`
	DispatchType            string         `json:"dispatch_type"`
	StationName             string         `json:"station_name"`
	StationCoord            geo.Coordinate `json:"station_coord"`
	Disaster                geo.Coordinate `json:"disaster"`
	DistanceKm              float64        `json:"distance_km"`
	EstimatedArrivalMinutes float64        `json:"estimated_arrival_minutes"`
	RouteData               RouteData      `json:"route_data"`
	CreatedAt               time.Time      `json:"created_at"`
}

// Decision builds the dispatch record of the selected responder. false when none was selected.
func (o *Outcome) Decision(now time.Time) (DispatchDecision, bool) {
	if o.Selected == nil {
		return DispatchDecision{}, false
	}
	sel := o.Selected
	dispatchType := "fire"
	if sel.Facility.Kind == facility.Hospital {
		dispatchType = "ambulance"
	}
	return DispatchDecision{
		ID:                      uuid.New(),
		RequestID:               o.RequestID,
		DispatchType:            dispatchType,
		StationName:             sel.Facility.Name,
		StationCoord:            sel.Facility.Coord,
		Disaster:                o.Disaster,
		DistanceKm:              sel.DistanceKm,
		EstimatedArrivalMinutes: sel.EstimatedArrivalMinutes,
		RouteData: RouteData{
			Nodes:    sel.Route.Nodes,
			Coords:   sel.Route.Coords,
			Polyline: sel.Route.Polyline,
		},
		CreatedAt: now,
	}, true
}
