package controllers

import (
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/dispatch"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/usecases"
)

type coordinateDTO struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

func (c coordinateDTO) toCoordinate() geo.Coordinate {
	return geo.NewCoordinate(c.Lat, c.Lon)
}

type shortestPathRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"min=-180,max=180"`
	Weight         string  `json:"weight" validate:"omitempty,oneof=length travel_time"`
}

type shortestPathResponse struct {
	Status      routing.RouteStatus `json:"status"`
	DistanceKm  float64             `json:"distance_km"`
	TravelTimeS float64             `json:"travel_time_s"`
	Path        string              `json:"path"`
	Nodes       []da.Index          `json:"nodes"`
}

func NewShortestPathResponse(res routing.RouteResult) shortestPathResponse {
	nodes := res.Nodes
	if nodes == nil {
		nodes = []da.Index{}
	}
	return shortestPathResponse{
		Status:      res.Status,
		DistanceKm:  res.DistanceKm(),
		TravelTimeS: res.TravelTimeS,
		Path:        res.Polyline,
		Nodes:       nodes,
	}
}

type closureRequest struct {
	Center  *coordinateDTO  `json:"center" validate:"omitempty"`
	RadiusM float64         `json:"radius_m" validate:"gte=0"`
	Points  []coordinateDTO `json:"points" validate:"dive"`
}

type trafficMultiplierDTO struct {
	From       da.Index `json:"from"`
	To         da.Index `json:"to"`
	Key        uint16   `json:"key"`
	Multiplier float64  `json:"multiplier" validate:"gt=0"`
}

type trafficRequest struct {
	Multipliers []trafficMultiplierDTO `json:"multipliers" validate:"required,min=1,dive"`
}

type dispatchRequest struct {
	Address      string               `json:"address" validate:"required_without=Location,max=512"`
	Location     *coordinateDTO       `json:"location" validate:"omitempty"`
	Kinds        []string             `json:"kinds" validate:"dive,oneof=fire_station fire hospital ambulance"`
	Constraints  dispatch.Constraints `json:"constraints"`
	Exclude      []facility.Facility  `json:"exclude"`
	BlockRadiusM float64              `json:"block_radius_m" validate:"gte=0"`
	Weight       string               `json:"weight" validate:"omitempty,oneof=length travel_time"`
	GeoJSON      bool                 `json:"geojson"`
}

func (req dispatchRequest) toDispatchRequest() (usecases.DispatchRequest, error) {
	out := usecases.DispatchRequest{
		Address:      req.Address,
		Constraints:  req.Constraints,
		Exclude:      req.Exclude,
		BlockRadiusM: req.BlockRadiusM,
		WithGeoJSON:  req.GeoJSON,
	}
	if req.Location != nil {
		loc := req.Location.toCoordinate()
		out.Location = &loc
	}
	for _, k := range req.Kinds {
		kind, err := facility.ParseKind(k)
		if err != nil {
			return out, err
		}
		out.Kinds = append(out.Kinds, kind)
	}
	weight, err := routing.ParseWeightKind(req.Weight)
	if err != nil {
		return out, err
	}
	out.Weight = weight
	return out, nil
}

type geocodeRequest struct {
	Address string `json:"address" validate:"required,max=512"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
