package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	helper "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	baseAPI
	routingService RoutingService
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		baseAPI:        newBaseAPI(log),
		routingService: routingService,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/route", api.shortestPath)
	group.POST("/closures", api.closeRoads)
	group.POST("/traffic", api.applyTraffic)
	group.GET("/network", api.networkStats)
	group.POST("/network/reload", api.reloadNetwork)
}

func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathRequest
		err     error
	)

	query := r.URL.Query()

	request.OriginLat, err = strconv.ParseFloat(query.Get("origin_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_lat is required and must be a valid float"))
		return
	}
	request.OriginLon, err = strconv.ParseFloat(query.Get("origin_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_lon is required and must be a valid float"))
		return
	}
	request.DestinationLat, err = strconv.ParseFloat(query.Get("destination_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_lat is required and must be a valid float"))
		return
	}
	request.DestinationLon, err = strconv.ParseFloat(query.Get("destination_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_lon is required and must be a valid float"))
		return
	}
	request.Weight = query.Get("weight")

	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	weight, err := routing.ParseWeightKind(request.Weight)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.routingService.ShortestPath(r.Context(),
		geo.NewCoordinate(request.OriginLat, request.OriginLon),
		geo.NewCoordinate(request.DestinationLat, request.DestinationLon), weight)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(res)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *routingAPI) closeRoads(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request closureRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	var center *geo.Coordinate
	if request.Center != nil {
		c := request.Center.toCoordinate()
		center = &c
	}
	points := make([]geo.Coordinate, 0, len(request.Points))
	for _, pt := range request.Points {
		points = append(points, pt.toCoordinate())
	}

	res, err := api.routingService.Close(center, request.RadiusM, points)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": res}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *routingAPI) applyTraffic(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request trafficRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	multipliers := make(map[da.EdgeKey]float64, len(request.Multipliers))
	for _, m := range request.Multipliers {
		multipliers[da.NewEdgeKey(m.From, m.To, m.Key)] = m.Multiplier
	}

	scaled, err := api.routingService.ApplyTraffic(multipliers)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": envelope{"scaled_edges": scaled}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *routingAPI) networkStats(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": api.routingService.Stats()}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *routingAPI) reloadNetwork(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	stats, err := api.routingService.Reload(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": stats}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
