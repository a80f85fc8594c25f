package controllers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type dispatchAPI struct {
	baseAPI
	dispatchService DispatchService
}

func NewDispatchAPI(dispatchService DispatchService, log *zap.Logger) *dispatchAPI {
	return &dispatchAPI{
		baseAPI:         newBaseAPI(log),
		dispatchService: dispatchService,
	}
}

func (api *dispatchAPI) Routes(group *helper.RouteGroup) {
	group.POST("/dispatch", api.dispatch)
	group.GET("/geocode", api.geocode)
}

func (api *dispatchAPI) dispatch(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request dispatchRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	req, err := request.toDispatchRequest()
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	report, err := api.dispatchService.Dispatch(r.Context(), req)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": report}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *dispatchAPI) geocode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request := geocodeRequest{Address: r.URL.Query().Get("address")}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	coord, err := api.dispatchService.Geocode(r.Context(), request.Address)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": envelope{"address": request.Address, "location": coord}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
