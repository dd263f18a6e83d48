package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"transitview.onebusaway.org/internal/provider"
)

func (api *restAPI) listRoutesHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, http.StatusOK, api.app.Registry.GetAllRoutes())
}

func (api *restAPI) activeRouteHandler(w http.ResponseWriter, r *http.Request) {
	active := api.app.Registry.GetActiveRoute()
	if active == nil {
		api.notFoundResponse(w)
		return
	}
	api.sendResponse(w, http.StatusOK, active)
}

type addRouteRequest struct {
	RouteID string `json:"routeId"`
	StopID  string `json:"stopId,omitempty"`
}

func (api *restAPI) addRouteHandler(w http.ResponseWriter, r *http.Request) {
	var input addRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.badRequestResponse(w, "malformed request body")
		return
	}
	if input.RouteID == "" {
		api.badRequestResponse(w, "routeId is required")
		return
	}

	var (
		entityID string
		err      error
	)
	if input.StopID != "" {
		entityID, err = api.app.Controller.AddRouteFromStop(r.Context(), input.RouteID, input.StopID)
	} else {
		entityID, err = api.app.Controller.AddRoute(r.Context(), input.RouteID)
	}
	if err != nil {
		if errors.Is(err, provider.ErrRouteNotFound) {
			api.notFoundResponse(w)
			return
		}
		api.serverErrorResponse(w, err)
		return
	}

	api.sendResponse(w, http.StatusCreated, api.app.Registry.GetRoute(entityID))
}

func (api *restAPI) deleteRouteHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	if api.app.Registry.GetRoute(id) == nil {
		api.notFoundResponse(w)
		return
	}
	api.app.Registry.DeleteRoute(id)
	api.sendResponse(w, http.StatusOK, nil)
}

func (api *restAPI) selectRouteHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	if api.app.Registry.GetRoute(id) == nil {
		api.notFoundResponse(w)
		return
	}
	api.app.Controller.SelectRoute(id)
	api.sendResponse(w, http.StatusOK, api.app.Registry.GetActiveRoute())
}

func (api *restAPI) clearSelectionHandler(w http.ResponseWriter, r *http.Request) {
	api.app.Controller.ClearRouteSelection()
	api.sendResponse(w, http.StatusOK, nil)
}

type selectSegmentRequest struct {
	Index int `json:"index"`
}

func (api *restAPI) selectSegmentHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	var input selectSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.badRequestResponse(w, "malformed request body")
		return
	}
	if !api.app.Controller.SelectSegment(id, input.Index) {
		api.notFoundResponse(w)
		return
	}

	api.sendResponse(w, http.StatusOK, map[string]int{
		"selectedSegmentIndex": api.app.Controller.SelectedSegmentIndex(id),
	})
}

func (api *restAPI) nearbyTransitHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.badRequestResponse(w, "lat is required")
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.badRequestResponse(w, "lon is required")
		return
	}
	radius := 0.0
	if raw := query.Get("radius"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			api.badRequestResponse(w, "radius must be a number")
			return
		}
	}

	nearby, err := api.app.Provider.FindNearbyTransit(r.Context(), lat, lon, radius)
	if err != nil {
		api.badRequestResponse(w, err.Error())
		return
	}
	api.sendResponse(w, http.StatusOK, nearby)
}
