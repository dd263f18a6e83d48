package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"transitview.onebusaway.org/internal/app"
)

type restAPI struct {
	app *app.Application
}

func (api *restAPI) routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/routes", api.listRoutesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/routes", api.addRouteHandler)
	router.HandlerFunc(http.MethodGet, "/v1/routes/active", api.activeRouteHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/routes/:id", api.deleteRouteHandler)
	router.HandlerFunc(http.MethodPost, "/v1/routes/:id/select", api.selectRouteHandler)
	router.HandlerFunc(http.MethodPost, "/v1/routes/:id/segment", api.selectSegmentHandler)
	router.HandlerFunc(http.MethodPost, "/v1/selection/clear", api.clearSelectionHandler)

	router.HandlerFunc(http.MethodPost, "/v1/stops/:id/select", api.selectStopHandler)
	router.HandlerFunc(http.MethodGet, "/v1/sections", api.sectionStatesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/sections/:name/retry", api.retrySectionHandler)

	// Registered outside /v1/routes: httprouter rejects a wildcard segment
	// alongside the static /v1/routes/active.
	router.HandlerFunc(http.MethodGet, "/v1/situations/:id", api.vehicleSituationsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/nearby", api.nearbyTransitHandler)

	router.Handler(http.MethodGet, "/metrics", api.app.Metrics.Handler())

	return router
}
