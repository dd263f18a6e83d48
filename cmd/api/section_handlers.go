package main

import (
	"net/http"
	"slices"

	"github.com/julienschmidt/httprouter"

	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/utils"
)

// selectStopHandler makes a stop the selected point of interest and kicks
// off the section loads. Stops never seen through a route acquisition still
// work: they get a synthesized POI from the stop id.
func (api *restAPI) selectStopHandler(w http.ResponseWriter, r *http.Request) {
	stopID := httprouter.ParamsFromContext(r.Context()).ByName("id")
	if err := utils.ValidateID(stopID); err != nil {
		api.badRequestResponse(w, err.Error())
		return
	}

	poi, ok := api.app.POIForStop(stopID)
	if !ok {
		poi = models.PointOfInterest{
			ID:     "stop_" + stopID,
			Name:   "Stop " + utils.BareCodeID(stopID),
			StopID: stopID,
		}
	}

	api.app.Loader.StartLoad(&poi)
	api.sendResponse(w, http.StatusAccepted, poi)
}

func (api *restAPI) sectionStatesHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, http.StatusOK, map[string]any{
		"selection": api.app.Loader.Current(),
		"sections":  api.app.Loader.SectionStates(),
	})
}

func (api *restAPI) retrySectionHandler(w http.ResponseWriter, r *http.Request) {
	name := models.SectionName(httprouter.ParamsFromContext(r.Context()).ByName("name"))
	if !slices.Contains(models.SectionNames, name) {
		api.badRequestResponse(w, "unknown section")
		return
	}

	api.app.Loader.Retry(name)
	api.sendResponse(w, http.StatusAccepted, nil)
}
