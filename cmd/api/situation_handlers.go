package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/situation"
)

type vehicleSituationResponse struct {
	Vehicle   models.VehicleLocation  `json:"vehicle"`
	Situation models.VehicleSituation `json:"situation"`
}

// vehicleSituationsHandler classifies every vehicle on one route entity.
// Stop names resolve through the entity's own branch stops, so the output
// matches what the map already shows.
func (api *restAPI) vehicleSituationsHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	entity := api.app.Registry.GetRoute(id)
	if entity == nil {
		api.notFoundResponse(w)
		return
	}

	stopNames := make(map[string]string)
	for _, branch := range entity.Branches {
		for _, stop := range branch.Stops {
			stopNames[stop.ID] = stop.Name
		}
	}
	resolve := func(stopID string) string { return stopNames[stopID] }

	situations := make([]vehicleSituationResponse, 0, len(entity.Vehicles))
	for _, vehicle := range entity.Vehicles {
		situations = append(situations, vehicleSituationResponse{
			Vehicle:   vehicle,
			Situation: situation.Classify(vehicle, resolve),
		})
	}

	api.sendResponse(w, http.StatusOK, situations)
}
