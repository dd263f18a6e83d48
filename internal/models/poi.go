package models

// PointOfInterest is anything the user can select on the map: a transit stop
// seeded from an acquired route, a search result, or a plain place. StopID is
// set only for POIs recognized as transit stops.
type PointOfInterest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	StopID   string  `json:"stopId,omitempty"`
	Category string  `json:"category,omitempty"`
}

func (p PointOfInterest) IsTransitStop() bool {
	return p.StopID != ""
}

// POIFromStop derives the map point of interest for one stop of an acquired
// route.
func POIFromStop(stop StopRecord) PointOfInterest {
	return PointOfInterest{
		ID:     "stop_" + stop.ID,
		Name:   stop.Name,
		Lat:    stop.Lat,
		Lon:    stop.Lon,
		StopID: stop.ID,
	}
}
