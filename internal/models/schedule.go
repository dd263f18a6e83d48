package models

// StopTimeInstance is a single stop visit within a trip, resolved to epoch
// milliseconds on a concrete service date.
type StopTimeInstance struct {
	StopID        string `json:"stopId"`
	ArrivalTime   int64  `json:"arrivalTime"`
	DepartureTime int64  `json:"departureTime"`
}

// ScheduleEntry is one trip's static schedule as attached to a route entity
// by the schedule enrichment.
type ScheduleEntry struct {
	TripID       string             `json:"tripId"`
	RouteID      string             `json:"routeId"`
	ServiceID    string             `json:"serviceId"`
	TripHeadsign string             `json:"tripHeadsign"`
	StopTimes    []StopTimeInstance `json:"stopTimes"`
}

func NewScheduleEntry(tripID, routeID, serviceID, tripHeadsign string, stopTimes []StopTimeInstance) ScheduleEntry {
	return ScheduleEntry{
		TripID:       tripID,
		RouteID:      routeID,
		ServiceID:    serviceID,
		TripHeadsign: tripHeadsign,
		StopTimes:    stopTimes,
	}
}
