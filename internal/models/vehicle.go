package models

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// VehicleLocation is one observed (or scheduled) vehicle position on a route.
// The stop-offset fields are pointers because the provider frequently omits
// them; a nil offset is meaningfully different from zero seconds.
type VehicleLocation struct {
	VehicleID             string   `json:"vehicleId"`
	RouteID               string   `json:"routeId"`
	Lat                   float64  `json:"lat"`
	Lon                   float64  `json:"lon"`
	Heading               *float64 `json:"heading,omitempty"`
	TripID                string   `json:"tripId,omitempty"`
	Headsign              string   `json:"headsign,omitempty"`
	Predicted             bool     `json:"predicted"`
	NextStopID            string   `json:"nextStopId,omitempty"`
	NextStopTimeOffset    *int     `json:"nextStopTimeOffset,omitempty"`
	ClosestStopID         string   `json:"closestStopId,omitempty"`
	ClosestStopTimeOffset *int     `json:"closestStopTimeOffset,omitempty"`
	ScheduleDeviation     *int     `json:"scheduleDeviation,omitempty"`
	LastUpdateTime        int64    `json:"lastUpdateTime,omitempty"`
}
