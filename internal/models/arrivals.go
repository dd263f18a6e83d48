package models

// Arrival is one flattened upcoming stop visit, uniform across routes and
// trips. PredictedArrivalTime is zero when no real-time prediction exists.
type Arrival struct {
	RouteID              string `json:"routeId"`
	RouteShortName       string `json:"routeShortName"`
	TripID               string `json:"tripId"`
	StopID               string `json:"stopId"`
	ScheduledArrivalTime int64  `json:"scheduledArrivalTime"`
	PredictedArrivalTime int64  `json:"predictedArrivalTime,omitempty"`
}

// EffectiveArrivalTime is the predicted time when present, else the
// scheduled time. Sorting and horizon filtering use this value.
func (a Arrival) EffectiveArrivalTime() int64 {
	if a.PredictedArrivalTime > 0 {
		return a.PredictedArrivalTime
	}
	return a.ScheduledArrivalTime
}

// StopArrivals pairs a stop's identity with its upcoming arrivals. A stop
// whose schedule could not be parsed still gets a StopArrivals with an empty
// list so the panel can render the stop itself.
type StopArrivals struct {
	Stop     StopRecord `json:"stop"`
	Arrivals []Arrival  `json:"arrivals"`
}
