package models

// StopRecord describes one transit stop as served by the provider.
type StopRecord struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Code               string   `json:"code"`
	Lat                float64  `json:"lat"`
	Lon                float64  `json:"lon"`
	Direction          string   `json:"direction,omitempty"`
	RouteIDs           []string `json:"routeIds"`
	WheelchairBoarding string   `json:"wheelchairBoarding,omitempty"`
}

func NewStopRecord(id, name, code string, lat, lon float64, direction string, routeIDs []string, wheelchairBoarding string) StopRecord {
	return StopRecord{
		ID:                 id,
		Name:               name,
		Code:               code,
		Lat:                lat,
		Lon:                lon,
		Direction:          direction,
		RouteIDs:           routeIDs,
		WheelchairBoarding: wheelchairBoarding,
	}
}
