package models

import "time"

// RouteType follows the GTFS route_type vocabulary.
type RouteType int

const (
	RouteTypeTram   RouteType = 0
	RouteTypeSubway RouteType = 1
	RouteTypeRail   RouteType = 2
	RouteTypeBus    RouteType = 3
	RouteTypeFerry  RouteType = 4
)

// RouteInfo is the provider's summary of a route, carried unchanged on the
// entity that wraps it.
type RouteInfo struct {
	ID          string    `json:"id"`
	AgencyID    string    `json:"agencyId"`
	ShortName   string    `json:"shortName"`
	LongName    string    `json:"longName"`
	Description string    `json:"description"`
	Type        RouteType `json:"type"`
	Color       string    `json:"color"`
	TextColor   string    `json:"textColor"`
}

func NewRouteInfo(id, agencyID, shortName, longName, description string, routeType RouteType, color, textColor string) RouteInfo {
	return RouteInfo{
		ID:          id,
		AgencyID:    agencyID,
		ShortName:   shortName,
		LongName:    longName,
		Description: description,
		Type:        routeType,
		Color:       color,
		TextColor:   textColor,
	}
}

// Polyline is one independently drawable piece of a branch's path geometry,
// carried opaquely as an encoded point string.
type Polyline struct {
	Length int    `json:"length"`
	Levels string `json:"levels"`
	Points string `json:"points"`
}

// Branch is a directional variant of a route (one headsign) with its own
// ordered stop sequence and drawable geometry segments.
type Branch struct {
	Name     string       `json:"name"`
	Headsign string       `json:"headsign"`
	Segments []Polyline   `json:"segments"`
	Stops    []StopRecord `json:"stops"`
}

// RouteEntity is the registry's view-model wrapper around one acquired route.
// The ID is stable per acquisition, not per provider route id, so the same
// provider route can be re-added as a fresh entity.
type RouteEntity struct {
	ID                   string            `json:"id"`
	Info                 RouteInfo         `json:"info"`
	Branches             []Branch          `json:"branches"`
	SelectedSegmentIndex int               `json:"selectedSegmentIndex"`
	Vehicles             []VehicleLocation `json:"vehicles,omitempty"`
	Schedule             []ScheduleEntry   `json:"schedule,omitempty"`
	IsActive             bool              `json:"isActive"`
	IsFavorite           bool              `json:"isFavorite"`
	CreatedAt            time.Time         `json:"createdAt"`
	LastAccessed         time.Time         `json:"lastAccessed"`
}

// SegmentCount returns the number of drawable segments across all branches.
// The selected segment index addresses this concatenated sequence.
func (e *RouteEntity) SegmentCount() int {
	count := 0
	for _, b := range e.Branches {
		count += len(b.Segments)
	}
	return count
}

// SegmentIndexBound is the exclusive upper bound for the selected segment
// index. Branches without geometry still count: selecting a branch's only
// segment and selecting the branch itself are the same gesture, so the
// bound never drops below the branch count.
func (e *RouteEntity) SegmentIndexBound() int {
	if n := len(e.Branches); n > e.SegmentCount() {
		return n
	}
	return e.SegmentCount()
}

// BranchIndexForStop returns the index of the first branch, in provider
// order, whose stop list contains stopID, or -1 when no branch does. When a
// stop appears in multiple branches the first match wins.
func (e *RouteEntity) BranchIndexForStop(stopID string) int {
	for i, branch := range e.Branches {
		for _, stop := range branch.Stops {
			if stop.ID == stopID {
				return i
			}
		}
	}
	return -1
}
