// Package provider defines the engine's view of the transit information
// feed and the place enrichment services. Everything behind these interfaces
// is an external collaborator; the engine never talks to the network
// directly.
package provider

import (
	"context"

	"transitview.onebusaway.org/internal/models"
)

// RouteDetails is the full structured detail for one route: the provider
// summary plus every directional branch with its stops and geometry.
type RouteDetails struct {
	Info     models.RouteInfo
	Branches []models.Branch
}

// TripStopTime is one trip's visit to the requested stop within a stop
// schedule payload. PredictedArrivalTime is zero when no real-time
// prediction exists.
type TripStopTime struct {
	TripID               string
	ServiceID            string
	ArrivalTime          int64
	DepartureTime        int64
	PredictedArrivalTime int64
}

// DirectionSchedule groups a route's stop times by trip headsign.
type DirectionSchedule struct {
	TripHeadsign string
	StopTimes    []TripStopTime
}

// RouteSchedule is the per-route grouping inside a stop schedule entry.
type RouteSchedule struct {
	RouteID            string
	DirectionSchedules []DirectionSchedule
}

// StopScheduleEntry is the nested per-route, per-direction, per-trip stop
// time payload for one stop on one service date.
type StopScheduleEntry struct {
	StopID         string
	Date           int64
	RouteSchedules []RouteSchedule
}

// StopSchedule pairs a stop schedule entry with the agency/route reference
// data needed to render it.
type StopSchedule struct {
	Entry      StopScheduleEntry
	References models.References
}

// NearbyTransit is the result of a radius search around a coordinate.
type NearbyTransit struct {
	Stops          []models.StopRecord
	Routes         []models.RouteInfo
	SearchLocation models.Location
}

// Provider is the transit feed consumed by the engine. All calls are
// blocking and context-aware; implementations own their own transport.
type Provider interface {
	// FetchRouteDetails returns full route detail, or an error wrapping
	// ErrRouteNotFound when the provider has no such route.
	FetchRouteDetails(ctx context.Context, routeID string) (RouteDetails, error)

	// FetchVehiclesForRoute returns current vehicle positions for a route.
	FetchVehiclesForRoute(ctx context.Context, routeID string) ([]models.VehicleLocation, error)

	// FetchStopSchedule returns the nested schedule payload for a stop, or
	// an error wrapping ErrStopNotFound.
	FetchStopSchedule(ctx context.Context, stopID string) (StopSchedule, error)

	// FetchRouteSchedule returns the raw per-trip schedule groupings for a
	// route.
	FetchRouteSchedule(ctx context.Context, routeID string) ([]models.ScheduleEntry, error)

	// FindNearbyTransit returns stops and routes within radiusMeters of the
	// given coordinate.
	FindNearbyTransit(ctx context.Context, lat, lon, radiusMeters float64) (NearbyTransit, error)
}

// Enricher supplies the non-transit detail sections: opening hours, nearby
// places, and photos.
type Enricher interface {
	ParseOpeningHours(raw string) (models.HoursInfo, error)
	FindMatchingPOI(ctx context.Context, name string, lat, lon float64) (*models.HoursInfo, error)
	FetchPOIData(ctx context.Context, lat, lon, radiusMeters float64) ([]models.NearbyPlace, error)
	FetchPhotos(ctx context.Context, name string, lat, lon float64) ([]models.Photo, error)
}
