package provider

import (
	"context"
	"fmt"

	"transitview.onebusaway.org/internal/models"
)

// Mock is a function-field Provider and Enricher for tests and offline
// wiring. Unset fields behave like an empty provider: lookups miss, lists
// come back empty.
type Mock struct {
	FetchRouteDetailsFunc     func(ctx context.Context, routeID string) (RouteDetails, error)
	FetchVehiclesForRouteFunc func(ctx context.Context, routeID string) ([]models.VehicleLocation, error)
	FetchStopScheduleFunc     func(ctx context.Context, stopID string) (StopSchedule, error)
	FetchRouteScheduleFunc    func(ctx context.Context, routeID string) ([]models.ScheduleEntry, error)
	FindNearbyTransitFunc     func(ctx context.Context, lat, lon, radiusMeters float64) (NearbyTransit, error)

	ParseOpeningHoursFunc func(raw string) (models.HoursInfo, error)
	FindMatchingPOIFunc   func(ctx context.Context, name string, lat, lon float64) (*models.HoursInfo, error)
	FetchPOIDataFunc      func(ctx context.Context, lat, lon, radiusMeters float64) ([]models.NearbyPlace, error)
	FetchPhotosFunc       func(ctx context.Context, name string, lat, lon float64) ([]models.Photo, error)
}

var (
	_ Provider = (*Mock)(nil)
	_ Enricher = (*Mock)(nil)
)

func (m *Mock) FetchRouteDetails(ctx context.Context, routeID string) (RouteDetails, error) {
	if m.FetchRouteDetailsFunc != nil {
		return m.FetchRouteDetailsFunc(ctx, routeID)
	}
	return RouteDetails{}, fmt.Errorf("route %s: %w", routeID, ErrRouteNotFound)
}

func (m *Mock) FetchVehiclesForRoute(ctx context.Context, routeID string) ([]models.VehicleLocation, error) {
	if m.FetchVehiclesForRouteFunc != nil {
		return m.FetchVehiclesForRouteFunc(ctx, routeID)
	}
	return []models.VehicleLocation{}, nil
}

func (m *Mock) FetchStopSchedule(ctx context.Context, stopID string) (StopSchedule, error) {
	if m.FetchStopScheduleFunc != nil {
		return m.FetchStopScheduleFunc(ctx, stopID)
	}
	return StopSchedule{}, fmt.Errorf("stop %s: %w", stopID, ErrStopNotFound)
}

func (m *Mock) FetchRouteSchedule(ctx context.Context, routeID string) ([]models.ScheduleEntry, error) {
	if m.FetchRouteScheduleFunc != nil {
		return m.FetchRouteScheduleFunc(ctx, routeID)
	}
	return []models.ScheduleEntry{}, nil
}

func (m *Mock) FindNearbyTransit(ctx context.Context, lat, lon, radiusMeters float64) (NearbyTransit, error) {
	if m.FindNearbyTransitFunc != nil {
		return m.FindNearbyTransitFunc(ctx, lat, lon, radiusMeters)
	}
	return NearbyTransit{SearchLocation: models.Location{Lat: lat, Lon: lon}}, nil
}

func (m *Mock) ParseOpeningHours(raw string) (models.HoursInfo, error) {
	if m.ParseOpeningHoursFunc != nil {
		return m.ParseOpeningHoursFunc(raw)
	}
	return models.HoursInfo{Raw: raw}, nil
}

func (m *Mock) FindMatchingPOI(ctx context.Context, name string, lat, lon float64) (*models.HoursInfo, error) {
	if m.FindMatchingPOIFunc != nil {
		return m.FindMatchingPOIFunc(ctx, name, lat, lon)
	}
	return nil, nil
}

func (m *Mock) FetchPOIData(ctx context.Context, lat, lon, radiusMeters float64) ([]models.NearbyPlace, error) {
	if m.FetchPOIDataFunc != nil {
		return m.FetchPOIDataFunc(ctx, lat, lon, radiusMeters)
	}
	return []models.NearbyPlace{}, nil
}

func (m *Mock) FetchPhotos(ctx context.Context, name string, lat, lon float64) ([]models.Photo, error) {
	if m.FetchPhotosFunc != nil {
		return m.FetchPhotosFunc(ctx, name, lat, lon)
	}
	return []models.Photo{}, nil
}
