// Package app wires the engine's components into one dependency bundle for
// the HTTP layer and tests.
package app

import (
	"log/slog"
	"sync"

	"transitview.onebusaway.org/internal/cache"
	"transitview.onebusaway.org/internal/config"
	"transitview.onebusaway.org/internal/metrics"
	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/provider"
	"transitview.onebusaway.org/internal/registry"
	"transitview.onebusaway.org/internal/routectl"
	"transitview.onebusaway.org/internal/sections"
)

// Application holds the engine's long-lived components. Handlers reach
// everything through this struct; nothing is a package-level singleton, so
// tests build fresh instances.
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metrics    *metrics.Collector
	Provider   provider.Provider
	Registry   *registry.Registry
	Controller *routectl.Controller
	Loader     *sections.Loader

	mu   sync.RWMutex
	pois map[string]models.PointOfInterest
}

// NewApplication builds and wires the full component graph from
// configuration. enricher may be nil, which leaves the hours, nearby, and
// photos sections disabled.
func NewApplication(cfg *config.Config, logger *slog.Logger, prov provider.Provider, enricher provider.Enricher) *Application {
	collector := metrics.NewCollector()
	reg := registry.NewRegistry(logger, collector)
	controller := routectl.NewController(reg, prov, logger, collector)

	loader := sections.NewLoader(
		prov, enricher,
		cache.NewArrivalCache(cfg.ArrivalTTL()),
		cache.NewNearbyCache(cfg.NearbyTTL()),
		sections.NewQualityMeter(),
		logger, collector,
	)
	fastHours, fastNearby, fastPhotos := cfg.Sections.Fast.Delays()
	slowHours, slowNearby, slowPhotos := cfg.Sections.Slow.Delays()
	loader.SetTierDelays(
		sections.TierDelays{Hours: fastHours, Nearby: fastNearby, Photos: fastPhotos},
		sections.TierDelays{Hours: slowHours, Nearby: slowNearby, Photos: slowPhotos},
	)
	loader.SetArrivalHorizon(cfg.ArrivalHorizon())
	loader.SetNearbyRadius(cfg.Sections.NearbyRadiusMeters)

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    collector,
		Provider:   prov,
		Registry:   reg,
		Controller: controller,
		Loader:     loader,
		pois:       make(map[string]models.PointOfInterest),
	}
	controller.SetPOISink(app.rememberPOIs)
	return app
}

// rememberPOIs indexes the stop-derived points of interest from each route
// acquisition so a later stop selection can resolve straight to a POI.
func (a *Application) rememberPOIs(pois []models.PointOfInterest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, poi := range pois {
		if poi.StopID != "" {
			a.pois[poi.StopID] = poi
		}
	}
}

// POIForStop resolves a stop id to its remembered point of interest.
func (a *Application) POIForStop(stopID string) (models.PointOfInterest, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	poi, ok := a.pois[stopID]
	return poi, ok
}

// Shutdown drains the background work spawned by the controller and loader.
func (a *Application) Shutdown() {
	a.Controller.Wait()
	a.Loader.Wait()
}
