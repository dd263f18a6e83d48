// Package routectl acquires routes from a provider and installs them into
// the registry, running schedule and vehicle enrichment in the background so
// the caller gets a usable entity as soon as the route details arrive.
package routectl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"transitview.onebusaway.org/internal/metrics"
	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/provider"
	"transitview.onebusaway.org/internal/registry"
)

// DefaultEnrichmentTimeout bounds each background enrichment fetch.
const DefaultEnrichmentTimeout = 15 * time.Second

// Controller coordinates route acquisition. Exported methods are safe for
// concurrent use; background enrichment goroutines commit through the
// registry and never block the caller.
type Controller struct {
	registry *registry.Registry
	provider provider.Provider
	logger   *slog.Logger
	metrics  *metrics.Collector

	enrichmentTimeout time.Duration
	poiSink           func([]models.PointOfInterest)

	wg sync.WaitGroup
}

// NewController returns a controller backed by the given registry and
// provider. logger and collector may be nil.
func NewController(reg *registry.Registry, prov provider.Provider, logger *slog.Logger, collector *metrics.Collector) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		registry:          reg,
		provider:          prov,
		logger:            logger,
		metrics:           collector,
		enrichmentTimeout: DefaultEnrichmentTimeout,
	}
}

// SetPOISink registers a callback that receives the points of interest
// derived from a newly acquired route's stops. Typically wired to the
// section loader so a stop tap can start loading immediately.
func (c *Controller) SetPOISink(sink func([]models.PointOfInterest)) {
	c.poiSink = sink
}

// SetEnrichmentTimeout overrides the per-fetch deadline for background
// enrichment. Intended for configuration wiring and tests.
func (c *Controller) SetEnrichmentTimeout(d time.Duration) {
	if d > 0 {
		c.enrichmentTimeout = d
	}
}

// AddRoute fetches route details for routeID, installs a fresh entity, and
// selects it. The returned id is the registry entity id, not the transit
// route id. On a fetch failure no entity is created and the error wraps the
// provider sentinel so callers can match with errors.Is.
func (c *Controller) AddRoute(ctx context.Context, routeID string) (string, error) {
	start := time.Now()
	details, err := c.provider.FetchRouteDetails(ctx, routeID)
	if c.metrics != nil {
		c.metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.AcquisitionFailures.Inc()
		}
		return "", fmt.Errorf("fetch route %s: %w", routeID, err)
	}

	entityID := c.registry.AddRoute(models.RouteEntity{
		Info:     details.Info,
		Branches: details.Branches,
	})
	c.registry.SelectRoute(entityID)
	if c.metrics != nil {
		c.metrics.RoutesAcquired.Inc()
	}
	c.logger.Info("route acquired",
		slog.String("route_id", routeID),
		slog.String("entity_id", entityID),
		slog.Int("branches", len(details.Branches)))

	c.emitPOIs(details.Branches)

	c.wg.Add(2)
	go c.enrichVehicles(entityID, routeID)
	go c.enrichSchedule(entityID, routeID)

	return entityID, nil
}

// AddRouteFromStop is the stepping-stone path: acquire the route, mark the
// originating stop as active, and pre-select the branch serving that stop.
// When no branch serves the stop the segment selection is left alone.
func (c *Controller) AddRouteFromStop(ctx context.Context, routeID, stopID string) (string, error) {
	entityID, err := c.AddRoute(ctx, routeID)
	if err != nil {
		return "", err
	}

	c.registry.SetActiveStop(stopID)
	if entity := c.registry.GetRoute(entityID); entity != nil {
		if idx := entity.BranchIndexForStop(stopID); idx >= 0 {
			c.registry.SelectSegment(entityID, idx)
		}
	}
	return entityID, nil
}

// SelectRoute activates the given entity, clearing any active stop left over
// from a previous stepping-stone acquisition. An empty id deselects.
func (c *Controller) SelectRoute(entityID string) {
	c.registry.SetActiveStop("")
	c.registry.SelectRoute(entityID)
}

// ClearRouteSelection deselects everything: the active route, the active
// stop, and any navigation coordinates.
func (c *Controller) ClearRouteSelection() {
	c.registry.SelectRoute("")
	c.registry.SetActiveStop("")
	c.registry.SetNavigationCoords(nil, nil)
}

// SelectSegment updates the selected segment on the given entity, subject to
// the registry's bounds check.
func (c *Controller) SelectSegment(entityID string, index int) bool {
	return c.registry.SelectSegment(entityID, index)
}

// SelectedSegmentIndex reports the entity's current segment selection.
func (c *Controller) SelectedSegmentIndex(entityID string) int {
	return c.registry.SelectedSegmentIndex(entityID)
}

// Wait blocks until all in-flight enrichment goroutines finish. Used by
// tests and shutdown.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// emitPOIs derives one point of interest per stop of the primary branch for
// downstream map display.
func (c *Controller) emitPOIs(branches []models.Branch) {
	if c.poiSink == nil || len(branches) == 0 {
		return
	}
	pois := make([]models.PointOfInterest, 0, len(branches[0].Stops))
	for _, stop := range branches[0].Stops {
		pois = append(pois, models.POIFromStop(stop))
	}
	if len(pois) > 0 {
		c.poiSink(pois)
	}
}

// enrichVehicles attaches live vehicle positions to the entity. A failure is
// logged once and swallowed; the entity stays usable without vehicles.
func (c *Controller) enrichVehicles(entityID, routeID string) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.enrichmentTimeout)
	defer cancel()

	vehicles, err := c.provider.FetchVehiclesForRoute(ctx, routeID)
	if err != nil {
		c.logger.Warn("vehicle enrichment failed",
			slog.String("route_id", routeID),
			slog.String("error", err.Error()))
		if c.metrics != nil {
			c.metrics.EnrichmentFailures.WithLabelValues("vehicles").Inc()
		}
		return
	}

	// UpdateRoute is a no-op when the entity was deleted mid-flight.
	c.registry.UpdateRoute(entityID, func(entity *models.RouteEntity) {
		entity.Vehicles = vehicles
	})
}

// enrichSchedule attaches the schedule to the entity with the same
// best-effort contract as enrichVehicles.
func (c *Controller) enrichSchedule(entityID, routeID string) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.enrichmentTimeout)
	defer cancel()

	schedule, err := c.provider.FetchRouteSchedule(ctx, routeID)
	if err != nil {
		c.logger.Warn("schedule enrichment failed",
			slog.String("route_id", routeID),
			slog.String("error", err.Error()))
		if c.metrics != nil {
			c.metrics.EnrichmentFailures.WithLabelValues("schedule").Inc()
		}
		return
	}

	c.registry.UpdateRoute(entityID, func(entity *models.RouteEntity) {
		entity.Schedule = schedule
	})
}
