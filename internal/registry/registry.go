// Package registry owns the mutable view-model state: the route entities
// acquired so far and the transient selection pointers (active route, active
// stop, hovered stop/vehicle). It is an injectable service object; hosts
// create one per map surface and tests create one per test.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"transitview.onebusaway.org/internal/logging"
	"transitview.onebusaway.org/internal/metrics"
	"transitview.onebusaway.org/internal/models"
)

// Registry is safe for concurrent use. Writes replace whole entities
// (copy-on-write) so readers never observe a partially updated route.
type Registry struct {
	mu sync.RWMutex

	routes map[string]*models.RouteEntity
	order  []string

	activeRouteID     string
	activeStopID      string
	hoveredStopID     string
	hoveredVehicleID  string
	selectedVehicleID string

	navStart *models.Location
	navEnd   *models.Location

	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewRegistry(logger *slog.Logger, collector *metrics.Collector) *Registry {
	return &Registry{
		routes:  make(map[string]*models.RouteEntity),
		logger:  logger,
		metrics: collector,
	}
}

// AddRoute stores a new route entity and returns its generated id. The id is
// unique per acquisition: adding the same provider route twice yields two
// independent entities.
func (r *Registry) AddRoute(entity models.RouteEntity) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entity.ID = uuid.NewString()
	entity.CreatedAt = now
	entity.LastAccessed = now
	entity.IsActive = false
	if entity.SelectedSegmentIndex < 0 || entity.SelectedSegmentIndex >= entity.SegmentIndexBound() {
		entity.SelectedSegmentIndex = 0
	}

	r.routes[entity.ID] = &entity
	r.order = append(r.order, entity.ID)
	r.updateGauge()

	logging.LogOperation(r.logger, "route_entity_added",
		slog.String("entity_id", entity.ID),
		slog.String("route_id", entity.Info.ID))

	return entity.ID
}

// UpdateRoute applies mutate to a copy of the entity and swaps the copy in.
// It is a no-op returning false when the entity no longer exists, which is
// how late enrichment results for deleted routes get dropped.
func (r *Registry) UpdateRoute(id string, mutate func(entity *models.RouteEntity)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.routes[id]
	if !ok {
		return false
	}

	updated := *current
	mutate(&updated)
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	if updated.SelectedSegmentIndex < 0 || updated.SelectedSegmentIndex >= updated.SegmentIndexBound() {
		updated.SelectedSegmentIndex = 0
	}
	r.routes[id] = &updated
	return true
}

// DeleteRoute removes an entity. Deleting the active entity clears the
// active-route pointer.
func (r *Registry) DeleteRoute(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[id]; !ok {
		return
	}
	delete(r.routes, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.activeRouteID == id {
		r.activeRouteID = ""
	}
	r.updateGauge()
}

// GetRoute returns the entity for id, or nil. The returned entity must be
// treated as immutable; use UpdateRoute to change it.
func (r *Registry) GetRoute(id string) *models.RouteEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes[id]
}

// GetAllRoutes returns all entities in insertion order.
func (r *Registry) GetAllRoutes() []*models.RouteEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.RouteEntity, 0, len(r.order))
	for _, id := range r.order {
		if entity, ok := r.routes[id]; ok {
			all = append(all, entity)
		}
	}
	return all
}

// SelectRoute activates the entity with the given id, deactivating any
// previously active entity. An empty id selects no route. It does not touch
// the active-stop pointer; the stepping-stone protocol in the controller
// decides when that clears.
func (r *Registry) SelectRoute(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeRouteID == id {
		return
	}

	if previous, ok := r.routes[r.activeRouteID]; ok {
		updated := *previous
		updated.IsActive = false
		r.routes[previous.ID] = &updated
	}
	r.activeRouteID = ""

	if next, ok := r.routes[id]; ok {
		updated := *next
		updated.IsActive = true
		updated.LastAccessed = time.Now()
		r.routes[next.ID] = &updated
		r.activeRouteID = id
	}
}

// GetActiveRoute returns the active entity, or nil.
func (r *Registry) GetActiveRoute() *models.RouteEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes[r.activeRouteID]
}

func (r *Registry) SetActiveStop(stopID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeStopID = stopID
}

func (r *Registry) ActiveStop() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeStopID
}

func (r *Registry) SetHoveredStop(stopID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hoveredStopID = stopID
}

func (r *Registry) HoveredStop() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hoveredStopID
}

func (r *Registry) SetHoveredVehicle(vehicleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hoveredVehicleID = vehicleID
}

func (r *Registry) HoveredVehicle() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hoveredVehicleID
}

func (r *Registry) SetSelectedVehicle(vehicleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectedVehicleID = vehicleID
}

func (r *Registry) SelectedVehicle() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selectedVehicleID
}

// SetNavigationCoords stores start/end coordinates for a pending directions
// request. Either may be nil.
func (r *Registry) SetNavigationCoords(start, end *models.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navStart = start
	r.navEnd = end
}

func (r *Registry) NavigationCoords() (start, end *models.Location) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.navStart, r.navEnd
}

// SetFavorite flags an entity so ClearAllRoutes preserves it.
func (r *Registry) SetFavorite(id string, favorite bool) bool {
	return r.UpdateRoute(id, func(entity *models.RouteEntity) {
		entity.IsFavorite = favorite
	})
}

// ClearAllRoutes wipes every non-favorited entity and all transient
// pointers.
func (r *Registry) ClearAllRoutes() {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, id := range r.order {
		entity, ok := r.routes[id]
		if !ok {
			continue
		}
		if entity.IsFavorite {
			if entity.IsActive {
				updated := *entity
				updated.IsActive = false
				r.routes[id] = &updated
			}
			kept = append(kept, id)
			continue
		}
		delete(r.routes, id)
	}
	r.order = kept

	r.activeRouteID = ""
	r.activeStopID = ""
	r.hoveredStopID = ""
	r.hoveredVehicleID = ""
	r.selectedVehicleID = ""
	r.navStart = nil
	r.navEnd = nil
	r.updateGauge()
}

// SelectSegment sets the drawable segment index for an entity. Indexes
// address the concatenation of all branches' segment lists; out-of-range
// values reset to 0.
func (r *Registry) SelectSegment(id string, index int) bool {
	return r.UpdateRoute(id, func(entity *models.RouteEntity) {
		entity.SelectedSegmentIndex = index
	})
}

// SelectedSegmentIndex returns the entity's segment index, or 0 when the
// entity does not exist.
func (r *Registry) SelectedSegmentIndex(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entity, ok := r.routes[id]; ok {
		return entity.SelectedSegmentIndex
	}
	return 0
}

func (r *Registry) updateGauge() {
	if r.metrics != nil {
		r.metrics.ActiveRoutes.Set(float64(len(r.routes)))
	}
}
