package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitview.onebusaway.org/internal/models"
)

func testEntity(routeID string) models.RouteEntity {
	return models.RouteEntity{
		Info: models.RouteInfo{ID: routeID, ShortName: routeID},
		Branches: []models.Branch{
			{Headsign: "Outbound", Segments: []models.Polyline{{Points: "abc"}}},
			{Headsign: "Inbound", Segments: []models.Polyline{{Points: "def"}}},
		},
	}
}

func TestAddRouteAssignsFreshIdentity(t *testing.T) {
	r := NewRegistry(nil, nil)

	first := r.AddRoute(testEntity("1_100208"))
	second := r.AddRoute(testEntity("1_100208"))

	assert.NotEqual(t, first, second, "re-adding the same provider route must create a fresh entity")
	require.NotNil(t, r.GetRoute(first))
	require.NotNil(t, r.GetRoute(second))
	assert.False(t, r.GetRoute(first).CreatedAt.IsZero())
}

func TestAtMostOneActiveRoute(t *testing.T) {
	r := NewRegistry(nil, nil)

	a := r.AddRoute(testEntity("1_a"))
	b := r.AddRoute(testEntity("1_b"))
	c := r.AddRoute(testEntity("1_c"))

	r.SelectRoute(a)
	r.SelectRoute(b)
	r.SelectRoute(c)
	r.SelectRoute(b)

	activeCount := 0
	for _, entity := range r.GetAllRoutes() {
		if entity.IsActive {
			activeCount++
			assert.Equal(t, b, entity.ID)
		}
	}
	assert.Equal(t, 1, activeCount)
	require.NotNil(t, r.GetActiveRoute())
	assert.Equal(t, b, r.GetActiveRoute().ID)
}

func TestSelectRouteEmptyDeselects(t *testing.T) {
	r := NewRegistry(nil, nil)
	id := r.AddRoute(testEntity("1_a"))

	r.SelectRoute(id)
	require.NotNil(t, r.GetActiveRoute())

	r.SelectRoute("")
	assert.Nil(t, r.GetActiveRoute())
	assert.False(t, r.GetRoute(id).IsActive)
}

func TestDeleteActiveRouteClearsPointer(t *testing.T) {
	r := NewRegistry(nil, nil)
	id := r.AddRoute(testEntity("1_a"))
	r.SelectRoute(id)

	r.DeleteRoute(id)

	assert.Nil(t, r.GetActiveRoute())
	assert.Nil(t, r.GetRoute(id))
	assert.Empty(t, r.GetAllRoutes())
}

func TestUpdateRouteIsNoOpForDeletedEntity(t *testing.T) {
	r := NewRegistry(nil, nil)
	id := r.AddRoute(testEntity("1_a"))
	r.DeleteRoute(id)

	applied := r.UpdateRoute(id, func(entity *models.RouteEntity) {
		entity.Vehicles = []models.VehicleLocation{{VehicleID: "v1"}}
	})

	assert.False(t, applied)
}

func TestUpdateRouteReplacesWholeEntity(t *testing.T) {
	r := NewRegistry(nil, nil)
	id := r.AddRoute(testEntity("1_a"))
	before := r.GetRoute(id)

	applied := r.UpdateRoute(id, func(entity *models.RouteEntity) {
		entity.Vehicles = []models.VehicleLocation{{VehicleID: "v1", RouteID: "1_a"}}
	})

	require.True(t, applied)
	after := r.GetRoute(id)
	assert.NotSame(t, before, after, "writes must swap in a fresh copy")
	assert.Empty(t, before.Vehicles, "the previously read entity must not change")
	require.Len(t, after.Vehicles, 1)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
}

func TestClearAllRoutesPreservesFavorites(t *testing.T) {
	r := NewRegistry(nil, nil)
	a := r.AddRoute(testEntity("1_a"))
	b := r.AddRoute(testEntity("1_b"))
	r.SetFavorite(b, true)

	r.SelectRoute(a)
	r.SetActiveStop("1_620")
	r.SetHoveredStop("1_621")
	r.SetHoveredVehicle("1_v1")
	r.SetSelectedVehicle("1_v2")
	r.SetNavigationCoords(&models.Location{Lat: 47.6, Lon: -122.3}, nil)

	r.ClearAllRoutes()

	assert.Nil(t, r.GetRoute(a))
	require.NotNil(t, r.GetRoute(b))
	assert.False(t, r.GetRoute(b).IsActive)

	assert.Nil(t, r.GetActiveRoute())
	assert.Empty(t, r.ActiveStop())
	assert.Empty(t, r.HoveredStop())
	assert.Empty(t, r.HoveredVehicle())
	assert.Empty(t, r.SelectedVehicle())
	start, end := r.NavigationCoords()
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestSegmentSelection(t *testing.T) {
	r := NewRegistry(nil, nil)
	id := r.AddRoute(testEntity("1_a"))

	assert.Equal(t, 0, r.SelectedSegmentIndex(id))

	require.True(t, r.SelectSegment(id, 1))
	assert.Equal(t, 1, r.SelectedSegmentIndex(id))

	// Out-of-range indexes reset to the default.
	require.True(t, r.SelectSegment(id, 7))
	assert.Equal(t, 0, r.SelectedSegmentIndex(id))

	assert.Equal(t, 0, r.SelectedSegmentIndex("missing"))
}
