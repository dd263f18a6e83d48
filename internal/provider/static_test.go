package provider

import (
	"context"
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStaticProvider() *StaticProvider {
	lat1, lon1 := 47.610, -122.338
	lat2, lon2 := 47.612, -122.337
	lat3, lon3 := 47.650, -122.350

	stopA := gtfs.Stop{Id: "s1", Name: "1st Ave & Pine St", Code: "101", Latitude: &lat1, Longitude: &lon1}
	stopB := gtfs.Stop{Id: "s2", Name: "3rd Ave & Pike St", Code: "102", Latitude: &lat2, Longitude: &lon2}
	stopC := gtfs.Stop{Id: "s3", Name: "Campus Pkwy & University Way", Code: "103", Latitude: &lat3, Longitude: &lon3}

	agency := gtfs.Agency{Id: "1", Name: "Metro Transit", Timezone: "America/Los_Angeles"}
	route := gtfs.Route{Id: "100208", Agency: &agency, ShortName: "48", LongName: "Loyal Heights - University District", Type: 3}

	everyDay := gtfs.Service{
		Id:     "daily",
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
		Friday: true, Saturday: true, Sunday: true,
		StartDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	expired := gtfs.Service{
		Id:     "expired",
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
		Friday: true, Saturday: true, Sunday: true,
		StartDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	data := &gtfs.Static{
		Agencies: []gtfs.Agency{agency},
		Routes:   []gtfs.Route{route},
		Stops:    []gtfs.Stop{stopA, stopB, stopC},
		Services: []gtfs.Service{everyDay, expired},
	}

	data.Trips = []gtfs.ScheduledTrip{
		{
			ID:       "t1",
			Route:    &data.Routes[0],
			Service:  &data.Services[0],
			Headsign: "Loyal Heights",
			Shape: &gtfs.Shape{
				ID: "shp1",
				Points: []gtfs.ShapePoint{
					{Latitude: 38.5, Longitude: -120.2},
					{Latitude: 40.7, Longitude: -120.95},
					{Latitude: 43.252, Longitude: -126.453},
				},
			},
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &data.Stops[0], ArrivalTime: 8 * time.Hour, DepartureTime: 8 * time.Hour},
				{Stop: &data.Stops[1], ArrivalTime: 8*time.Hour + 5*time.Minute, DepartureTime: 8*time.Hour + 5*time.Minute},
			},
		},
		{
			ID:       "t2",
			Route:    &data.Routes[0],
			Service:  &data.Services[0],
			Headsign: "University District",
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &data.Stops[2], ArrivalTime: 9 * time.Hour, DepartureTime: 9 * time.Hour},
			},
		},
		{
			ID:       "t3",
			Route:    &data.Routes[0],
			Service:  &data.Services[1],
			Headsign: "Loyal Heights",
			StopTimes: []gtfs.ScheduledStopTime{
				{Stop: &data.Stops[1], ArrivalTime: 7 * time.Hour, DepartureTime: 7 * time.Hour},
			},
		},
	}

	return &StaticProvider{
		cfg:        StaticProviderConfig{Source: "test.zip", AgencyID: "1"},
		data:       data,
		stopRoutes: buildStopRouteIndex(data),
	}
}

func TestFetchRouteDetailsGroupsBranchesByHeadsign(t *testing.T) {
	p := testStaticProvider()

	details, err := p.FetchRouteDetails(context.Background(), "1_100208")
	require.NoError(t, err)

	assert.Equal(t, "1_100208", details.Info.ID)
	assert.Equal(t, "48", details.Info.ShortName)

	require.Len(t, details.Branches, 2)
	assert.Equal(t, "Loyal Heights", details.Branches[0].Headsign)
	assert.Len(t, details.Branches[0].Stops, 2)
	assert.Equal(t, "University District", details.Branches[1].Headsign)
	assert.Len(t, details.Branches[1].Stops, 1)

	// Stops carry combined ids and serving routes.
	assert.Equal(t, "1_s1", details.Branches[0].Stops[0].ID)
	assert.Equal(t, []string{"1_100208"}, details.Branches[0].Stops[0].RouteIDs)
}

func TestFetchRouteDetailsEncodesBranchSegments(t *testing.T) {
	p := testStaticProvider()

	details, err := p.FetchRouteDetails(context.Background(), "1_100208")
	require.NoError(t, err)

	require.Len(t, details.Branches[0].Segments, 1)
	segment := details.Branches[0].Segments[0]
	assert.Equal(t, 3, segment.Length)
	// Reference example from the polyline format documentation.
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", segment.Points)

	// The inbound branch's trip carries no shape.
	assert.Empty(t, details.Branches[1].Segments)
}

func TestFetchRouteDetailsUnknownRoute(t *testing.T) {
	p := testStaticProvider()

	_, err := p.FetchRouteDetails(context.Background(), "1_nope")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestFetchStopSchedule(t *testing.T) {
	p := testStaticProvider()

	schedule, err := p.FetchStopSchedule(context.Background(), "1_s2")
	require.NoError(t, err)

	assert.Equal(t, "1_s2", schedule.Entry.StopID)
	require.Len(t, schedule.Entry.RouteSchedules, 1)
	routeSchedule := schedule.Entry.RouteSchedules[0]
	assert.Equal(t, "1_100208", routeSchedule.RouteID)
	require.Len(t, routeSchedule.DirectionSchedules, 1)
	require.Len(t, routeSchedule.DirectionSchedules[0].StopTimes, 1)
	assert.Equal(t, "1_t1", routeSchedule.DirectionSchedules[0].StopTimes[0].TripID)

	require.Len(t, schedule.References.Agencies, 1)
	assert.Equal(t, "Metro Transit", schedule.References.Agencies[0].Name)
	require.Len(t, schedule.References.Routes, 1)
}

func TestFetchStopScheduleSkipsInactiveService(t *testing.T) {
	p := testStaticProvider()

	// t3 also visits s2 but its service calendar ended in 2001.
	schedule, err := p.FetchStopSchedule(context.Background(), "1_s2")
	require.NoError(t, err)

	require.Len(t, schedule.Entry.RouteSchedules, 1)
	for _, direction := range schedule.Entry.RouteSchedules[0].DirectionSchedules {
		for _, st := range direction.StopTimes {
			assert.NotEqual(t, "1_t3", st.TripID)
		}
	}
}

func TestServiceDayUsesAgencyTimezone(t *testing.T) {
	p := testStaticProvider()

	// 03:00 UTC is still the previous evening in Seattle.
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	day := p.serviceDay(now)

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	assert.True(t, day.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, loc)))
}

func TestServiceActiveOn(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	sunday := monday.AddDate(0, 0, -1)

	weekdays := &gtfs.Service{
		Id:     "weekday",
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, serviceActiveOn(weekdays, monday))
	assert.False(t, serviceActiveOn(weekdays, sunday))
	assert.False(t, serviceActiveOn(weekdays, monday.AddDate(1, 0, 0)))

	// calendar_dates overrides win over the weekly pattern.
	withOverrides := &gtfs.Service{
		Id:           "overrides",
		Monday:       true,
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		AddedDates:   []time.Time{time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
		RemovedDates: []time.Time{time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
	}
	assert.True(t, serviceActiveOn(withOverrides, sunday))
	assert.False(t, serviceActiveOn(withOverrides, monday))

	// Trips without a service record stay visible.
	assert.True(t, serviceActiveOn(nil, monday))
}

func TestFetchStopScheduleUnknownStop(t *testing.T) {
	p := testStaticProvider()

	_, err := p.FetchStopSchedule(context.Background(), "1_missing")
	assert.ErrorIs(t, err, ErrStopNotFound)
}

func TestFetchRouteSchedule(t *testing.T) {
	p := testStaticProvider()

	entries, err := p.FetchRouteSchedule(context.Background(), "1_100208")
	require.NoError(t, err)

	// t3's service calendar ended in 2001, so only two trips remain.
	require.Len(t, entries, 2)
	assert.Equal(t, "1_t1", entries[0].TripID)
	assert.Equal(t, "1_100208", entries[0].RouteID)
	assert.Len(t, entries[0].StopTimes, 2)
	assert.Equal(t, "1_t2", entries[1].TripID)
}

func TestFindNearbyTransit(t *testing.T) {
	p := testStaticProvider()

	// Close to s1 and s2, far from s3.
	nearby, err := p.FindNearbyTransit(context.Background(), 47.6105, -122.3378, 500)
	require.NoError(t, err)

	require.Len(t, nearby.Stops, 2)
	// Closest first.
	assert.Equal(t, "1_s1", nearby.Stops[0].ID)
	assert.Equal(t, "1_s2", nearby.Stops[1].ID)
	require.Len(t, nearby.Routes, 1)
	assert.Equal(t, "1_100208", nearby.Routes[0].ID)
}

func TestFindNearbyTransitValidatesCoordinates(t *testing.T) {
	p := testStaticProvider()

	_, err := p.FindNearbyTransit(context.Background(), 91.0, -122.3, 500)
	assert.Error(t, err)

	_, err = p.FindNearbyTransit(context.Background(), 47.6, -122.3, 50000)
	assert.Error(t, err)
}
