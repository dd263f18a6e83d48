package sections

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/provider"
)

func stopPOI(id, stopID, name string) *models.PointOfInterest {
	return &models.PointOfInterest{
		ID:     id,
		Name:   name,
		Lat:    47.66,
		Lon:    -122.38,
		StopID: stopID,
	}
}

func placePOI(id, name string) *models.PointOfInterest {
	return &models.PointOfInterest{ID: id, Name: name, Lat: 47.66, Lon: -122.38, Category: "cafe"}
}

func newTestLoader(mock *provider.Mock) *Loader {
	l := NewLoader(mock, mock, nil, nil, nil, nil, nil)
	l.SetTierDelays(TierDelays{}, TierDelays{})
	return l
}

func scheduleWithArrival(stopID string, arrivalTime int64) provider.StopSchedule {
	return provider.StopSchedule{
		Entry: provider.StopScheduleEntry{
			StopID: stopID,
			RouteSchedules: []provider.RouteSchedule{
				{
					RouteID: "1_100208",
					DirectionSchedules: []provider.DirectionSchedule{
						{
							TripHeadsign: "Loyal Heights",
							StopTimes:    []provider.TripStopTime{{TripID: "1_t1", ArrivalTime: arrivalTime}},
						},
					},
				},
			},
		},
		References: models.References{
			Routes: []models.RouteInfo{{ID: "1_100208", ShortName: "48"}},
		},
	}
}

func TestStartLoadNilSelectionIsNoOp(t *testing.T) {
	l := newTestLoader(&provider.Mock{})

	l.StartLoad(nil)
	l.Wait()

	assert.Nil(t, l.Current())
	for _, name := range models.SectionNames {
		assert.Equal(t, models.SectionIdle, l.SectionState(name).Status)
	}
}

func TestTransitSectionLoadsForStop(t *testing.T) {
	soon := time.Now().Add(10 * time.Minute).UnixMilli()
	mock := &provider.Mock{
		FetchStopScheduleFunc: func(ctx context.Context, stopID string) (provider.StopSchedule, error) {
			return scheduleWithArrival(stopID, soon), nil
		},
	}
	l := newTestLoader(mock)

	l.StartLoad(stopPOI("stop_1_s1", "1_s1", "15th Ave NW & NW Market St"))
	l.Wait()

	state := l.SectionState(models.SectionTransit)
	require.Equal(t, models.SectionSuccess, state.Status)
	arrivals, ok := state.Data.(models.StopArrivals)
	require.True(t, ok)
	assert.Equal(t, "1_s1", arrivals.Stop.ID)
	require.Len(t, arrivals.Arrivals, 1)
	assert.Equal(t, "48", arrivals.Arrivals[0].RouteShortName)

	// Lower tiers loaded too.
	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionHours).Status)
	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionNearby).Status)
	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionPhotos).Status)
}

func TestTransitSectionStaysIdleForNonStop(t *testing.T) {
	var scheduleFetches atomic.Int32
	mock := &provider.Mock{
		FetchStopScheduleFunc: func(ctx context.Context, stopID string) (provider.StopSchedule, error) {
			scheduleFetches.Add(1)
			return provider.StopSchedule{}, nil
		},
	}
	l := newTestLoader(mock)

	l.StartLoad(placePOI("poi_cafe", "Venn Coffee"))
	l.Wait()

	assert.Equal(t, models.SectionIdle, l.SectionState(models.SectionTransit).Status)
	assert.Equal(t, int32(0), scheduleFetches.Load())
	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionHours).Status)
}

func TestMinimalQualityLoadsTransitOnly(t *testing.T) {
	mock := &provider.Mock{
		FetchStopScheduleFunc: func(ctx context.Context, stopID string) (provider.StopSchedule, error) {
			return scheduleWithArrival(stopID, time.Now().Add(time.Hour).UnixMilli()), nil
		},
	}
	l := newTestLoader(mock)
	for i := 0; i < qualityWindowSize; i++ {
		l.quality.Record(3 * time.Second)
	}
	require.Equal(t, QualityMinimal, l.quality.Current())

	l.StartLoad(stopPOI("stop_1_s1", "1_s1", "15th Ave NW & NW Market St"))
	l.Wait()

	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionTransit).Status)
	assert.Equal(t, models.SectionIdle, l.SectionState(models.SectionHours).Status)
	assert.Equal(t, models.SectionIdle, l.SectionState(models.SectionNearby).Status)
	assert.Equal(t, models.SectionIdle, l.SectionState(models.SectionPhotos).Status)
}

func TestSlowQualitySkipsPhotos(t *testing.T) {
	l := newTestLoader(&provider.Mock{})
	for i := 0; i < qualityWindowSize; i++ {
		l.quality.Record(800 * time.Millisecond)
	}
	require.Equal(t, QualitySlow, l.quality.Current())

	l.StartLoad(placePOI("poi_cafe", "Venn Coffee"))
	l.Wait()

	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionHours).Status)
	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionNearby).Status)
	assert.Equal(t, models.SectionIdle, l.SectionState(models.SectionPhotos).Status)
}

func TestStaleTransitResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	mock := &provider.Mock{
		FetchStopScheduleFunc: func(ctx context.Context, stopID string) (provider.StopSchedule, error) {
			if stopID == "1_slow" {
				<-release
			}
			return scheduleWithArrival(stopID, time.Now().Add(time.Hour).UnixMilli()), nil
		},
	}
	l := newTestLoader(mock)

	l.StartLoad(stopPOI("stop_1_slow", "1_slow", "First Stop"))
	l.StartLoad(stopPOI("stop_1_fast", "1_fast", "Second Stop"))
	close(release)
	l.Wait()

	state := l.SectionState(models.SectionTransit)
	require.Equal(t, models.SectionSuccess, state.Status)
	arrivals := state.Data.(models.StopArrivals)
	assert.Equal(t, "1_fast", arrivals.Stop.ID)

	current := l.Current()
	require.NotNil(t, current)
	assert.Equal(t, "stop_1_fast", current.ID)
}

func TestRetryReloadsOnlyThatSection(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	var hoursFetches atomic.Int32
	mock := &provider.Mock{
		FetchStopScheduleFunc: func(ctx context.Context, stopID string) (provider.StopSchedule, error) {
			if failing.Load() {
				return provider.StopSchedule{}, errors.New("gateway timeout")
			}
			return scheduleWithArrival(stopID, time.Now().Add(time.Hour).UnixMilli()), nil
		},
		FindMatchingPOIFunc: func(ctx context.Context, name string, lat, lon float64) (*models.HoursInfo, error) {
			hoursFetches.Add(1)
			return nil, nil
		},
	}
	l := newTestLoader(mock)

	l.StartLoad(stopPOI("stop_1_s1", "1_s1", "15th Ave NW & NW Market St"))
	l.Wait()

	state := l.SectionState(models.SectionTransit)
	require.Equal(t, models.SectionError, state.Status)
	assert.Contains(t, state.Error, "gateway timeout")
	fetchesBeforeRetry := hoursFetches.Load()

	failing.Store(false)
	l.Retry(models.SectionTransit)
	l.Wait()

	assert.Equal(t, models.SectionSuccess, l.SectionState(models.SectionTransit).Status)
	assert.Equal(t, fetchesBeforeRetry, hoursFetches.Load())
}

func TestHoursSectionParsesRawOpeningHours(t *testing.T) {
	mock := &provider.Mock{
		FindMatchingPOIFunc: func(ctx context.Context, name string, lat, lon float64) (*models.HoursInfo, error) {
			return &models.HoursInfo{Raw: "Mo-Fr 09:00-17:00", Phone: "206-555-0100"}, nil
		},
		ParseOpeningHoursFunc: func(raw string) (models.HoursInfo, error) {
			require.Equal(t, "Mo-Fr 09:00-17:00", raw)
			return models.HoursInfo{Weekly: []models.DayHours{
				{Day: "Mo", Open: "09:00", Close: "17:00"},
				{Day: "Fr", Open: "09:00", Close: "17:00"},
			}}, nil
		},
	}
	l := newTestLoader(mock)

	l.StartLoad(placePOI("poi_cafe", "Venn Coffee"))
	l.Wait()

	state := l.SectionState(models.SectionHours)
	require.Equal(t, models.SectionSuccess, state.Status)
	hours := state.Data.(models.HoursInfo)
	require.Len(t, hours.Weekly, 2)
	assert.Equal(t, "Mo", hours.Weekly[0].Day)
	assert.Equal(t, "Mo-Fr 09:00-17:00", hours.Raw)
	assert.Equal(t, "206-555-0100", hours.Phone)
}

func TestHoursSectionKeepsRawWhenParseFails(t *testing.T) {
	mock := &provider.Mock{
		FindMatchingPOIFunc: func(ctx context.Context, name string, lat, lon float64) (*models.HoursInfo, error) {
			return &models.HoursInfo{Raw: "sunrise-sunset"}, nil
		},
		ParseOpeningHoursFunc: func(raw string) (models.HoursInfo, error) {
			return models.HoursInfo{}, errors.New("unsupported opening_hours expression")
		},
	}
	l := newTestLoader(mock)

	l.StartLoad(placePOI("poi_cafe", "Venn Coffee"))
	l.Wait()

	state := l.SectionState(models.SectionHours)
	require.Equal(t, models.SectionSuccess, state.Status)
	hours := state.Data.(models.HoursInfo)
	assert.Empty(t, hours.Weekly)
	assert.Equal(t, "sunrise-sunset", hours.Raw)
}

func TestRetryWithoutSelectionIsNoOp(t *testing.T) {
	l := newTestLoader(&provider.Mock{})

	l.Retry(models.SectionTransit)
	l.Wait()

	assert.Equal(t, models.SectionIdle, l.SectionState(models.SectionTransit).Status)
}

func TestQualityMeterBuckets(t *testing.T) {
	m := NewQualityMeter()
	assert.Equal(t, QualityFast, m.Current())

	m.Record(100 * time.Millisecond)
	assert.Equal(t, QualityFast, m.Current())

	for i := 0; i < qualityWindowSize; i++ {
		m.Record(time.Second)
	}
	assert.Equal(t, QualitySlow, m.Current())

	for i := 0; i < qualityWindowSize; i++ {
		m.Record(5 * time.Second)
	}
	assert.Equal(t, QualityMinimal, m.Current())
}
