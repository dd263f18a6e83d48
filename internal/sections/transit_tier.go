package sections

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/provider"
)

// loadTransit populates the arrivals section for a transit stop. A schedule
// that fails to parse still commits success with an empty arrival list and
// the stop's bare identity, so the panel renders the stop; only transport
// failures produce an error state.
func (l *Loader) loadTransit(gen uint64, poi models.PointOfInterest) {
	defer l.wg.Done()
	if !l.beginSection(gen, models.SectionTransit) {
		return
	}
	l.commit(gen, models.SectionTransit, l.fetchArrivals(poi))
}

func (l *Loader) fetchArrivals(poi models.PointOfInterest) models.SectionState {
	if cached, ok := l.arrivals.Get(poi.StopID); ok {
		if l.metrics != nil {
			l.metrics.CacheHits.WithLabelValues("arrivals").Inc()
		}
		return models.SectionState{Status: models.SectionSuccess, Data: cached}
	}
	if l.metrics != nil {
		l.metrics.CacheMisses.WithLabelValues("arrivals").Inc()
	}

	ctx, cancel := l.loadContext()
	defer cancel()

	start := time.Now()
	schedule, err := l.provider.FetchStopSchedule(ctx, poi.StopID)
	l.observe(time.Since(start))
	if err != nil {
		if errors.Is(err, provider.ErrParseFailure) {
			bare := models.StopArrivals{
				Stop:     models.StopRecord{ID: poi.StopID, Name: poi.Name, Lat: poi.Lat, Lon: poi.Lon},
				Arrivals: []models.Arrival{},
			}
			return models.SectionState{Status: models.SectionSuccess, Data: bare}
		}
		l.logger.Warn("transit section load failed",
			slog.String("stop_id", poi.StopID),
			slog.String("error", err.Error()))
		return models.SectionState{Status: models.SectionError, Error: err.Error()}
	}

	result := models.StopArrivals{
		Stop:     models.StopRecord{ID: schedule.Entry.StopID, Name: poi.Name, Lat: poi.Lat, Lon: poi.Lon},
		Arrivals: flattenArrivals(schedule, l.now(), l.arrivalHorizon),
	}
	l.arrivals.Set(poi.StopID, result)
	return models.SectionState{Status: models.SectionSuccess, Data: result}
}

// flattenArrivals turns the nested per-route, per-direction stop times into
// one uniform list, keeps only arrivals inside [now, now+horizon], and sorts
// ascending by predicted-else-scheduled time.
func flattenArrivals(schedule provider.StopSchedule, now time.Time, horizon time.Duration) []models.Arrival {
	floor := now.UnixMilli()
	ceiling := now.Add(horizon).UnixMilli()

	arrivals := []models.Arrival{}
	for _, routeSchedule := range schedule.Entry.RouteSchedules {
		shortName := ""
		if route, ok := schedule.References.RouteByID(routeSchedule.RouteID); ok {
			shortName = route.ShortName
		}
		for _, direction := range routeSchedule.DirectionSchedules {
			for _, stopTime := range direction.StopTimes {
				arrival := models.Arrival{
					RouteID:              routeSchedule.RouteID,
					RouteShortName:       shortName,
					TripID:               stopTime.TripID,
					StopID:               schedule.Entry.StopID,
					ScheduledArrivalTime: stopTime.ArrivalTime,
					PredictedArrivalTime: stopTime.PredictedArrivalTime,
				}
				if effective := arrival.EffectiveArrivalTime(); effective < floor || effective > ceiling {
					continue
				}
				arrivals = append(arrivals, arrival)
			}
		}
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].EffectiveArrivalTime() < arrivals[j].EffectiveArrivalTime()
	})
	return arrivals
}
