package sections

import (
	"log/slog"
	"sort"
	"time"

	"transitview.onebusaway.org/internal/models"
)

// loadHours populates the hours/contact section from the enricher's POI
// match. No match is still success, with an empty payload.
func (l *Loader) loadHours(gen uint64, poi models.PointOfInterest) {
	defer l.wg.Done()
	if !l.beginSection(gen, models.SectionHours) {
		return
	}

	ctx, cancel := l.loadContext()
	defer cancel()

	start := time.Now()
	hours, err := l.enricher.FindMatchingPOI(ctx, poi.Name, poi.Lat, poi.Lon)
	l.observe(time.Since(start))
	if err != nil {
		l.logger.Warn("hours section load failed",
			slog.String("poi_id", poi.ID),
			slog.String("error", err.Error()))
		l.commit(gen, models.SectionHours, models.SectionState{Status: models.SectionError, Error: err.Error()})
		return
	}

	payload := models.HoursInfo{}
	if hours != nil {
		payload = *hours
	}

	// Some sources only carry a raw opening_hours string; expand it into the
	// weekly table. A parse failure leaves the raw string for display.
	if len(payload.Weekly) == 0 && payload.Raw != "" {
		parsed, err := l.enricher.ParseOpeningHours(payload.Raw)
		if err != nil {
			l.logger.Warn("opening hours parse failed",
				slog.String("poi_id", poi.ID),
				slog.String("error", err.Error()))
		} else {
			payload.Weekly = parsed.Weekly
		}
	}

	l.commit(gen, models.SectionHours, models.SectionState{Status: models.SectionSuccess, Data: payload})
}

// loadNearby populates the nearby section: cached or fetched places around
// the selection, summarized down to the top categories.
func (l *Loader) loadNearby(gen uint64, poi models.PointOfInterest) {
	defer l.wg.Done()
	if !l.beginSection(gen, models.SectionNearby) {
		return
	}

	key := l.places.Key(poi.Lat, poi.Lon, l.nearbyRadius, poi.Category)
	if cached, ok := l.places.Get(key); ok {
		if l.metrics != nil {
			l.metrics.CacheHits.WithLabelValues("nearby").Inc()
		}
		l.commit(gen, models.SectionNearby, models.SectionState{
			Status: models.SectionSuccess,
			Data:   summarizeNearby(cached),
		})
		return
	}
	if l.metrics != nil {
		l.metrics.CacheMisses.WithLabelValues("nearby").Inc()
	}

	ctx, cancel := l.loadContext()
	defer cancel()

	start := time.Now()
	places, err := l.enricher.FetchPOIData(ctx, poi.Lat, poi.Lon, l.nearbyRadius)
	l.observe(time.Since(start))
	if err != nil {
		l.logger.Warn("nearby section load failed",
			slog.String("poi_id", poi.ID),
			slog.String("error", err.Error()))
		l.commit(gen, models.SectionNearby, models.SectionState{Status: models.SectionError, Error: err.Error()})
		return
	}

	l.places.Set(key, places)
	l.commit(gen, models.SectionNearby, models.SectionState{
		Status: models.SectionSuccess,
		Data:   summarizeNearby(places),
	})
}

// loadPhotos populates the photos section. Only ever scheduled on fast
// connections.
func (l *Loader) loadPhotos(gen uint64, poi models.PointOfInterest) {
	defer l.wg.Done()
	if !l.beginSection(gen, models.SectionPhotos) {
		return
	}

	ctx, cancel := l.loadContext()
	defer cancel()

	start := time.Now()
	photos, err := l.enricher.FetchPhotos(ctx, poi.Name, poi.Lat, poi.Lon)
	l.observe(time.Since(start))
	if err != nil {
		l.logger.Warn("photos section load failed",
			slog.String("poi_id", poi.ID),
			slog.String("error", err.Error()))
		l.commit(gen, models.SectionPhotos, models.SectionState{Status: models.SectionError, Error: err.Error()})
		return
	}

	l.commit(gen, models.SectionPhotos, models.SectionState{Status: models.SectionSuccess, Data: photos})
}

// summarizeNearby groups places by category and keeps the largest three
// categories, ties broken alphabetically.
func summarizeNearby(places []models.NearbyPlace) models.NearbySummary {
	counts := make(map[string]int)
	for _, place := range places {
		if place.Category == "" {
			continue
		}
		counts[place.Category]++
	}

	categories := make([]models.CategorySummary, 0, len(counts))
	for category, count := range counts {
		categories = append(categories, models.CategorySummary{Category: category, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Category < categories[j].Category
	})
	if len(categories) > topCategoryCount {
		categories = categories[:topCategoryCount]
	}

	return models.NearbySummary{Places: places, TopCategories: categories}
}
