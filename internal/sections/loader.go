// Package sections implements the progressive loader for the four detail
// sections of a selected point of interest: transit arrivals, opening
// hours, nearby places, and photos. Tiers start in a fixed priority order
// gated by measured connection quality, but completion order is free; the
// loader detects stale completions with a generation counter and drops
// them before they touch any section state.
package sections

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"transitview.onebusaway.org/internal/cache"
	"transitview.onebusaway.org/internal/metrics"
	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/provider"
)

const (
	// DefaultArrivalHorizon bounds the transit section to arrivals within
	// the next three hours.
	DefaultArrivalHorizon = 3 * time.Hour

	// DefaultNearbyRadius is the search radius for the nearby section.
	DefaultNearbyRadius = 400.0

	defaultLoadTimeout = 15 * time.Second

	topCategoryCount = 3
)

// TierDelays spaces out the lower-priority tiers so the transit section
// gets the network first.
type TierDelays struct {
	Hours  time.Duration
	Nearby time.Duration
	Photos time.Duration
}

var (
	fastTierDelays = TierDelays{
		Hours:  200 * time.Millisecond,
		Nearby: 600 * time.Millisecond,
		Photos: 1200 * time.Millisecond,
	}
	slowTierDelays = TierDelays{
		Hours:  750 * time.Millisecond,
		Nearby: 2 * time.Second,
	}
)

// Loader owns the per-section state machines for the current selection.
// StartLoad, Retry, and the accessors are safe for concurrent use.
type Loader struct {
	provider provider.Provider
	enricher provider.Enricher
	arrivals *cache.ArrivalCache
	places   *cache.NearbyCache
	quality  *QualityMeter
	logger   *slog.Logger
	metrics  *metrics.Collector

	mu         sync.Mutex
	current    *models.PointOfInterest
	generation uint64
	states     map[models.SectionName]models.SectionState

	fastDelays     TierDelays
	slowDelays     TierDelays
	arrivalHorizon time.Duration
	nearbyRadius   float64
	loadTimeout    time.Duration
	now            func() time.Time

	wg sync.WaitGroup
}

// NewLoader wires the loader to its provider, enricher, and caches. Nil
// caches, quality meter, logger, and collector get working defaults; a nil
// enricher disables the hours, nearby, and photos tiers.
func NewLoader(prov provider.Provider, enricher provider.Enricher, arrivals *cache.ArrivalCache, places *cache.NearbyCache, quality *QualityMeter, logger *slog.Logger, collector *metrics.Collector) *Loader {
	if arrivals == nil {
		arrivals = cache.NewArrivalCache(cache.DefaultArrivalTTL)
	}
	if places == nil {
		places = cache.NewNearbyCache(cache.DefaultNearbyTTL)
	}
	if quality == nil {
		quality = NewQualityMeter()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Loader{
		provider:       prov,
		enricher:       enricher,
		arrivals:       arrivals,
		places:         places,
		quality:        quality,
		logger:         logger,
		metrics:        collector,
		states:         make(map[models.SectionName]models.SectionState),
		fastDelays:     fastTierDelays,
		slowDelays:     slowTierDelays,
		arrivalHorizon: DefaultArrivalHorizon,
		nearbyRadius:   DefaultNearbyRadius,
		loadTimeout:    defaultLoadTimeout,
		now:            time.Now,
	}
	l.resetStatesLocked()
	return l
}

// SetTierDelays overrides the per-quality tier spacing. Zero delays are
// valid and make every tier start immediately.
func (l *Loader) SetTierDelays(fast, slow TierDelays) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fastDelays = fast
	l.slowDelays = slow
}

// SetArrivalHorizon overrides the transit-section horizon.
func (l *Loader) SetArrivalHorizon(d time.Duration) {
	if d > 0 {
		l.arrivalHorizon = d
	}
}

// SetNearbyRadius overrides the nearby search radius.
func (l *Loader) SetNearbyRadius(r float64) {
	if r > 0 {
		l.nearbyRadius = r
	}
}

// StartLoad makes poi the current selection, resets all four sections to
// idle, and schedules the tier loads. A nil poi is a no-op. Any load still
// in flight for the previous selection keeps running but its result will be
// discarded at commit time.
func (l *Loader) StartLoad(poi *models.PointOfInterest) {
	if poi == nil {
		return
	}

	quality := l.quality.Current()

	l.mu.Lock()
	l.generation++
	gen := l.generation
	selected := *poi
	l.current = &selected
	l.resetStatesLocked()
	delays := l.fastDelays
	if quality != QualityFast {
		delays = l.slowDelays
	}
	l.mu.Unlock()

	l.logger.Debug("section load started",
		slog.String("poi_id", selected.ID),
		slog.String("quality", string(quality)))

	if selected.IsTransitStop() {
		l.spawn(0, func() { l.loadTransit(gen, selected) })
	}
	if quality == QualityMinimal || l.enricher == nil {
		return
	}

	l.spawn(delays.Hours, func() { l.loadHours(gen, selected) })
	l.spawn(delays.Nearby, func() { l.loadNearby(gen, selected) })
	if quality == QualityFast {
		l.spawn(delays.Photos, func() { l.loadPhotos(gen, selected) })
	}
}

// Retry re-runs exactly one section's loader for the current selection,
// with no tier delay. Sections whose tier never applies to the selection
// (transit on a non-stop, enrichment without an enricher) stay untouched.
func (l *Loader) Retry(section models.SectionName) {
	l.mu.Lock()
	if l.current == nil {
		l.mu.Unlock()
		return
	}
	gen := l.generation
	selected := *l.current
	l.mu.Unlock()

	switch section {
	case models.SectionTransit:
		if selected.IsTransitStop() {
			l.spawn(0, func() { l.loadTransit(gen, selected) })
		}
	case models.SectionHours:
		if l.enricher != nil {
			l.spawn(0, func() { l.loadHours(gen, selected) })
		}
	case models.SectionNearby:
		if l.enricher != nil {
			l.spawn(0, func() { l.loadNearby(gen, selected) })
		}
	case models.SectionPhotos:
		if l.enricher != nil {
			l.spawn(0, func() { l.loadPhotos(gen, selected) })
		}
	}
}

// SectionState returns the current state of one section.
func (l *Loader) SectionState(section models.SectionName) models.SectionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[section]
}

// SectionStates returns a snapshot of all four section states.
func (l *Loader) SectionStates() map[models.SectionName]models.SectionState {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make(map[models.SectionName]models.SectionState, len(l.states))
	for name, state := range l.states {
		snapshot[name] = state
	}
	return snapshot
}

// Current returns a copy of the selected point of interest, or nil when
// nothing is selected.
func (l *Loader) Current() *models.PointOfInterest {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	selected := *l.current
	return &selected
}

// Wait blocks until every scheduled tier load has finished. Used by tests
// and shutdown.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) resetStatesLocked() {
	for _, name := range models.SectionNames {
		l.states[name] = models.NewIdleSectionState()
	}
}

func (l *Loader) spawn(delay time.Duration, run func()) {
	l.wg.Add(1)
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		run()
	}()
}

// beginSection flips the section to loading, unless the selection already
// moved on, in which case the tier is skipped entirely.
func (l *Loader) beginSection(gen uint64, section models.SectionName) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return false
	}
	l.states[section] = models.SectionState{Status: models.SectionLoading}
	return true
}

// commit applies a completed tier result. A result whose generation no
// longer matches the current selection is dropped silently.
func (l *Loader) commit(gen uint64, section models.SectionName, state models.SectionState) {
	l.mu.Lock()
	stale := gen != l.generation
	if !stale {
		l.states[section] = state
	}
	l.mu.Unlock()

	if stale {
		if l.metrics != nil {
			l.metrics.StaleDiscards.Inc()
		}
		l.logger.Debug("stale section result discarded", slog.String("section", string(section)))
		return
	}
	if l.metrics != nil {
		l.metrics.SectionLoads.WithLabelValues(string(section), string(state.Status)).Inc()
	}
}

func (l *Loader) loadContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), l.loadTimeout)
}

// observe feeds one provider round trip into the quality meter and the
// latency histogram.
func (l *Loader) observe(d time.Duration) {
	l.quality.Record(d)
	if l.metrics != nil {
		l.metrics.ProviderLatency.Observe(d.Seconds())
	}
}
