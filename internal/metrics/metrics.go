// Package metrics exposes the engine's Prometheus instrumentation as an
// injectable collector so tests can run with fresh registries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ActiveRoutes prometheus.Gauge

	RoutesAcquired      prometheus.Counter
	AcquisitionFailures prometheus.Counter
	EnrichmentFailures  *prometheus.CounterVec // kind label: vehicles|schedule

	SectionLoads  *prometheus.CounterVec // section + status labels
	StaleDiscards prometheus.Counter

	CacheHits   *prometheus.CounterVec // cache label: arrivals|nearby
	CacheMisses *prometheus.CounterVec

	ProviderLatency prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveRoutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transitview_registry_routes",
			Help: "Number of route entities currently held by the registry.",
		}),
		RoutesAcquired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitview_routes_acquired_total",
			Help: "Total successful route acquisitions.",
		}),
		AcquisitionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitview_route_acquisition_failures_total",
			Help: "Total failed primary route fetches.",
		}),
		EnrichmentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitview_enrichment_failures_total",
			Help: "Total swallowed vehicle/schedule enrichment failures.",
		}, []string{"kind"}),
		SectionLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitview_section_loads_total",
			Help: "Total section load completions by section and status.",
		}, []string{"section", "status"}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitview_stale_results_discarded_total",
			Help: "Total late results dropped because the selection changed.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitview_cache_hits_total",
			Help: "Total cache hits by cache.",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitview_cache_misses_total",
			Help: "Total cache misses by cache.",
		}, []string{"cache"}),
		ProviderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transitview_provider_latency_seconds",
			Help:    "Round-trip latency of provider calls.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.ActiveRoutes,
		c.RoutesAcquired, c.AcquisitionFailures, c.EnrichmentFailures,
		c.SectionLoads, c.StaleDiscards,
		c.CacheHits, c.CacheMisses,
		c.ProviderLatency,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
