// Package metrics provides Prometheus metrics for the resource fetch
// cache and manifest reloading.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics exposed by the SDK.
type Collector struct {
	// Fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	BytesFetched  prometheus.Counter
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	// Manifest metrics
	ManifestReloads      prometheus.Counter
	ManifestReloadErrors prometheus.Counter
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a collector registered on the given registerer.
func NewWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "munit",
				Name:      "fetches_total",
				Help:      "Total number of remote resource fetches",
			},
			[]string{"kind", "result"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "munit",
				Name:      "fetch_duration_seconds",
				Help:      "Remote fetch duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),
		BytesFetched: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "munit",
				Name:      "fetch_bytes_total",
				Help:      "Total bytes downloaded from remote resources",
			},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "munit",
				Name:      "fetch_cache_hits_total",
				Help:      "Total number of fetch cache hits",
			},
			[]string{"kind"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "munit",
				Name:      "fetch_cache_misses_total",
				Help:      "Total number of fetch cache misses",
			},
			[]string{"kind"},
		),
		ManifestReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "munit",
				Name:      "manifest_reloads_total",
				Help:      "Total number of successful manifest reloads",
			},
		),
		ManifestReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "munit",
				Name:      "manifest_reload_errors_total",
				Help:      "Total number of failed manifest reloads",
			},
		),
	}
}
