// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the process-wide registry served by Handler.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CacheRequests, CacheInvalidations,
		DocumentLookups, DocumentsListed, DocumentsCached,
		SearchDuration,
	)
}

// CacheRequests counts repository cache lookups.
var CacheRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quire_cache_requests_total",
		Help: "Repository cache lookups by cache and result.",
	},
	[]string{"cache", "result"}, // documents|listing, hit|miss
)

// CacheInvalidations counts whole-cache resets.
var CacheInvalidations = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "quire_cache_invalidations_total",
		Help: "Whole-cache invalidations.",
	},
)

// DocumentLookups counts GetDocument outcomes.
var DocumentLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quire_document_lookups_total",
		Help: "Document lookups by outcome.",
	},
	[]string{"status"}, // found|degraded|not_found
)

// DocumentsListed is the size of the most recent listing.
var DocumentsListed = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "quire_documents",
		Help: "Number of documents in the most recent listing walk.",
	},
)

// DocumentsCached tracks the parsed documents held by the repository cache.
var DocumentsCached = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "quire_documents_cached",
		Help: "Parsed documents currently cached.",
	},
)

// SearchDuration observes search latency per backend.
var SearchDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "quire_search_duration_seconds",
		Help:    "Search latency in seconds.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"backend"},
)

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
