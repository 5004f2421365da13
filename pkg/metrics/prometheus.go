// Package metrics provides Prometheus metrics for the eventmatch service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	scoreBuckets    []float64
	skillBuckets    []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     map[string]string
	prefix          string
	registerer      prometheus.Registerer

	// Résumé parsing
	resumesParsed      *prometheus.CounterVec
	skillsExtracted    prometheus.Histogram
	parseLatency       prometheus.Histogram
	documentExtraction *prometheus.CounterVec
	parseCache         *prometheus.CounterVec

	// Recommendations
	recommendationsServed *prometheus.CounterVec
	recommendationsEmpty  prometheus.Counter
	similarityScore       prometheus.Histogram
	recommendLatency      *prometheus.HistogramVec

	// Catalog
	catalogEvents prometheus.Gauge
	catalogLoads  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "eventmatch",
		subsystem:       "ml",
		latencyBuckets:  prometheus.DefBuckets,
		scoreBuckets:    []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		skillBuckets:    []float64{0, 1, 2, 5, 10, 20, 40},
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registerer:      prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.prefix == "" {
		return n
	}
	return m.prefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registerer)
	constLabels := prometheus.Labels(m.constLabels)

	m.resumesParsed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("resumes_parsed_total"),
		Help:        "Résumés parsed, by source (text or upload) and outcome",
		ConstLabels: constLabels,
	}, []string{"source", "outcome"})

	m.parseCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("parse_cache_lookups_total"),
		Help:        "Parse cache lookups by outcome (hit or miss)",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.skillsExtracted = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("skills_extracted"),
		Help:        "Number of skills extracted per résumé",
		Buckets:     m.skillBuckets,
		ConstLabels: constLabels,
	})

	m.parseLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("parse_latency_milliseconds"),
		Help:        "Résumé parse latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})

	m.documentExtraction = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("document_extractions_total"),
		Help:        "Uploaded document text extractions by format and outcome",
		ConstLabels: constLabels,
	}, []string{"format", "outcome"})

	m.recommendationsServed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendations_served_total"),
		Help:        "Recommendations returned, by strategy",
		ConstLabels: constLabels,
	}, []string{"strategy"})

	m.recommendationsEmpty = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendations_empty_total"),
		Help:        "Recommendation requests that produced no result above the threshold",
		ConstLabels: constLabels,
	})

	m.similarityScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("similarity_score"),
		Help:        "Cosine similarity of returned recommendations",
		Buckets:     m.scoreBuckets,
		ConstLabels: constLabels,
	})

	m.recommendLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_latency_milliseconds"),
		Help:        "Recommendation latency in milliseconds, by strategy",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	}, []string{"strategy"})

	m.catalogEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_events"),
		Help:        "Number of events in the catalog",
		ConstLabels: constLabels,
	})

	m.catalogLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_loads_total"),
		Help:        "Catalog loads by source (sample or file) and outcome",
		ConstLabels: constLabels,
	}, []string{"source", "outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by endpoint, method and error type",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: constLabels,
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})
}

// RecordResumeParsed counts a parsed résumé and observes its skill count and latency.
func RecordResumeParsed(source string, skills int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.resumesParsed.WithLabelValues(source, "ok").Inc()
	globalManager.skillsExtracted.Observe(float64(skills))
	globalManager.parseLatency.Observe(latencyMs)
}

// RecordResumeParseError counts a failed résumé parse.
func RecordResumeParseError(source string) {
	if !globalManager.enabled {
		return
	}
	globalManager.resumesParsed.WithLabelValues(source, "error").Inc()
}

// RecordParseCache counts a parse cache lookup.
func RecordParseCache(hit bool) {
	if !globalManager.enabled {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	globalManager.parseCache.WithLabelValues(outcome).Inc()
}

// RecordDocumentExtraction counts an uploaded document extraction.
func RecordDocumentExtraction(format, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.documentExtraction.WithLabelValues(format, outcome).Inc()
}

// RecordRecommendations records the outcome of a recommendation request.
func RecordRecommendations(strategy string, scores []float64, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendLatency.WithLabelValues(strategy).Observe(latencyMs)
	if len(scores) == 0 {
		globalManager.recommendationsEmpty.Inc()
		return
	}
	globalManager.recommendationsServed.WithLabelValues(strategy).Add(float64(len(scores)))
	for _, s := range scores {
		globalManager.similarityScore.Observe(s)
	}
}

// UpdateCatalogEvents sets the number of events in the catalog.
func UpdateCatalogEvents(count int) {
	globalManager.catalogEvents.Set(float64(count))
}

// RecordCatalogLoad counts a catalog load attempt.
func RecordCatalogLoad(source, outcome string) {
	globalManager.catalogLoads.WithLabelValues(source, outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often gauges should be refreshed by callers.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval reports the gauge refresh period of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}
