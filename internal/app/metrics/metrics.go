package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "underwriter",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "underwriter",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "underwriter",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "underwriter",
			Subsystem: "extraction",
			Name:      "documents_total",
			Help:      "Total number of document extraction attempts.",
		},
		[]string{"kind", "status"},
	)

	extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "underwriter",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Duration of document extraction runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"kind"},
	)

	reportCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "underwriter",
			Subsystem: "reports",
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "underwriter",
			Subsystem: "backend",
			Name:      "proxy_requests_total",
			Help:      "Requests relayed to the Django backend.",
		},
		[]string{"method", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "underwriter",
			Subsystem: "backend",
			Name:      "proxy_duration_seconds",
			Help:      "Duration of relayed backend requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		extractions,
		extractionDuration,
		reportCacheLookups,
		backendRequests,
		backendDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordExtraction records one document extraction attempt.
func RecordExtraction(kind, status string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	extractions.WithLabelValues(kind, status).Inc()
	extractionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordReportCache records a report cache hit or miss.
func RecordReportCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	reportCacheLookups.WithLabelValues(outcome).Inc()
}

// RecordBackendRequest records one relayed backend request.
func RecordBackendRequest(method string, status int, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	backendRequests.WithLabelValues(strings.ToUpper(method), strconv.Itoa(status)).Inc()
	backendDuration.WithLabelValues(strings.ToUpper(method)).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource ids so metric label cardinality stays
// bounded. The first two path segments identify the route family.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] == "api" && len(parts) > 1 {
		if parts[1] == "backend" {
			return "/api/backend"
		}
		if len(parts) > 2 {
			return "/api/" + parts[1] + "/:id"
		}
		return "/api/" + parts[1]
	}
	return "/" + parts[0]
}
