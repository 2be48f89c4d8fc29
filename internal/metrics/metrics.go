package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// Store metrics
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of store operations per backend",
		},
		[]string{"service", "backend", "kind", "status"},
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "backend", "kind"},
	)

	// Ingestion metrics
	RecordsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_ingested_total",
			Help: "Total number of records accepted for ingestion",
		},
		[]string{"service", "kind"},
	)

	// Detection metrics
	DetectionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_requests_total",
			Help: "Total number of detection requests",
		},
		[]string{"service", "model", "status"},
	)

	DetectedObjects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detected_objects_total",
			Help: "Total number of objects detected",
		},
		[]string{"service", "model"},
	)

	InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_duration_seconds",
			Help:    "Duration of model inference in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "model"},
	)

	ModelLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_loads_total",
			Help: "Total number of detection model load attempts",
		},
		[]string{"service", "category", "status"},
	)

	// Service health metrics
	ServiceHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_health",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy)",
		},
		[]string{"service"},
	)
)

// InitMetrics registers all metrics with Prometheus
func InitMetrics(serviceName string) {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		StoreOperations,
		StoreOperationDuration,
		RecordsIngested,
		DetectionRequests,
		DetectedObjects,
		InferenceDuration,
		ModelLoads,
		ServiceHealth,
	)

	// Set initial health status
	ServiceHealth.WithLabelValues(serviceName).Set(1)
}

// HTTPMiddleware creates a middleware for HTTP metrics collection
func HTTPMiddleware(serviceName string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a wrapper to capture status code
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start).Seconds()
		statusCode := wrapper.statusCode

		HTTPRequestsTotal.WithLabelValues(
			serviceName,
			r.Method,
			r.URL.Path,
			http.StatusText(statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			serviceName,
			r.Method,
			r.URL.Path,
		).Observe(duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordStoreOperation records a persistence attempt against one backend
func RecordStoreOperation(serviceName, backend, kind, status string, duration time.Duration) {
	StoreOperations.WithLabelValues(serviceName, backend, kind, status).Inc()
	StoreOperationDuration.WithLabelValues(serviceName, backend, kind).Observe(duration.Seconds())
}

// RecordIngestedRecord records an accepted ingestion record
func RecordIngestedRecord(serviceName, kind string) {
	RecordsIngested.WithLabelValues(serviceName, kind).Inc()
}

// RecordDetection records a detection request outcome and its object count
func RecordDetection(serviceName, model, status string, objects int, duration time.Duration) {
	DetectionRequests.WithLabelValues(serviceName, model, status).Inc()
	if objects > 0 {
		DetectedObjects.WithLabelValues(serviceName, model).Add(float64(objects))
	}
	InferenceDuration.WithLabelValues(serviceName, model).Observe(duration.Seconds())
}

// RecordModelLoad records a model load attempt
func RecordModelLoad(serviceName, category, status string) {
	ModelLoads.WithLabelValues(serviceName, category, status).Inc()
}

// SetServiceHealth sets the service health status
func SetServiceHealth(serviceName string, healthy bool) {
	if healthy {
		ServiceHealth.WithLabelValues(serviceName).Set(1)
	} else {
		ServiceHealth.WithLabelValues(serviceName).Set(0)
	}
}
