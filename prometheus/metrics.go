package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rental_login_total",
			Help: "Total number of login attempts",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Authentication/authorization error counter
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // type can be "invalid_token", "permission_denied", "user_not_found" etc.
	)

	// Rental lifecycle operations
	RentalOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_lifecycle_operations_total",
			Help: "Total number of rental lifecycle operations",
		},
		[]string{"operation"}, // "create", "update", "return"
	)

	// External registry lookups by outcome
	LookupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_registry_lookups_total",
			Help: "Total number of external vehicle-registry lookups",
		},
		[]string{"outcome"}, // "hit", "miss", "error"
	)

	// Document storage operations
	DocumentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_document_operations_total",
			Help: "Total number of vehicle document operations",
		},
		[]string{"operation"}, // "upload", "download", "delete", "share"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rental_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// Fleet size by vehicle status
	FleetStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rental_fleet_vehicles",
			Help: "Number of vehicles in the fleet by status",
		},
		[]string{"status"},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rental_info",
			Help: "Information about the rental service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(RentalOperationCounter)
	prometheus.MustRegister(LookupCounter)
	prometheus.MustRegister(DocumentOperationCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(FleetStatusGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordRentalOperation records a rental lifecycle operation
func RecordRentalOperation(operation string) {
	RentalOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordLookup records an external registry lookup outcome
func RecordLookup(outcome string) {
	LookupCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordDocumentOperation records a document operation
func RecordDocumentOperation(operation string) {
	DocumentOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateFleetStatus updates the fleet gauge for one vehicle status
func UpdateFleetStatus(status string, count int64) {
	FleetStatusGauge.With(prometheus.Labels{"status": status}).Set(float64(count))
}
