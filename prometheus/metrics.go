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
			Name: "vetcare_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Issued token counter. Expiry is not tracked, so this is monotonic.
	TokensIssuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vetcare_tokens_issued_total",
			Help: "Total number of JWT tokens issued",
		},
	)

	// Onboarding counter
	OnboardingCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_onboarding_total",
			Help: "Total number of onboarding attempts by outcome",
		},
		[]string{"outcome"}, // "completed", "failed", "compensated"
	)

	// Organization operation counter
	OrgOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_org_operations_total",
			Help: "Total number of organization registry operations",
		},
		[]string{"operation"},
	)

	// Resource operation counter by kind
	ResourceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_resource_operations_total",
			Help: "Total number of resource store operations",
		},
		[]string{"kind", "operation"},
	)

	// Authorization gate denial counter
	GateDenialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_gate_denials_total",
			Help: "Total number of authorization gate denials by reason",
		},
		[]string{"reason"},
	)

	// Plan limit denial counter
	LimitDenialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_limit_denials_total",
			Help: "Total number of creates blocked by plan limits",
		},
		[]string{"kind"},
	)

	// Error counter
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_errors_total",
			Help: "Total number of request errors by type",
		},
		[]string{"type"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetcare_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vetcare_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vetcare_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

var registered bool

// InitMetrics registers all collectors with the default registry.
func InitMetrics() {
	if registered {
		return
	}
	prometheus.MustRegister(
		LoginCounter,
		OnboardingCounter,
		OrgOperationCounter,
		ResourceOperationCounter,
		GateDenialCounter,
		LimitDenialCounter,
		ErrorCounter,
		HTTPRequestCounter,
		RequestDuration,
		DBOperationDuration,
		TokensIssuedCounter,
	)
	registered = true
}

// RecordError increments the error counter for the given type.
func RecordError(errType string) {
	ErrorCounter.WithLabelValues(errType).Inc()
}

// RecordGateDenial increments the denial counter for a gate reason.
func RecordGateDenial(reason string) {
	GateDenialCounter.WithLabelValues(reason).Inc()
}

// RecordResourceOperation increments the per-kind operation counter.
func RecordResourceOperation(kind, operation string) {
	ResourceOperationCounter.WithLabelValues(kind, operation).Inc()
}

// TrackDBOperation returns a function that records the duration of a
// database operation. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware records request counts and durations per endpoint.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			HTTPRequestCounter.WithLabelValues(endpoint, method, status).Inc()
			RequestDuration.WithLabelValues(endpoint, method, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// GetPrometheusHandler returns an HTTP handler for exposing metrics.
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
