package prometheus

import (
	"sync"
	"time"

	"trendhive/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Storefront operation metrics
	CartOperationsCounter   *prometheus.CounterVec
	OrderOperationsCounter  *prometheus.CounterVec
	ReviewOperationsCounter prometheus.Counter
	OrderValueHistogram     prometheus.Histogram

	// Trend and recommendation calls by source (ai or fallback)
	InsightRequestsCounter *prometheus.CounterVec

	// Product popularity metrics
	ProductViewsCounter *prometheus.CounterVec
)

// InitMetrics registers the Prometheus metrics with the configured prefix.
// Only the first call registers; later calls are no-ops.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() { register(config.Metrics.Prefix) })
}

func register(prefix string) {
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "outcome"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	CartOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_cart_operations_total",
			Help: "Total number of cart and wishlist mutations",
		},
		[]string{"operation"},
	)

	OrderOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation"},
	)

	OrderValueHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_order_total_amount_cents",
			Help:    "Total amount of placed orders in minor units",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
		},
	)

	ReviewOperationsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_reviews_created_total",
			Help: "Total number of reviews submitted",
		},
	)

	InsightRequestsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_insight_requests_total",
			Help: "Trend and recommendation requests by result source",
		},
		[]string{"kind", "source"},
	)

	ProductViewsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_views_total",
			Help: "Total number of product views",
		},
		[]string{"product_id", "category"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAuthAttempt counts a login/register attempt and its outcome
func RecordAuthAttempt(action, outcome string) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.WithLabelValues(action, outcome).Inc()
}

// RecordCartOperation increments the counter for cart operations
func RecordCartOperation(operation string) {
	if CartOperationsCounter == nil {
		return
	}
	CartOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordOrderOperation increments the counter for order operations
func RecordOrderOperation(operation string) {
	if OrderOperationsCounter == nil {
		return
	}
	OrderOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordOrderPlaced tracks a new order and its value
func RecordOrderPlaced(totalAmount int64) {
	if OrderValueHistogram == nil {
		return
	}
	OrderOperationsCounter.WithLabelValues("place").Inc()
	OrderValueHistogram.Observe(float64(totalAmount))
}

// RecordReview counts a submitted review
func RecordReview() {
	if ReviewOperationsCounter == nil {
		return
	}
	ReviewOperationsCounter.Inc()
}

// RecordInsight counts a trend or recommendation result by source
func RecordInsight(kind, source string) {
	if InsightRequestsCounter == nil {
		return
	}
	InsightRequestsCounter.WithLabelValues(kind, source).Inc()
}

// RecordProductView increments the counter for product views
func RecordProductView(productID string, category string) {
	if ProductViewsCounter == nil {
		return
	}
	ProductViewsCounter.WithLabelValues(productID, category).Inc()
}
