// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track review acquisition and scoring
var (
	// ProductsTotal tracks total number of products in database
	ProductsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "products_total",
			Help: "Total number of products in the database",
		},
	)

	// ReviewsTotal tracks total number of stored reviews
	ReviewsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reviews_total",
			Help: "Total number of reviews in the database",
		},
	)

	// ReviewsFoundTotal counts reviews seen on scraped pages per product
	ReviewsFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_found_total",
			Help: "Total number of reviews extracted from scraped pages",
		},
		[]string{"product_id"},
	)

	// ReviewsScrapedTotal counts reviews stored per product
	ReviewsScrapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_scraped_total",
			Help: "Total number of reviews stored from scrape runs",
		},
		[]string{"product_id"},
	)

	// ProductScrapeDuration measures time to scrape one product
	ProductScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "product_scrape_duration_seconds",
			Help:    "Time taken to scrape one product's review pages",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"product_id"},
	)

	// ProductScrapeErrors counts errors during product scraping
	ProductScrapeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_scrape_errors_total",
			Help: "Total number of product scrape errors",
		},
		[]string{"product_id", "error_type"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
