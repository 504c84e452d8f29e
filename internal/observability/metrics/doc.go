// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count)
//   - Business metrics (products, reviews, scrape runs)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "review-pulse/internal/observability/metrics"
//
//	func scrapeProduct(productID int64) {
//	    start := time.Now()
//	    // ... fetch and store reviews ...
//	    metrics.RecordProductScrape(productID, time.Since(start), found, inserted)
//	}
package metrics
