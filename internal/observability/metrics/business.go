package metrics

import (
	"fmt"
	"time"
)

// RecordProductScrape records metrics for one product scrape: duration and
// how many reviews were found and stored.
func RecordProductScrape(productID int64, duration time.Duration, found, inserted int64) {
	id := fmt.Sprintf("%d", productID)
	ProductScrapeDuration.WithLabelValues(id).Observe(duration.Seconds())
	if found > 0 {
		ReviewsFoundTotal.WithLabelValues(id).Add(float64(found))
	}
	if inserted > 0 {
		ReviewsScrapedTotal.WithLabelValues(id).Add(float64(inserted))
	}
}

// RecordScrapeError records an error during product scraping.
// errorType is one of: captcha, exhausted, transport, other.
func RecordScrapeError(productID int64, errorType string) {
	ProductScrapeErrors.WithLabelValues(
		fmt.Sprintf("%d", productID),
		errorType,
	).Inc()
}

// UpdateProductsTotal updates the total count of products in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateProductsTotal(count int) {
	ProductsTotal.Set(float64(count))
}

// UpdateReviewsTotal updates the total count of reviews in the database.
func UpdateReviewsTotal(count int) {
	ReviewsTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_reviews", "upsert_stat").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
