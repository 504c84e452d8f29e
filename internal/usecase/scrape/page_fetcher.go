package scrape

import (
	"context"
	"time"
)

// PageRequest describes a single outbound page fetch.
type PageRequest struct {
	// URL is the absolute target URL.
	URL string

	// Headers are optional extra request headers.
	Headers map[string]string

	// Query holds optional query parameters appended to the URL.
	Query map[string]string

	// AttemptTimeout overrides the fetcher's per-attempt deadline when > 0.
	AttemptTimeout time.Duration
}

// PageFetcher fetches remote pages resiliently.
//
// Implementations retry transient failures with backoff and rotate identity
// (user agent, optionally proxy) between attempts. Failures are reported via
// the sentinel errors in this package: ErrRetryExhausted, ErrCaptchaDetected
// and ErrFatalTransport.
type PageFetcher interface {
	Fetch(ctx context.Context, req PageRequest) ([]byte, error)
}

// ReviewParser extracts review fields from a fetched review page.
// It returns the parsed reviews in page order; a page with no recognizable
// review blocks yields an empty slice, not an error.
type ReviewParser interface {
	Parse(body []byte) ([]ParsedReview, error)
}

// ParsedReview is a review as extracted from HTML, before sentiment scoring
// and persistence.
type ParsedReview struct {
	Author     string
	Rating     int
	Body       string
	ReviewedAt time.Time
}
