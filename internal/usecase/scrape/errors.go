// Package scrape provides use cases for acquiring product reviews from remote
// sites. It implements business logic for fetching review pages, extracting
// review fields, scoring sentiment, and storing reviews in the repository.
package scrape

import "errors"

// Sentinel errors for scrape use case operations.
// Fetch failures are typed so the orchestrating caller can pick a recovery
// strategy: exhaustion is safe to retry later, a CAPTCHA means the identity
// (proxy, user agent, pacing) must change before trying again.
var (
	// ErrRetryExhausted indicates that a page fetch failed with transient
	// errors on every attempt of the backoff schedule.
	ErrRetryExhausted = errors.New("fetch retry attempts exhausted")

	// ErrCaptchaDetected indicates that the target served an anti-bot
	// challenge page instead of content. Never auto-retried.
	ErrCaptchaDetected = errors.New("captcha challenge detected")

	// ErrFatalTransport indicates a non-retryable transport failure,
	// e.g. an invalid URL, a 4xx response, or an oversized body.
	ErrFatalTransport = errors.New("fatal transport error")

	// ErrNoReviewsFound indicates that a page fetched fine but contained
	// no extractable review blocks.
	ErrNoReviewsFound = errors.New("no reviews found on page")
)
