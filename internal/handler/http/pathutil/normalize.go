package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Product routes with IDs
	{Pattern: regexp.MustCompile(`^/products/\d+$`), Template: "/products/:id"},
	{Pattern: regexp.MustCompile(`^/products/\d+/reviews$`), Template: "/products/:id/reviews"},
	{Pattern: regexp.MustCompile(`^/products/\d+/scrape$`), Template: "/products/:id/scrape"},

	// Stats routes with IDs
	{Pattern: regexp.MustCompile(`^/products/\d+/stats/trend$`), Template: "/products/:id/stats/trend"},
	{Pattern: regexp.MustCompile(`^/products/\d+/stats/summary$`), Template: "/products/:id/stats/summary"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /products/123) to template format (e.g., /products/:id).
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/products/123")               // "/products/:id"
//	NormalizePath("/products/456/reviews")       // "/products/:id/reviews"
//	NormalizePath("/products/7/stats/trend")     // "/products/:id/stats/trend"
//	NormalizePath("/health")                     // "/health" (unchanged)
//	NormalizePath("/metrics")                    // "/metrics" (unchanged)
//	NormalizePath("/unknown/path/123")           // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/products/123?page=1")        // "/products/:id"
//	NormalizePath("/products/123/")              // "/products/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path
	// This is safe - static paths like /health and /metrics pass through unchanged
	return path
}
