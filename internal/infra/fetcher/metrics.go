package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess   = "success"
	resultExhausted = "exhausted"
	resultCaptcha   = "captcha"
	resultFatal     = "fatal"
)

// Fetch metrics track the outcome distribution of page fetches.
var (
	// FetchesTotal counts completed fetch calls by final result.
	// result is one of: success, exhausted, captcha, fatal.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_requests_total",
			Help: "Total page fetch calls by final result",
		},
		[]string{"result"},
	)
)

// recordFetch records the final outcome of one Fetch call.
func recordFetch(result string) {
	FetchesTotal.WithLabelValues(result).Inc()
}
