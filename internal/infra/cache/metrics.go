package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	tierRemote = "remote"
	tierLocal  = "local"

	resultHit     = "hit"
	resultMiss    = "miss"
	resultError   = "error"
	resultSkipped = "skipped"
)

// Cache metrics track per-tier lookup outcomes and circuit behavior.
var (
	// TierLookupsTotal counts cache lookups by tier and result.
	// result is one of: hit, miss, error, skipped (circuit open).
	TierLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_tier_lookups_total",
			Help: "Total cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)
)

// recordTierLookup records the outcome of a single tier lookup.
func recordTierLookup(tier, result string) {
	TierLookupsTotal.WithLabelValues(tier, result).Inc()
}
