package stats

import (
	"net/http"

	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/infra/cache"
)

// CacheStatsHandler exposes the stats cache's hit/miss counters and circuit
// state for operational monitoring. Intended for internal consumption only;
// keep it off the public route table.
type CacheStatsHandler struct {
	Cache *cache.CircuitBreakerCache
}

func (h CacheStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Cache.Stats())
}
