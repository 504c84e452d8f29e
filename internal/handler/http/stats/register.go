package stats

import (
	"net/http"

	"review-pulse/internal/infra/cache"
	"review-pulse/internal/usecase/scrape"
	statsUC "review-pulse/internal/usecase/stats"
)

// Register registers the stats HTTP handlers with the given mux: trend and
// summary reads, cache invalidation, and the internal cache monitoring route.
func Register(mux *http.ServeMux, statsSvc *statsUC.Service, scrapeSvc *scrape.Service, cacheLayer *cache.CircuitBreakerCache) {
	mux.Handle("GET    /products/{id}/stats/trend", TrendHandler{statsSvc, scrapeSvc})
	mux.Handle("GET    /products/{id}/stats/summary", SummaryHandler{statsSvc, scrapeSvc})
	mux.Handle("POST   /stats/invalidate", InvalidateHandler{statsSvc})
	mux.Handle("GET    /stats/types", TypesHandler{statsSvc})
	mux.Handle("GET    /internal/cache/stats", CacheStatsHandler{cacheLayer})
}
