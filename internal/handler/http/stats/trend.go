// Package stats exposes the computed-statistics HTTP surface: trend and
// summary reads resolved through the tiered cache, plus invalidation and the
// cache monitoring endpoint.
package stats

import (
	"errors"
	"net/http"
	"strconv"

	"review-pulse/internal/handler/http/pathutil"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/usecase/scrape"
	statsUC "review-pulse/internal/usecase/stats"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
)

// TrendHandler serves the sentiment trend for one product, resolved through
// the stats cache tiers and computed from stored reviews on a miss.
type TrendHandler struct {
	Stats  *statsUC.Service
	Scrape *scrape.Service
}

func (h TrendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractIDWithSuffix(r.URL.Path, "/products/", "/stats/trend")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	days := defaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxTrendDays {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("days must be between 1 and 365"))
			return
		}
	}

	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		bucket = "day"
	}
	if bucket != "day" && bucket != "week" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("bucket must be day or week"))
		return
	}

	identifier := strconv.FormatInt(id, 10)
	payload, err := h.Stats.Resolve(r.Context(),
		scrape.TrendStatsType(days, bucket), identifier,
		h.Scrape.SentimentTrendFn(id, days, bucket),
		statsUC.Options{ForceRefresh: r.URL.Query().Get("refresh") == "true"})
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	writeRawJSON(w, payload)
}

// writeRawJSON writes an already-serialized JSON payload.
func writeRawJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
