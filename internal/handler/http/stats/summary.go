package stats

import (
	"net/http"
	"strconv"

	"review-pulse/internal/handler/http/pathutil"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/usecase/scrape"
	statsUC "review-pulse/internal/usecase/stats"
)

// SummaryHandler serves the rating summary for one product, resolved through
// the stats cache tiers.
type SummaryHandler struct {
	Stats  *statsUC.Service
	Scrape *scrape.Service
}

func (h SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractIDWithSuffix(r.URL.Path, "/products/", "/stats/summary")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	identifier := strconv.FormatInt(id, 10)
	payload, err := h.Stats.Resolve(r.Context(),
		scrape.StatsTypeRatingSummary, identifier,
		h.Scrape.RatingSummaryFn(id),
		statsUC.Options{ForceRefresh: r.URL.Query().Get("refresh") == "true"})
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	writeRawJSON(w, payload)
}
