package stats

import (
	"encoding/json"
	"net/http"

	"review-pulse/internal/handler/http/respond"
	statsUC "review-pulse/internal/usecase/stats"
)

// InvalidateHandler removes stored stats matching a filter. Omitted fields
// widen the match; an empty body clears every stored stat.
type InvalidateHandler struct {
	Stats *statsUC.Service
}

func (h InvalidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StatsType  *string `json:"stats_type"`
		Identifier *string `json:"identifier"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
	}

	deleted, err := h.Stats.Invalidate(r.Context(), req.StatsType, req.Identifier)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
