package stats

import (
	"net/http"

	"review-pulse/internal/handler/http/respond"
	statsUC "review-pulse/internal/usecase/stats"
)

// TypesHandler lists the distinct stats types currently stored, mainly for
// operators deciding what to invalidate.
type TypesHandler struct {
	Stats *statsUC.Service
}

func (h TypesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types, err := h.Stats.Types(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	respond.JSON(w, http.StatusOK, map[string][]string{"types": types})
}
