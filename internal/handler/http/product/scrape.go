package product

import (
	"errors"
	"net/http"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/handler/http/pathutil"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/usecase/scrape"
)

// ScrapeHandler triggers a synchronous scrape of one product's review pages.
// The worker handles the scheduled full runs; this endpoint exists for
// on-demand refresh after registering a product.
type ScrapeHandler struct{ Svc *scrape.Service }

func (h ScrapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractIDWithSuffix(r.URL.Path, "/products/", "/scrape")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := h.Svc.ScrapeProduct(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, entity.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, scrape.ErrCaptchaDetected),
			errors.Is(err, scrape.ErrRetryExhausted),
			errors.Is(err, scrape.ErrFatalTransport):
			// The remote site refused us; not our fault, not the client's.
			code = http.StatusBadGateway
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"pages":     stats.Pages,
		"found":     stats.Found,
		"inserted":  stats.Inserted,
		"duplicate": stats.Duplicate,
		"skipped":   stats.Skipped,
	})
}
