package product

import (
	"net/http"
	"strconv"

	"review-pulse/internal/handler/http/pathutil"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/repository"
)

const (
	defaultReviewPageSize = 20
	maxReviewPageSize     = 100
)

// ReviewsHandler serves a product's stored reviews, newest first.
type ReviewsHandler struct{ Repo repository.ReviewRepository }

func (h ReviewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractIDWithSuffix(r.URL.Path, "/products/", "/reviews")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultReviewPageSize)
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > maxReviewPageSize {
		limit = defaultReviewPageSize
	}

	reviews, err := h.Repo.ListByProduct(r.Context(), id, offset, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	total, err := h.Repo.CountByProduct(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]ReviewDTO, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, ReviewDTO{
			ID: rv.ID, Author: rv.Author, Rating: rv.Rating, Body: rv.Body,
			SentimentScore: rv.SentimentScore,
			SentimentLabel: rv.SentimentLabel,
			ReviewedAt:     rv.ReviewedAt,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"offset":  offset,
		"limit":   limit,
		"reviews": out,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
