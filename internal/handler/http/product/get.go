package product

import (
	"errors"
	"net/http"

	"review-pulse/internal/handler/http/pathutil"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/repository"
)

type GetHandler struct{ Repo repository.ProductRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/products/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if p == nil {
		respond.SafeError(w, http.StatusNotFound, errors.New("product not found"))
		return
	}
	respond.JSON(w, http.StatusOK, DTO{
		ID: p.ID, Name: p.Name, URL: p.URL, CreatedAt: p.CreatedAt,
	})
}
