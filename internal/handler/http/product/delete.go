package product

import (
	"errors"
	"net/http"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/handler/http/pathutil"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/repository"
)

type DeleteHandler struct{ Repo repository.ProductRepository }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/products/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
