package product

import (
	"net/http"

	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/repository"
)

type ListHandler struct{ Repo repository.ProductRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, p := range list {
		out = append(out, DTO{
			ID: p.ID, Name: p.Name, URL: p.URL,
			CreatedAt: p.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
