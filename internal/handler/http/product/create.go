package product

import (
	"encoding/json"
	"errors"
	"net/http"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/handler/http/respond"
	"review-pulse/internal/repository"
)

type CreateHandler struct{ Repo repository.ProductRepository }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	p := &entity.Product{Name: req.Name, URL: req.URL}
	if err := p.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	exists, err := h.Repo.ExistsByURL(r.Context(), p.URL)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if exists {
		respond.SafeError(w, http.StatusConflict,
			errors.New("product with this url already exists"))
		return
	}

	if err := h.Repo.Create(r.Context(), p); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, DTO{
		ID: p.ID, Name: p.Name, URL: p.URL, CreatedAt: p.CreatedAt,
	})
}
