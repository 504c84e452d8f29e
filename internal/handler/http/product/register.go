package product

import (
	"net/http"

	"review-pulse/internal/repository"
	"review-pulse/internal/usecase/scrape"
)

// Register registers all product-related HTTP handlers with the given mux.
// It sets up routes for listing, creating, fetching and deleting products,
// listing a product's reviews, and triggering an on-demand scrape.
func Register(mux *http.ServeMux, products repository.ProductRepository, reviews repository.ReviewRepository, scrapeSvc *scrape.Service) {
	mux.Handle("GET    /products", ListHandler{products})
	mux.Handle("POST   /products", CreateHandler{products})
	mux.Handle("GET    /products/{id}", GetHandler{products})
	mux.Handle("DELETE /products/{id}", DeleteHandler{products})
	mux.Handle("GET    /products/{id}/reviews", ReviewsHandler{reviews})
	if scrapeSvc != nil {
		mux.Handle("POST   /products/{id}/scrape", ScrapeHandler{scrapeSvc})
	}
}
