package product_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/handler/http/product"
	"review-pulse/internal/repository"
)

type stubProductRepo struct {
	products  []*entity.Product
	exists    bool
	createErr error
	deleteErr error
	last      *entity.Product
}

func (s *stubProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	return s.products, nil
}

func (s *stubProductRepo) Get(_ context.Context, id int64) (*entity.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *stubProductRepo) Create(_ context.Context, p *entity.Product) error {
	s.last = p
	p.ID = 7
	return s.createErr
}

func (s *stubProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }

func (s *stubProductRepo) Delete(_ context.Context, _ int64) error { return s.deleteErr }

func (s *stubProductRepo) ExistsByURL(_ context.Context, _ string) (bool, error) {
	return s.exists, nil
}

type stubReviewRepo struct {
	reviews []*entity.Review
}

func (s *stubReviewRepo) ListByProduct(_ context.Context, _ int64, _, _ int) ([]*entity.Review, error) {
	return s.reviews, nil
}

func (s *stubReviewRepo) CountByProduct(_ context.Context, _ int64) (int64, error) {
	return int64(len(s.reviews)), nil
}

func (s *stubReviewRepo) Upsert(_ context.Context, _ *entity.Review) (bool, error) {
	return false, nil
}

func (s *stubReviewRepo) RatingSummary(_ context.Context, _ int64) ([]repository.RatingBucket, error) {
	return nil, nil
}

func (s *stubReviewRepo) SentimentTrend(_ context.Context, _ int64, _ time.Time, _ string) ([]repository.SentimentPoint, error) {
	return nil, nil
}

func TestCreateHandler_Success(t *testing.T) {
	stub := &stubProductRepo{}
	handler := product.CreateHandler{Repo: stub}

	body := `{
		"name": "Trailhead Pack 30L",
		"url": "https://shop.example.com/packs/1/reviews"
	}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusCreated)
	}
	if stub.last.Name != "Trailhead Pack 30L" {
		t.Errorf("Name = %q", stub.last.Name)
	}

	var dto product.DTO
	if err := json.NewDecoder(rr.Body).Decode(&dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.ID != 7 {
		t.Errorf("ID = %d, want 7", dto.ID)
	}
}

func TestCreateHandler_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"url": "https://example.com/reviews"}`},
		{"missing url", `{"name": "Test"}`},
		{"bad url scheme", `{"name": "Test", "url": "ftp://example.com"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := product.CreateHandler{Repo: &stubProductRepo{}}
			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestCreateHandler_DuplicateURL(t *testing.T) {
	handler := product.CreateHandler{Repo: &stubProductRepo{exists: true}}

	body := `{"name": "Dup", "url": "https://shop.example.com/packs/1/reviews"}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestListHandler(t *testing.T) {
	stub := &stubProductRepo{products: []*entity.Product{
		{ID: 1, Name: "A", URL: "https://a.example.com/reviews"},
		{ID: 2, Name: "B", URL: "https://b.example.com/reviews"},
	}}
	handler := product.ListHandler{Repo: stub}

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d", rr.Code)
	}
	var out []product.DTO
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].Name != "A" {
		t.Errorf("unexpected body: %+v", out)
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	handler := product.GetHandler{Repo: &stubProductRepo{}}

	req := httptest.NewRequest(http.MethodGet, "/products/99", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetHandler_InvalidID(t *testing.T) {
	handler := product.GetHandler{Repo: &stubProductRepo{}}

	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestDeleteHandler_NotFound(t *testing.T) {
	handler := product.DeleteHandler{Repo: &stubProductRepo{deleteErr: entity.ErrNotFound}}

	req := httptest.NewRequest(http.MethodDelete, "/products/99", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteHandler_Success(t *testing.T) {
	handler := product.DeleteHandler{Repo: &stubProductRepo{}}

	req := httptest.NewRequest(http.MethodDelete, "/products/5", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestReviewsHandler(t *testing.T) {
	reviewed := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	stub := &stubReviewRepo{reviews: []*entity.Review{
		{ID: 1, ProductID: 5, Author: "Dana K.", Rating: 5, Body: "great",
			SentimentScore: 1, SentimentLabel: entity.SentimentPositive, ReviewedAt: reviewed},
	}}
	handler := product.ReviewsHandler{Repo: stub}

	req := httptest.NewRequest(http.MethodGet, "/products/5/reviews?limit=10", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d", rr.Code)
	}
	var out struct {
		Total   int64               `json:"total"`
		Limit   int                 `json:"limit"`
		Reviews []product.ReviewDTO `json:"reviews"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Limit != 10 || len(out.Reviews) != 1 {
		t.Errorf("unexpected body: %+v", out)
	}
	if out.Reviews[0].SentimentLabel != entity.SentimentPositive {
		t.Errorf("label = %q", out.Reviews[0].SentimentLabel)
	}
}

func TestReviewsHandler_ClampsPagination(t *testing.T) {
	handler := product.ReviewsHandler{Repo: &stubReviewRepo{}}

	req := httptest.NewRequest(http.MethodGet, "/products/5/reviews?limit=9999&offset=-3", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d", rr.Code)
	}
	var out struct {
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Offset != 0 || out.Limit != 20 {
		t.Errorf("offset=%d limit=%d, want 0/20", out.Offset, out.Limit)
	}
}
