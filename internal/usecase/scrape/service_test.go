package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/repository"
)

type fakeProductRepo struct {
	products []*entity.Product
	listErr  error
}

func (f *fakeProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeProductRepo) Get(ctx context.Context, id int64) (*entity.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error { return nil }
func (f *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error { return nil }
func (f *fakeProductRepo) Delete(ctx context.Context, id int64) error                { return nil }
func (f *fakeProductRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	return false, nil
}

type fakeReviewRepo struct {
	stored    []*entity.Review
	seen      map[string]bool
	upsertErr error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{seen: make(map[string]bool)}
}

func (f *fakeReviewRepo) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	key := fmt.Sprintf("%d|%s|%d", review.ProductID, review.Author, review.ReviewedAt.UnixNano())
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.stored = append(f.stored, review)
	return true, nil
}

func (f *fakeReviewRepo) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]*entity.Review, error) {
	return f.stored, nil
}

func (f *fakeReviewRepo) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	return int64(len(f.stored)), nil
}

func (f *fakeReviewRepo) RatingSummary(ctx context.Context, productID int64) ([]repository.RatingBucket, error) {
	counts := make(map[int]int64)
	for _, r := range f.stored {
		if r.ProductID == productID {
			counts[r.Rating]++
		}
	}
	var buckets []repository.RatingBucket
	for rating := 1; rating <= 5; rating++ {
		if counts[rating] > 0 {
			buckets = append(buckets, repository.RatingBucket{Rating: rating, Count: counts[rating]})
		}
	}
	return buckets, nil
}

func (f *fakeReviewRepo) SentimentTrend(ctx context.Context, productID int64, since time.Time, bucket string) ([]repository.SentimentPoint, error) {
	point := repository.SentimentPoint{Bucket: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	var sum float64
	for _, r := range f.stored {
		if r.ProductID != productID || r.ReviewedAt.Before(since) {
			continue
		}
		point.ReviewCount++
		sum += r.SentimentScore
		switch r.SentimentLabel {
		case entity.SentimentPositive:
			point.Positive++
		case entity.SentimentNegative:
			point.Negative++
		default:
			point.Neutral++
		}
	}
	if point.ReviewCount == 0 {
		return nil, nil
	}
	point.AverageScore = sum / float64(point.ReviewCount)
	return []repository.SentimentPoint{point}, nil
}

// fakeFetcher serves canned bodies keyed by page number. Page 1 is the request
// without a page query parameter.
type fakeFetcher struct {
	pages    map[string][]byte
	err      error
	requests int
}

func (f *fakeFetcher) Fetch(ctx context.Context, req PageRequest) ([]byte, error) {
	f.requests++
	if f.err != nil {
		return nil, f.err
	}
	page := req.Query["page"]
	if page == "" {
		page = "1"
	}
	body, ok := f.pages[page]
	if !ok {
		return []byte(""), nil
	}
	return body, nil
}

// fakeParser maps body content to pre-built parsed reviews.
type fakeParser struct {
	byBody map[string][]ParsedReview
	err    error
}

func (f *fakeParser) Parse(body []byte) ([]ParsedReview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byBody[string(body)], nil
}

func testProduct() *entity.Product {
	return &entity.Product{ID: 42, Name: "Trailhead Pack 30L", URL: "https://shop.example.com/packs/42/reviews"}
}

func newTestService(products *fakeProductRepo, reviews *fakeReviewRepo, fetcher PageFetcher, parser ReviewParser, cfg Config) *Service {
	return NewService(products, reviews, fetcher, parser, nil, nil, cfg)
}

func TestScrapeProduct_StoresScoredReviews(t *testing.T) {
	reviewed := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	products := &fakeProductRepo{products: []*entity.Product{testProduct()}}
	reviews := newFakeReviewRepo()
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"1": []byte("page-one"),
		"2": []byte("page-two"),
	}}
	parser := &fakeParser{byBody: map[string][]ParsedReview{
		"page-one": {
			{Author: "Dana K.", Rating: 5, Body: "great quality, love it", ReviewedAt: reviewed},
			{Author: "Sam R.", Rating: 2, Body: "broke after a week, terrible", ReviewedAt: reviewed.Add(time.Hour)},
		},
		"page-two": {
			{Author: "Lee P.", Rating: 4, Body: "solid and comfortable", ReviewedAt: reviewed.Add(2 * time.Hour)},
		},
	}}

	svc := newTestService(products, reviews, fetcher, parser, Config{PagesPerProduct: 2})
	stats, err := svc.ScrapeProduct(context.Background(), 42)
	if err != nil {
		t.Fatalf("ScrapeProduct err=%v", err)
	}

	if stats.Pages != 2 || stats.Found != 3 || stats.Inserted != 3 {
		t.Errorf("stats = %+v, want pages=2 found=3 inserted=3", stats)
	}
	if len(reviews.stored) != 3 {
		t.Fatalf("stored %d reviews, want 3", len(reviews.stored))
	}

	// Sentiment must be scored before storage.
	for _, r := range reviews.stored {
		if r.SentimentLabel == "" {
			t.Errorf("review by %q stored without sentiment label", r.Author)
		}
	}
	for _, r := range reviews.stored {
		if r.Author == "Dana K." && r.SentimentLabel != entity.SentimentPositive {
			t.Errorf("Dana K. label = %q, want positive", r.SentimentLabel)
		}
		if r.Author == "Sam R." && r.SentimentLabel != entity.SentimentNegative {
			t.Errorf("Sam R. label = %q, want negative", r.SentimentLabel)
		}
	}
}

func TestScrapeProduct_CountsDuplicates(t *testing.T) {
	reviewed := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	same := ParsedReview{Author: "Dana K.", Rating: 5, Body: "great", ReviewedAt: reviewed}

	products := &fakeProductRepo{products: []*entity.Product{testProduct()}}
	reviews := newFakeReviewRepo()
	fetcher := &fakeFetcher{pages: map[string][]byte{"1": []byte("page-one")}}
	parser := &fakeParser{byBody: map[string][]ParsedReview{
		"page-one": {same, same},
	}}

	svc := newTestService(products, reviews, fetcher, parser, Config{})
	stats, err := svc.ScrapeProduct(context.Background(), 42)
	if err != nil {
		t.Fatalf("ScrapeProduct err=%v", err)
	}

	if stats.Inserted != 1 || stats.Duplicate != 1 {
		t.Errorf("inserted=%d duplicate=%d, want 1/1", stats.Inserted, stats.Duplicate)
	}
}

func TestScrapeProduct_SkipsInvalidReviews(t *testing.T) {
	reviewed := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	products := &fakeProductRepo{products: []*entity.Product{testProduct()}}
	reviews := newFakeReviewRepo()
	fetcher := &fakeFetcher{pages: map[string][]byte{"1": []byte("page-one")}}
	parser := &fakeParser{byBody: map[string][]ParsedReview{
		"page-one": {
			{Author: "No Stars", Rating: 0, Body: "rating missing", ReviewedAt: reviewed},
			{Author: "Dana K.", Rating: 5, Body: "great", ReviewedAt: reviewed},
		},
	}}

	svc := newTestService(products, reviews, fetcher, parser, Config{})
	stats, err := svc.ScrapeProduct(context.Background(), 42)
	if err != nil {
		t.Fatalf("ScrapeProduct err=%v", err)
	}

	if stats.Skipped != 1 || stats.Inserted != 1 {
		t.Errorf("skipped=%d inserted=%d, want 1/1", stats.Skipped, stats.Inserted)
	}
}

func TestScrapeProduct_NotFound(t *testing.T) {
	products := &fakeProductRepo{}
	svc := newTestService(products, newFakeReviewRepo(), &fakeFetcher{}, &fakeParser{}, Config{})

	_, err := svc.ScrapeProduct(context.Background(), 999)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestScrapeProduct_CaptchaPropagates(t *testing.T) {
	products := &fakeProductRepo{products: []*entity.Product{testProduct()}}
	fetcher := &fakeFetcher{err: fmt.Errorf("fetch: %w", ErrCaptchaDetected)}

	svc := newTestService(products, newFakeReviewRepo(), fetcher, &fakeParser{}, Config{})
	_, err := svc.ScrapeProduct(context.Background(), 42)
	if !errors.Is(err, ErrCaptchaDetected) {
		t.Fatalf("err = %v, want ErrCaptchaDetected", err)
	}
}

func TestScrapeAllProducts_ContinuesPastFailures(t *testing.T) {
	reviewed := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	broken := &entity.Product{ID: 1, Name: "Broken", URL: "https://shop.example.com/packs/1/reviews"}
	healthy := &entity.Product{ID: 2, Name: "Healthy", URL: "https://shop.example.com/packs/2/reviews"}

	products := &fakeProductRepo{products: []*entity.Product{broken, healthy}}
	reviews := newFakeReviewRepo()

	// Fail the first product's fetch, then serve the second one normally.
	fetcher := &flakyFetcher{
		failURL: broken.URL,
		body:    []byte("page-one"),
	}
	parser := &fakeParser{byBody: map[string][]ParsedReview{
		"page-one": {{Author: "Dana K.", Rating: 4, Body: "good", ReviewedAt: reviewed}},
	}}

	svc := newTestService(products, reviews, fetcher, parser, Config{})
	stats, err := svc.ScrapeAllProducts(context.Background())
	if err != nil {
		t.Fatalf("ScrapeAllProducts err=%v", err)
	}

	if stats.Products != 2 {
		t.Errorf("products = %d, want 2", stats.Products)
	}
	if stats.Inserted != 1 {
		t.Errorf("inserted = %d, want 1 (healthy product only)", stats.Inserted)
	}
}

// flakyFetcher fails requests for one URL and serves a fixed body otherwise.
type flakyFetcher struct {
	failURL string
	body    []byte
}

func (f *flakyFetcher) Fetch(ctx context.Context, req PageRequest) ([]byte, error) {
	if req.URL == f.failURL {
		return nil, fmt.Errorf("fetch %s: %w", req.URL, ErrRetryExhausted)
	}
	return f.body, nil
}

func TestScrapeAllProducts_CancelAborts(t *testing.T) {
	products := &fakeProductRepo{products: []*entity.Product{testProduct()}}
	svc := newTestService(products, newFakeReviewRepo(), &fakeFetcher{}, &fakeParser{}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ScrapeAllProducts(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PagesPerProduct != 1 || cfg.PageParallelism != 3 || cfg.PageParam != "page" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestNewService_AppliesDefaults(t *testing.T) {
	svc := newTestService(&fakeProductRepo{}, newFakeReviewRepo(), &fakeFetcher{}, &fakeParser{}, Config{})
	if svc.Config.PagesPerProduct != 1 {
		t.Errorf("PagesPerProduct = %d, want 1", svc.Config.PagesPerProduct)
	}
	if svc.Config.PageParallelism != 3 {
		t.Errorf("PageParallelism = %d, want 3", svc.Config.PageParallelism)
	}
	if svc.Analyzer == nil {
		t.Error("Analyzer not defaulted")
	}
	if svc.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestClassifyScrapeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", ErrCaptchaDetected), "captcha"},
		{fmt.Errorf("x: %w", ErrRetryExhausted), "exhausted"},
		{fmt.Errorf("x: %w", ErrFatalTransport), "transport"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := classifyScrapeError(tt.err); got != tt.want {
			t.Errorf("classifyScrapeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSentimentTrendFn_EmptyProduct(t *testing.T) {
	svc := newTestService(&fakeProductRepo{}, newFakeReviewRepo(), &fakeFetcher{}, &fakeParser{}, Config{})

	got, err := svc.SentimentTrendFn(42, 30, "day")(context.Background())
	if err != nil {
		t.Fatalf("trend fn err=%v", err)
	}
	result, ok := got.(TrendResult)
	if !ok {
		t.Fatalf("payload type %T", got)
	}
	if result.ProductID != 42 || result.Days != 30 || result.Bucket != "day" {
		t.Errorf("unexpected result header: %+v", result)
	}
	if len(result.Points) != 0 {
		t.Errorf("expected empty points, got %d", len(result.Points))
	}
}

func TestRatingSummaryFn(t *testing.T) {
	reviews := newFakeReviewRepo()
	reviewed := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	seed := []*entity.Review{
		{ProductID: 42, Author: "a", Rating: 5, Body: "great", SentimentScore: 1, SentimentLabel: entity.SentimentPositive, ReviewedAt: reviewed},
		{ProductID: 42, Author: "b", Rating: 5, Body: "great", SentimentScore: 1, SentimentLabel: entity.SentimentPositive, ReviewedAt: reviewed},
		{ProductID: 42, Author: "c", Rating: 2, Body: "bad", SentimentScore: -1, SentimentLabel: entity.SentimentNegative, ReviewedAt: reviewed},
	}
	for _, r := range seed {
		if _, err := reviews.Upsert(context.Background(), r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := newTestService(&fakeProductRepo{}, reviews, &fakeFetcher{}, &fakeParser{}, Config{})
	got, err := svc.RatingSummaryFn(42)(context.Background())
	if err != nil {
		t.Fatalf("summary fn err=%v", err)
	}
	result, ok := got.(RatingSummaryResult)
	if !ok {
		t.Fatalf("payload type %T", got)
	}

	if result.ReviewCount != 3 {
		t.Errorf("ReviewCount = %d, want 3", result.ReviewCount)
	}
	if result.Histogram[5] != 2 || result.Histogram[2] != 1 {
		t.Errorf("histogram = %v", result.Histogram)
	}
	want := (5.0*2 + 2.0) / 3.0
	if result.MeanRating != want {
		t.Errorf("MeanRating = %f, want %f", result.MeanRating, want)
	}
	if result.Positive != 2 || result.Negative != 1 || result.Neutral != 0 {
		t.Errorf("sentiment split = %d/%d/%d", result.Positive, result.Negative, result.Neutral)
	}
}

func TestRatingSummaryFn_EmptyProduct(t *testing.T) {
	svc := newTestService(&fakeProductRepo{}, newFakeReviewRepo(), &fakeFetcher{}, &fakeParser{}, Config{})

	got, err := svc.RatingSummaryFn(42)(context.Background())
	if err != nil {
		t.Fatalf("summary fn err=%v", err)
	}
	result := got.(RatingSummaryResult)
	if result.ReviewCount != 0 || result.MeanRating != 0 {
		t.Errorf("expected zeroed summary, got %+v", result)
	}
}
