package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/observability/metrics"
	"review-pulse/internal/repository"
	"review-pulse/internal/utils/sentiment"
)

// defaultPageParallelism bounds concurrent page fetches per product.
// The fetcher's per-host rate limiter keeps this polite toward the site.
const defaultPageParallelism = 3

// Config holds scrape orchestration settings.
type Config struct {
	// PagesPerProduct is how many listing pages to walk per product.
	// Default: 1
	PagesPerProduct int

	// PageParallelism bounds concurrent page fetches. Default: 3
	PageParallelism int

	// PageParam is the query parameter carrying the page number.
	// Default: "page"
	PageParam string
}

// DefaultConfig returns the production defaults for scrape orchestration.
func DefaultConfig() Config {
	return Config{
		PagesPerProduct: 1,
		PageParallelism: defaultPageParallelism,
		PageParam:       "page",
	}
}

// Service orchestrates review acquisition: fetch pages, extract review
// fields, score sentiment, and upsert into the review store.
type Service struct {
	ProductRepo repository.ProductRepository
	ReviewRepo  repository.ReviewRepository
	Fetcher     PageFetcher
	Parser      ReviewParser
	Analyzer    *sentiment.Analyzer
	Logger      *slog.Logger
	Config      Config
}

// NewService creates a scrape service with the given collaborators.
func NewService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	fetcher PageFetcher,
	parser ReviewParser,
	analyzer *sentiment.Analyzer,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzer == nil {
		analyzer = sentiment.NewAnalyzer()
	}
	if cfg.PagesPerProduct < 1 {
		cfg.PagesPerProduct = 1
	}
	if cfg.PageParallelism < 1 {
		cfg.PageParallelism = defaultPageParallelism
	}
	if cfg.PageParam == "" {
		cfg.PageParam = "page"
	}
	return &Service{
		ProductRepo: productRepo,
		ReviewRepo:  reviewRepo,
		Fetcher:     fetcher,
		Parser:      parser,
		Analyzer:    analyzer,
		Logger:      logger,
		Config:      cfg,
	}
}

// Stats contains counters for one scrape run.
type Stats struct {
	Products  int
	Pages     int64
	Found     int64
	Inserted  int64
	Duplicate int64
	Skipped   int64
	Duration  time.Duration
}

// ScrapeAllProducts walks every product's review pages.
// A product that fails (CAPTCHA, exhausted retries) is logged and skipped;
// the run continues with the remaining products.
func (s *Service) ScrapeAllProducts(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	products, err := s.ProductRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	stats.Products = len(products)

	for _, product := range products {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if err := s.scrapeProduct(ctx, product, stats); err != nil {
			// Caller cancellation aborts the run; per-product failures don't.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			s.Logger.Warn("product scrape failed, continuing",
				slog.Int64("product_id", product.ID),
				slog.String("url", product.URL),
				slog.Any("error", err))
		}
	}

	stats.Duration = time.Since(start)
	s.Logger.Info("scrape run completed",
		slog.Int("products", stats.Products),
		slog.Int64("pages", stats.Pages),
		slog.Int64("reviews_found", stats.Found),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicate", stats.Duplicate),
		slog.Int64("skipped", stats.Skipped),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// ScrapeProduct scrapes one product by ID.
func (s *Service) ScrapeProduct(ctx context.Context, productID int64) (*Stats, error) {
	product, err := s.ProductRepo.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, entity.ErrNotFound
	}

	start := time.Now()
	stats := &Stats{Products: 1}
	if err := s.scrapeProduct(ctx, product, stats); err != nil {
		return stats, err
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

// scrapeProduct fetches the product's review pages with bounded concurrency
// and stores the extracted reviews.
func (s *Service) scrapeProduct(ctx context.Context, product *entity.Product, stats *Stats) error {
	start := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.Config.PageParallelism)

	for page := 1; page <= s.Config.PagesPerProduct; page++ {
		page := page
		eg.Go(func() error {
			return s.scrapePage(egCtx, product, page, stats)
		})
	}
	err := eg.Wait()

	metrics.RecordProductScrape(product.ID, time.Since(start),
		atomic.LoadInt64(&stats.Found), atomic.LoadInt64(&stats.Inserted))
	if err != nil {
		metrics.RecordScrapeError(product.ID, classifyScrapeError(err))
	}
	return err
}

// scrapePage fetches and processes one listing page.
func (s *Service) scrapePage(ctx context.Context, product *entity.Product, page int, stats *Stats) error {
	req := PageRequest{URL: product.URL}
	if page > 1 {
		req.Query = map[string]string{s.Config.PageParam: strconv.Itoa(page)}
	}

	body, err := s.Fetcher.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch page %d: %w", page, err)
	}
	atomic.AddInt64(&stats.Pages, 1)

	parsed, err := s.Parser.Parse(body)
	if err != nil {
		return fmt.Errorf("parse page %d: %w", page, err)
	}
	if len(parsed) == 0 {
		s.Logger.Debug("no reviews on page",
			slog.Int64("product_id", product.ID),
			slog.Int("page", page))
		return nil
	}

	for _, p := range parsed {
		atomic.AddInt64(&stats.Found, 1)

		score, label := s.Analyzer.Analyze(p.Body)
		review := &entity.Review{
			ProductID:      product.ID,
			Author:         p.Author,
			Rating:         p.Rating,
			Body:           p.Body,
			SentimentScore: score,
			SentimentLabel: label,
			ReviewedAt:     p.ReviewedAt,
		}
		if err := review.Validate(); err != nil {
			atomic.AddInt64(&stats.Skipped, 1)
			s.Logger.Debug("skipping invalid review",
				slog.Int64("product_id", product.ID),
				slog.String("author", p.Author),
				slog.Any("error", err))
			continue
		}

		inserted, err := s.ReviewRepo.Upsert(ctx, review)
		if err != nil {
			return fmt.Errorf("store review: %w", err)
		}
		if inserted {
			atomic.AddInt64(&stats.Inserted, 1)
		} else {
			atomic.AddInt64(&stats.Duplicate, 1)
		}
	}
	return nil
}

func classifyScrapeError(err error) string {
	switch {
	case errors.Is(err, ErrCaptchaDetected):
		return "captcha"
	case errors.Is(err, ErrRetryExhausted):
		return "exhausted"
	case errors.Is(err, ErrFatalTransport):
		return "transport"
	default:
		return "other"
	}
}
