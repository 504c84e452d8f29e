// Package parser extracts review fields from fetched HTML using CSS selectors.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"review-pulse/internal/usecase/scrape"
)

// SelectorConfig locates review fields inside a page. Selectors are standard
// CSS selectors evaluated relative to each review block.
type SelectorConfig struct {
	// ReviewSelector matches one element per review block.
	ReviewSelector string

	// AuthorSelector matches the reviewer name inside a block.
	AuthorSelector string

	// RatingSelector matches the element whose text carries the star rating,
	// e.g. "4.0 out of 5 stars" or "4/5".
	RatingSelector string

	// BodySelector matches the review text inside a block.
	BodySelector string

	// DateSelector matches the review date inside a block.
	DateSelector string

	// DateFormat is the Go reference layout for DateSelector's text.
	// Default: "January 2, 2006"
	DateFormat string
}

// DefaultSelectors returns a selector set matching the common review page
// markup the scraper targets.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		ReviewSelector: ".review",
		AuthorSelector: ".review-author",
		RatingSelector: ".review-rating",
		BodySelector:   ".review-body",
		DateSelector:   ".review-date",
		DateFormat:     "January 2, 2006",
	}
}

// Validate checks that the required selectors are present.
func (c *SelectorConfig) Validate() error {
	if c.ReviewSelector == "" {
		return fmt.Errorf("review selector must not be empty")
	}
	if c.BodySelector == "" {
		return fmt.Errorf("body selector must not be empty")
	}
	return nil
}

// ReviewParser implements scrape.ReviewParser with goquery.
type ReviewParser struct {
	config SelectorConfig
	logger *slog.Logger
}

// NewReviewParser creates a ReviewParser with the given selector configuration.
func NewReviewParser(cfg SelectorConfig, logger *slog.Logger) (*ReviewParser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parser config: %w", err)
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = "January 2, 2006"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewParser{config: cfg, logger: logger}, nil
}

// ratingPattern extracts the leading number from rating text such as
// "4.0 out of 5 stars", "4/5" or "Rated 3".
var ratingPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// Parse extracts reviews from an HTML page in document order.
// Blocks without body text are skipped; a page with no recognizable review
// blocks yields an empty slice.
func (p *ReviewParser) Parse(body []byte) ([]scrape.ParsedReview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var reviews []scrape.ParsedReview
	doc.Find(p.config.ReviewSelector).Each(func(i int, block *goquery.Selection) {
		text := strings.TrimSpace(block.Find(p.config.BodySelector).Text())
		if text == "" {
			p.logger.Debug("skipping review block with empty body", slog.Int("index", i))
			return
		}

		author := strings.TrimSpace(block.Find(p.config.AuthorSelector).Text())
		if author == "" {
			author = "Anonymous"
		}

		reviews = append(reviews, scrape.ParsedReview{
			Author:     author,
			Rating:     p.parseRating(block),
			Body:       text,
			ReviewedAt: p.parseDate(block, i),
		})
	})

	return reviews, nil
}

// parseRating reads the star rating from a block. Fractional ratings round to
// the nearest star; missing or unparseable ratings become 0 (unknown).
func (p *ReviewParser) parseRating(block *goquery.Selection) int {
	raw := strings.TrimSpace(block.Find(p.config.RatingSelector).Text())
	if raw == "" {
		if v, ok := block.Find(p.config.RatingSelector).Attr("data-rating"); ok {
			raw = v
		}
	}
	match := ratingPattern.FindString(raw)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	rating := int(value + 0.5)
	if rating < 0 || rating > 5 {
		return 0
	}
	return rating
}

// parseDate reads the review date from a block. Unparseable dates become the
// zero time rather than failing the whole page.
func (p *ReviewParser) parseDate(block *goquery.Selection, index int) time.Time {
	raw := strings.TrimSpace(block.Find(p.config.DateSelector).Text())
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{p.config.DateFormat, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	p.logger.Debug("unparseable review date",
		slog.Int("index", index),
		slog.String("raw", raw))
	return time.Time{}
}
