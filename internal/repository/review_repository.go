package repository

import (
	"context"
	"time"

	"review-pulse/internal/domain/entity"
)

// RatingBucket is one rating level's share of a product's reviews.
type RatingBucket struct {
	Rating int
	Count  int64
}

// SentimentPoint is one time bucket of a product's sentiment distribution.
type SentimentPoint struct {
	Bucket       time.Time
	AverageScore float64
	ReviewCount  int64
	Positive     int64
	Negative     int64
	Neutral      int64
}

type ReviewRepository interface {
	// ListByProduct retrieves a product's reviews ordered by reviewed_at DESC.
	ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]*entity.Review, error)
	CountByProduct(ctx context.Context, productID int64) (int64, error)
	// Upsert inserts a review or leaves the existing row untouched when one
	// with the same (product_id, author, reviewed_at) already exists.
	// Returns true when a new row was inserted.
	Upsert(ctx context.Context, review *entity.Review) (bool, error)
	// RatingSummary aggregates review counts per rating level for a product.
	RatingSummary(ctx context.Context, productID int64) ([]RatingBucket, error)
	// SentimentTrend aggregates average sentiment per time bucket over the
	// trailing window. bucket is a SQL-safe unit: "day" or "week".
	SentimentTrend(ctx context.Context, productID int64, since time.Time, bucket string) ([]SentimentPoint, error)
}
