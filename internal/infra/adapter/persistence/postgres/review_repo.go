package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/repository"
)

type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) repository.ReviewRepository {
	return &ReviewRepo{db: db}
}

func (repo *ReviewRepo) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]*entity.Review, error) {
	const query = `
SELECT id, product_id, author, rating, body, sentiment_score, sentiment_label, reviewed_at, created_at
FROM reviews
WHERE product_id = $1
ORDER BY reviewed_at DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByProduct: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]*entity.Review, 0, limit)
	for rows.Next() {
		var review entity.Review
		if err := rows.Scan(
			&review.ID, &review.ProductID, &review.Author, &review.Rating, &review.Body,
			&review.SentimentScore, &review.SentimentLabel, &review.ReviewedAt, &review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListByProduct: %w", err)
		}
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}

func (repo *ReviewRepo) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM reviews WHERE product_id = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByProduct: %w", err)
	}
	return count, nil
}

// Upsert inserts a review, silently keeping the existing row on a
// (product_id, author, reviewed_at) collision. RETURNING only fires on
// insert, so sql.ErrNoRows means the review was already stored.
func (repo *ReviewRepo) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	const query = `
INSERT INTO reviews (product_id, author, rating, body, sentiment_score, sentiment_label, reviewed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (product_id, author, reviewed_at) DO NOTHING
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		review.ProductID, review.Author, review.Rating, review.Body,
		review.SentimentScore, review.SentimentLabel, review.ReviewedAt,
	).Scan(&review.ID, &review.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Upsert: %w", err)
	}
	return true, nil
}

func (repo *ReviewRepo) RatingSummary(ctx context.Context, productID int64) ([]repository.RatingBucket, error) {
	const query = `
SELECT rating, COUNT(*)
FROM reviews
WHERE product_id = $1
GROUP BY rating
ORDER BY rating ASC`
	rows, err := repo.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("RatingSummary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	buckets := make([]repository.RatingBucket, 0, 5)
	for rows.Next() {
		var bucket repository.RatingBucket
		if err := rows.Scan(&bucket.Rating, &bucket.Count); err != nil {
			return nil, fmt.Errorf("RatingSummary: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (repo *ReviewRepo) SentimentTrend(ctx context.Context, productID int64, since time.Time, bucket string) ([]repository.SentimentPoint, error) {
	// bucket feeds date_trunc and must come from the whitelist, never from
	// user input.
	if bucket != "day" && bucket != "week" {
		return nil, fmt.Errorf("SentimentTrend: unsupported bucket %q", bucket)
	}
	query := fmt.Sprintf(`
SELECT date_trunc('%s', reviewed_at) AS bucket,
       AVG(sentiment_score),
       COUNT(*),
       COUNT(*) FILTER (WHERE sentiment_label = 'positive'),
       COUNT(*) FILTER (WHERE sentiment_label = 'negative'),
       COUNT(*) FILTER (WHERE sentiment_label = 'neutral')
FROM reviews
WHERE product_id = $1 AND reviewed_at >= $2
GROUP BY bucket
ORDER BY bucket ASC`, bucket)
	rows, err := repo.db.QueryContext(ctx, query, productID, since)
	if err != nil {
		return nil, fmt.Errorf("SentimentTrend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	points := make([]repository.SentimentPoint, 0, 31)
	for rows.Next() {
		var point repository.SentimentPoint
		if err := rows.Scan(&point.Bucket, &point.AverageScore, &point.ReviewCount,
			&point.Positive, &point.Negative, &point.Neutral); err != nil {
			return nil, fmt.Errorf("SentimentTrend: %w", err)
		}
		points = append(points, point)
	}
	return points, rows.Err()
}
