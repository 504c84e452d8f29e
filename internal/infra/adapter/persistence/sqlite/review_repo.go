package sqlite

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
WHERE product_id = ?
ORDER BY reviewed_at DESC
LIMIT ? OFFSET ?`
	rows, err := repo.db.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByProduct: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]*entity.Review, 0, limit)
	for rows.Next() {
		var review entity.Review
		if err := rows.Scan(
			&review.ID, &review.ProductID, &review.Author, &review.Rating, &review.Body,
			&review.SentimentScore, &review.SentimentLabel, &review.ReviewedAt, &review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListByProduct: Scan: %w", err)
		}
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}

func (repo *ReviewRepo) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM reviews WHERE product_id = ?`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByProduct: QueryRowContext: %w", err)
	}
	return count, nil
}

func (repo *ReviewRepo) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	const query = `
INSERT INTO reviews (product_id, author, rating, body, sentiment_score, sentiment_label, reviewed_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (product_id, author, reviewed_at) DO NOTHING`
	now := time.Now().UTC()
	result, err := repo.db.ExecContext(ctx, query,
		review.ProductID, review.Author, review.Rating, review.Body,
		review.SentimentScore, review.SentimentLabel, review.ReviewedAt, now,
	)
	if err != nil {
		return false, fmt.Errorf("Upsert: ExecContext: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Upsert: RowsAffected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("Upsert: LastInsertId: %w", err)
	}
	review.ID = id
	review.CreatedAt = now
	return true, nil
}

func (repo *ReviewRepo) RatingSummary(ctx context.Context, productID int64) ([]repository.RatingBucket, error) {
	const query = `
SELECT rating, COUNT(*)
FROM reviews
WHERE product_id = ?
GROUP BY rating
ORDER BY rating ASC`
	rows, err := repo.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("RatingSummary: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	buckets := make([]repository.RatingBucket, 0, 5)
	for rows.Next() {
		var bucket repository.RatingBucket
		if err := rows.Scan(&bucket.Rating, &bucket.Count); err != nil {
			return nil, fmt.Errorf("RatingSummary: Scan: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (repo *ReviewRepo) SentimentTrend(ctx context.Context, productID int64, since time.Time, bucket string) ([]repository.SentimentPoint, error) {
	// SQLite has no date_trunc; day buckets use date(), week buckets snap to
	// the preceding Monday. bucket comes from the whitelist, never user input.
	var bucketExpr string
	switch bucket {
	case "day":
		bucketExpr = `date(reviewed_at)`
	case "week":
		bucketExpr = `date(reviewed_at, 'weekday 1', '-7 days')`
	default:
		return nil, fmt.Errorf("SentimentTrend: unsupported bucket %q", bucket)
	}
	query := fmt.Sprintf(`
SELECT %s AS bucket,
       AVG(sentiment_score),
       COUNT(*),
       SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END),
       SUM(CASE WHEN sentiment_label = 'negative' THEN 1 ELSE 0 END),
       SUM(CASE WHEN sentiment_label = 'neutral' THEN 1 ELSE 0 END)
FROM reviews
WHERE product_id = ? AND reviewed_at >= ?
GROUP BY bucket
ORDER BY bucket ASC`, bucketExpr)
	rows, err := repo.db.QueryContext(ctx, query, productID, since)
	if err != nil {
		return nil, fmt.Errorf("SentimentTrend: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	points := make([]repository.SentimentPoint, 0, 31)
	for rows.Next() {
		var raw string
		var point repository.SentimentPoint
		if err := rows.Scan(&raw, &point.AverageScore, &point.ReviewCount,
			&point.Positive, &point.Negative, &point.Neutral); err != nil {
			return nil, fmt.Errorf("SentimentTrend: Scan: %w", err)
		}
		point.Bucket, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("SentimentTrend: parse bucket %q: %w", raw, err)
		}
		points = append(points, point)
	}
	return points, rows.Err()
}
