package scrape

import (
	"context"
	"fmt"
	"time"
)

// Stats type names for the resolver. The trend type embeds its window and
// bucket so different windows cache independently:
// "sentiment_trend:30:day", "rating_summary".
const (
	StatsTypeRatingSummary = "rating_summary"
	statsTypeTrendFmt      = "sentiment_trend:%d:%s"
)

// TrendStatsType builds the stats type name for a trend window.
func TrendStatsType(days int, bucket string) string {
	return fmt.Sprintf(statsTypeTrendFmt, days, bucket)
}

// TrendPoint is one bucket of the sentiment trend payload.
type TrendPoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	ReviewCount  int64   `json:"review_count"`
	Positive     int64   `json:"positive"`
	Negative     int64   `json:"negative"`
	Neutral      int64   `json:"neutral"`
}

// TrendResult is the sentiment_trend payload.
type TrendResult struct {
	ProductID int64        `json:"product_id"`
	Days      int          `json:"days"`
	Bucket    string       `json:"bucket"`
	Points    []TrendPoint `json:"points"`
}

// RatingSummaryResult is the rating_summary payload.
type RatingSummaryResult struct {
	ProductID   int64         `json:"product_id"`
	ReviewCount int64         `json:"review_count"`
	MeanRating  float64       `json:"mean_rating"`
	Histogram   map[int]int64 `json:"histogram"`
	Positive    int64         `json:"positive"`
	Negative    int64         `json:"negative"`
	Neutral     int64         `json:"neutral"`
}

// SentimentTrendFn returns a compute function producing the sentiment trend
// for one product. A product with no reviews yields an empty point list, not
// an error.
func (s *Service) SentimentTrendFn(productID int64, days int, bucket string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		points, err := s.ReviewRepo.SentimentTrend(ctx, productID, since, bucket)
		if err != nil {
			return nil, fmt.Errorf("sentiment trend for product %d: %w", productID, err)
		}
		result := TrendResult{
			ProductID: productID,
			Days:      days,
			Bucket:    bucket,
			Points:    make([]TrendPoint, 0, len(points)),
		}
		for _, p := range points {
			result.Points = append(result.Points, TrendPoint{
				Date:         p.Bucket.Format("2006-01-02"),
				AverageScore: p.AverageScore,
				ReviewCount:  p.ReviewCount,
				Positive:     p.Positive,
				Negative:     p.Negative,
				Neutral:      p.Neutral,
			})
		}
		return result, nil
	}
}

// RatingSummaryFn returns a compute function producing the rating summary for
// one product. A product with no reviews yields a zeroed summary with an
// empty histogram, not an error.
func (s *Service) RatingSummaryFn(productID int64) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		buckets, err := s.ReviewRepo.RatingSummary(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("rating summary for product %d: %w", productID, err)
		}
		result := RatingSummaryResult{
			ProductID: productID,
			Histogram: make(map[int]int64, len(buckets)),
		}
		var weighted int64
		for _, b := range buckets {
			result.Histogram[b.Rating] = b.Count
			result.ReviewCount += b.Count
			weighted += int64(b.Rating) * b.Count
		}
		if result.ReviewCount > 0 {
			result.MeanRating = float64(weighted) / float64(result.ReviewCount)
		}

		// The sentiment split comes from the full-history trend query.
		points, err := s.ReviewRepo.SentimentTrend(ctx, productID, time.Time{}, "day")
		if err != nil {
			return nil, fmt.Errorf("sentiment split for product %d: %w", productID, err)
		}
		for _, p := range points {
			result.Positive += p.Positive
			result.Negative += p.Negative
			result.Neutral += p.Neutral
		}
		return result, nil
	}
}
