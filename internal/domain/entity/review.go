package entity

import "time"

// Sentiment labels assigned to a review after scoring.
// The canonical thresholds live in utils/sentiment; entities only carry the result.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Review represents a single scraped product review with its sentiment score.
// Reviews are deduplicated by (ProductID, Author, ReviewedAt) at the persistence layer.
type Review struct {
	ID             int64
	ProductID      int64
	Author         string
	Rating         int
	Body           string
	SentimentScore float64
	SentimentLabel string
	ReviewedAt     time.Time
	CreatedAt      time.Time
}

// Validate checks the review fields before persistence.
func (r *Review) Validate() error {
	if r.ProductID <= 0 {
		return &ValidationError{Field: "product_id", Message: "must be positive"}
	}
	if r.Rating < 1 || r.Rating > 5 {
		return &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}
	if r.Body == "" {
		return &ValidationError{Field: "body", Message: "is required"}
	}
	switch r.SentimentLabel {
	case SentimentPositive, SentimentNegative, SentimentNeutral, "":
	default:
		return &ValidationError{Field: "sentiment_label", Message: "must be positive, negative or neutral"}
	}
	return nil
}
