package product

import "time"

type DTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewDTO struct {
	ID             int64     `json:"id"`
	Author         string    `json:"author"`
	Rating         int       `json:"rating"`
	Body           string    `json:"body"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}
