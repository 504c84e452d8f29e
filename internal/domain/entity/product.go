// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Product, Review and StatRecord,
// along with their validation rules and domain-specific errors.
package entity

import "time"

// Product represents a product whose review pages are scraped and scored.
// The URL points at the product's review listing on the remote site.
type Product struct {
	ID        int64
	Name      string
	URL       string
	CreatedAt time.Time
}

// Validate checks the product fields before persistence.
// Returns a ValidationError describing the first invalid field.
func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if len(p.Name) > 255 {
		return &ValidationError{Field: "name", Message: "must not exceed 255 characters"}
	}
	return ValidateURL(p.URL)
}
