package entity

import (
	"strings"
	"testing"
)

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{
			name:    "valid product",
			product: Product{Name: "Wireless Earbuds", URL: "https://example.com/products/123/reviews"},
			wantErr: false,
		},
		{
			name:    "missing name",
			product: Product{URL: "https://example.com/products/123/reviews"},
			wantErr: true,
		},
		{
			name:    "name too long",
			product: Product{Name: strings.Repeat("a", 256), URL: "https://example.com/p"},
			wantErr: true,
		},
		{
			name:    "missing URL",
			product: Product{Name: "Wireless Earbuds"},
			wantErr: true,
		},
		{
			name:    "non-http scheme",
			product: Product{Name: "Wireless Earbuds", URL: "ftp://example.com/p"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
