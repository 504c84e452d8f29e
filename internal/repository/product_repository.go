package repository

import (
	"context"

	"review-pulse/internal/domain/entity"
)

type ProductRepository interface {
	List(ctx context.Context) ([]*entity.Product, error)
	// Get retrieves a product by ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, id int64) (*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error
	ExistsByURL(ctx context.Context, url string) (bool, error)
}
