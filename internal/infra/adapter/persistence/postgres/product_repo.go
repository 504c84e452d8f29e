package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/repository"
)

type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) repository.ProductRepository {
	return &ProductRepo{db: db}
}

func (repo *ProductRepo) Get(ctx context.Context, id int64) (*entity.Product, error) {
	const query = `
SELECT id, name, url, created_at
FROM products
WHERE id = $1
LIMIT 1`
	var product entity.Product
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.URL, &product.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &product, nil
}

func (repo *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	const query = `
SELECT id, name, url, created_at
FROM products
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]*entity.Product, 0, 50)
	for rows.Next() {
		var product entity.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.URL, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}

func (repo *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	const query = `
INSERT INTO products (name, url, created_at)
VALUES ($1, $2, NOW())
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query, product.Name, product.URL).
		Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	const query = `
UPDATE products
SET name = $1, url = $2
WHERE id = $3`
	result, err := repo.db.ExecContext(ctx, query, product.Name, product.URL, product.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: RowsAffected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *ProductRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id = $1`
	result, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *ProductRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM products WHERE url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}
