package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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
WHERE id = ?
LIMIT 1`
	var product entity.Product
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.URL, &product.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: QueryRowContext: %w", err)
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
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]*entity.Product, 0, 50)
	for rows.Next() {
		var product entity.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.URL, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}

func (repo *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	const query = `
INSERT INTO products (name, url, created_at)
VALUES (?, ?, ?)`
	now := time.Now().UTC()
	result, err := repo.db.ExecContext(ctx, query, product.Name, product.URL, now)
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}
	product.ID = id
	product.CreatedAt = now
	return nil
}

func (repo *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	const query = `
UPDATE products
SET name = ?, url = ?
WHERE id = ?`
	result, err := repo.db.ExecContext(ctx, query, product.Name, product.URL, product.ID)
	if err != nil {
		return fmt.Errorf("Update: ExecContext: %w", err)
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
	const query = `DELETE FROM products WHERE id = ?`
	result, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
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
	const query = `SELECT EXISTS(SELECT 1 FROM products WHERE url = ?)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: QueryRowContext: %w", err)
	}
	return exists, nil
}
