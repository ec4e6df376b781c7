package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dibasaye/finance-manager/internal/models"
)

// CreateProduct creates a new product in the database
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, product_type, interest_rate, min_amount, max_amount, min_duration, max_duration, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.ProductType, product.InterestRate, product.MinAmount, product.MaxAmount,
		product.MinDuration, product.MaxDuration, product.Description, product.Active, product.CreatedAt).
		Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct updates a product definition
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, product_type = $3, interest_rate = $4, min_amount = $5, max_amount = $6,
		    min_duration = $7, max_duration = $8, description = $9, active = $10
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.ProductType, product.InterestRate, product.MinAmount,
		product.MaxAmount, product.MinDuration, product.MaxDuration, product.Description, product.Active)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product %d: %w", product.ID, ErrNotFound)
	}
	return nil
}

// FindProductByID retrieves a product by primary key
func (r *Repository) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT id, name, product_type, interest_rate, min_amount, max_amount, min_duration, max_duration, description, active, created_at
		FROM products
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&product.ID, &product.Name, &product.ProductType, &product.InterestRate, &product.MinAmount,
			&product.MaxAmount, &product.MinDuration, &product.MaxDuration, &product.Description, &product.Active, &product.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// ListProducts retrieves products, optionally filtered by type and active
// flag, newest first
func (r *Repository) ListProducts(ctx context.Context, productType string, activeOnly bool) ([]models.Product, error) {
	query := `
		SELECT id, name, product_type, interest_rate, min_amount, max_amount, min_duration, max_duration, description, active, created_at
		FROM products
		WHERE ($1 = '' OR product_type = $1) AND ($2 = FALSE OR active = TRUE)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, productType, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ProductType, &p.InterestRate, &p.MinAmount,
			&p.MaxAmount, &p.MinDuration, &p.MaxDuration, &p.Description, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
