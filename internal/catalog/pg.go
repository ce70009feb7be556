package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGReader struct{ DB *pgxpool.Pool }

func (r *PGReader) Product(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, sku, name, image, description, price_cents, status, is_deleted, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.Image, &p.Description, &p.PriceCents, &p.Status, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return Product{}, err
	}
	if p.Stock, err = r.stockOf(ctx, p.ID); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PGReader) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, name, image, description, price_cents, status, is_deleted, created_at, updated_at
		FROM products
		WHERE status=$1 AND NOT is_deleted
		ORDER BY sku`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Image, &p.Description, &p.PriceCents, &p.Status, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Stock, err = r.stockOf(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PGReader) stockOf(ctx context.Context, productID string) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT size, qty FROM product_stock WHERE product_id=$1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stock := map[string]int{}
	for rows.Next() {
		var size string
		var qty int
		if err := rows.Scan(&size, &qty); err != nil {
			return nil, err
		}
		stock[size] = qty
	}
	return stock, rows.Err()
}
