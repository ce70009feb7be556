package catalog

import "context"

// Reader is the read surface the cart and checkout flows need from the
// catalog. Product CRUD beyond stock lives upstream.
type Reader interface {
	// Product returns a single product by id, deleted ones included so
	// order history can still resolve names.
	Product(ctx context.Context, id string) (Product, error)
	// Products lists active, non-deleted products ordered by SKU.
	Products(ctx context.Context) ([]Product, error)
}
