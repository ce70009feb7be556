package catalog

import "time"

// Product is the catalog record. Stock maps size label -> available qty;
// it is read here for display, the authoritative mutations go through
// the stock ledger.
type Product struct {
	ID          string         `json:"id"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Image       string         `json:"image"`
	Description string         `json:"description"`
	PriceCents  int            `json:"price_cents"`
	Stock       map[string]int `json:"stock"`
	Status      string         `json:"status"`
	IsDeleted   bool           `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

const StatusActive = "active"

// HasSize reports whether the product carries the given size label at all,
// regardless of remaining quantity.
func (p Product) HasSize(size string) bool {
	_, ok := p.Stock[size]
	return ok
}
