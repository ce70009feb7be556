package orders

import "time"

// Line is the frozen snapshot of one ordered item. Price and size are
// captured at purchase time and never re-derived from the live catalog.
type Line struct {
	ProductID  string `json:"product_id"`
	Size       string `json:"size"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Order is immutable after creation except for Status.
type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	OrderNum   string    `json:"order_num"`
	Status     Status    `json:"status"`
	TotalCents int       `json:"total_cents"`
	ShipTo     Address   `json:"ship_to"`
	Contact    Contact   `json:"contact"`
	Lines      []Line    `json:"lines"`
	CreatedAt  time.Time `json:"created_at"`
}
