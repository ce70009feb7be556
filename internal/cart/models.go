package cart

import "context"

// Line is one (product, size, qty) entry, unique by (ProductID, Size)
// within a cart. Repeated adds merge into the existing line.
type Line struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

type Cart struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Lines  []Line `json:"lines"`
}

// ItemCount sums line quantities. Distinct from len(Lines), which is the
// badge value; both metrics are part of the contract.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Qty
	}
	return n
}

// Store persists per-user carts. Carts are created lazily on first add and
// emptied, never deleted, when an order is placed from them.
type Store interface {
	AddLine(ctx context.Context, userID, productID, size string, qty int) (Cart, error)
	Get(ctx context.Context, userID string) (Cart, error)
	SetLineQty(ctx context.Context, userID, lineID string, qty int) (Cart, error)
	RemoveLine(ctx context.Context, userID, lineID string) (Cart, error)
	Clear(ctx context.Context, userID string) error
	// LineCount is the number of distinct lines (the badge value).
	LineCount(ctx context.Context, userID string) (int, error)
}
