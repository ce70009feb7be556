package stock

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
)

// Line is one (product, size, quantity) request against the ledger.
type Line struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

// Ledger owns the authoritative per-(product, size) quantity counters.
// Check-then-decrement is a single atomic step per key; no caller can
// observe a passed check whose stock a concurrent deduction already took.
type Ledger interface {
	// TryDeduct decrements one counter, or returns *InsufficientError
	// with the shortfall. The counter is untouched on failure.
	TryDeduct(ctx context.Context, productID, size string, qty int) error
	// TryDeductAll commits every deduction iff all lines have stock.
	// On failure nothing is deducted and the returned *InsufficientError
	// carries every failing line, not just the first.
	TryDeductAll(ctx context.Context, lines []Line) error
	// Increase is unconditionally additive: restock and compensation.
	Increase(ctx context.Context, productID, size string, qty int) error
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("no lines: %w", apperr.ErrInvalid)
	}
	for _, l := range lines {
		if l.Qty <= 0 {
			return fmt.Errorf("qty must be >= 1 for product %s size %s: %w", l.ProductID, l.Size, apperr.ErrInvalid)
		}
	}
	return nil
}
