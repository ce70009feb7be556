package orders

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
)

// PageSize for the administrative listing.
const PageSize = 5

// Filter narrows the administrative listing. OrderNum, when set, must be
// an exact OrderNumLen-character match; anything else is a usage error.
type Filter struct {
	OrderNum string
	Page     int
}

func (f Filter) validate() error {
	if f.OrderNum != "" && len(f.OrderNum) != OrderNumLen {
		return fmt.Errorf("order number must be %d characters: %w", OrderNumLen, apperr.ErrInvalid)
	}
	if f.Page < 0 {
		return fmt.Errorf("page must be >= 1: %w", apperr.ErrInvalid)
	}
	return nil
}

func (f Filter) page() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

type PageResult struct {
	Orders      []Order `json:"orders"`
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
	TotalOrders int     `json:"total_orders"`
	TotalPages  int     `json:"total_pages"`
}

// Repo is the durable order ledger.
type Repo interface {
	// Create persists the order with a fresh unique order number and
	// status preparing, filling ID, OrderNum, Status and CreatedAt.
	// A number collision is retried; exhaustion surfaces ErrConflict.
	Create(ctx context.Context, o Order) (Order, error)
	// ListByUser returns the user's orders newest first. No orders is an
	// empty slice, not an error.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// List is the administrative paginated listing.
	List(ctx context.Context, f Filter) (PageResult, error)
	// UpdateStatus applies the transition if the state machine allows it.
	UpdateStatus(ctx context.Context, orderID string, to Status) (Order, error)
}

// maxNumAttempts bounds the retry-on-duplicate loop for order numbers.
const maxNumAttempts = 5

func checkTransition(from, to Status) error {
	if !to.Known() {
		return fmt.Errorf("unknown status %q: %w", to, apperr.ErrInvalid)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("cannot transition %s -> %s: %w", from, to, apperr.ErrInvalid)
	}
	return nil
}
