package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
)

// ResolvedLine is a cart line joined with current catalog data at read
// time, so display fields always reflect the live product record.
type ResolvedLine struct {
	Line
	Name       string `json:"name"`
	Image      string `json:"image"`
	PriceCents int    `json:"price_cents"`
}

// Service validates cart mutations against the catalog and resolves lines
// for display. Persistence stays behind Store.
type Service struct {
	Carts   Store
	Catalog catalog.Reader
}

// AddLine checks the product and size exist, then merges the quantity into
// the user's cart. Returns the updated cart plus its summed item count.
func (s *Service) AddLine(ctx context.Context, userID, productID, size string, qty int) (Cart, int, error) {
	if qty <= 0 {
		return Cart{}, 0, fmt.Errorf("qty must be >= 1: %w", apperr.ErrInvalid)
	}
	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return Cart{}, 0, err
	}
	if !p.HasSize(size) {
		return Cart{}, 0, fmt.Errorf("product %s has no size %s: %w", productID, size, apperr.ErrNotFound)
	}
	c, err := s.Carts.AddLine(ctx, userID, productID, size, qty)
	if err != nil {
		return Cart{}, 0, err
	}
	return c, c.ItemCount(), nil
}

// View returns the cart lines resolved against the catalog. An empty cart
// is a valid result, not an error.
func (s *Service) View(ctx context.Context, userID string) ([]ResolvedLine, error) {
	c, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ResolvedLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		rl := ResolvedLine{Line: l}
		p, err := s.Catalog.Product(ctx, l.ProductID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			// product pulled from the catalog after it was carted;
			// keep the line, display fields stay empty
		case err != nil:
			return nil, err
		default:
			rl.Name, rl.Image, rl.PriceCents = p.Name, p.Image, p.PriceCents
		}
		out = append(out, rl)
	}
	return out, nil
}

// SetLineQty updates a single line. Zero or below is a validation error,
// never an implicit delete; callers that mean delete call RemoveLine.
func (s *Service) SetLineQty(ctx context.Context, userID, lineID string, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be >= 1: %w", apperr.ErrInvalid)
	}
	return s.Carts.SetLineQty(ctx, userID, lineID, qty)
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID string) (Cart, error) {
	return s.Carts.RemoveLine(ctx, userID, lineID)
}

func (s *Service) LineCount(ctx context.Context, userID string) (int, error) {
	return s.Carts.LineCount(ctx, userID)
}
