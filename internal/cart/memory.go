package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/google/uuid"
)

// Memory holds carts in-process behind one mutex, for tests and local runs.
type Memory struct {
	mu    sync.Mutex
	carts map[string]*Cart // userID -> cart
}

func NewMemory() *Memory {
	return &Memory{carts: map[string]*Cart{}}
}

func (m *Memory) AddLine(_ context.Context, userID, productID, size string, qty int) (Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[userID]
	if !ok {
		c = &Cart{ID: uuid.NewString(), UserID: userID}
		m.carts[userID] = c
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
			c.Lines[i].Qty += qty
			return snapshot(c), nil
		}
	}
	c.Lines = append(c.Lines, Line{ID: uuid.NewString(), ProductID: productID, Size: size, Qty: qty})
	return snapshot(c), nil
}

func (m *Memory) Get(_ context.Context, userID string) (Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return Cart{UserID: userID}, nil
	}
	return snapshot(c), nil
}

func (m *Memory) SetLineQty(_ context.Context, userID, lineID string, qty int) (Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if ok {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines[i].Qty = qty
				return snapshot(c), nil
			}
		}
	}
	return Cart{}, fmt.Errorf("cart line %s: %w", lineID, apperr.ErrNotFound)
}

func (m *Memory) RemoveLine(_ context.Context, userID, lineID string) (Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if ok {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return snapshot(c), nil
			}
		}
	}
	return Cart{}, fmt.Errorf("cart line %s: %w", lineID, apperr.ErrNotFound)
}

func (m *Memory) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		c.Lines = nil // empty, not deleted
	}
	return nil
}

func (m *Memory) LineCount(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		return len(c.Lines), nil
	}
	return 0, nil
}

func snapshot(c *Cart) Cart {
	out := Cart{ID: c.ID, UserID: c.UserID}
	out.Lines = append(out.Lines, c.Lines...)
	return out
}
