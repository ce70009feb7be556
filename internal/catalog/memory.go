package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
)

// Memory is a mutex-guarded in-process catalog used by tests and local runs.
type Memory struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewMemory() *Memory {
	return &Memory{products: map[string]Product{}}
}

// Put inserts or replaces a product. Stock maps are copied so callers
// cannot mutate stored state from outside.
func (m *Memory) Put(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Stock = copyStock(p.Stock)
	m.products[p.ID] = p
}

func (m *Memory) Product(_ context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	p.Stock = copyStock(p.Stock)
	return p, nil
}

func (m *Memory) Products(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if p.IsDeleted || p.Status != StatusActive {
			continue
		}
		p.Stock = copyStock(p.Stock)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func copyStock(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
