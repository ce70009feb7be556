package stock

import (
	"context"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
)

// Memory is a mutex-guarded ledger for tests and local runs. One lock over
// the whole map makes each batch a single critical section.
type Memory struct {
	mu  sync.Mutex
	qty map[string]map[string]int // productID -> size -> qty
}

func NewMemory() *Memory {
	return &Memory{qty: map[string]map[string]int{}}
}

// Seed sets the counter for a (product, size) key.
func (m *Memory) Seed(productID, size string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes, ok := m.qty[productID]
	if !ok {
		sizes = map[string]int{}
		m.qty[productID] = sizes
	}
	sizes[size] = qty
}

// Quantity reads the current counter, mostly for tests.
func (m *Memory) Quantity(productID, size string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes, ok := m.qty[productID]
	if !ok {
		return 0, false
	}
	q, ok := sizes[size]
	return q, ok
}

func (m *Memory) TryDeduct(ctx context.Context, productID, size string, qty int) error {
	return m.TryDeductAll(ctx, []Line{{ProductID: productID, Size: size, Qty: qty}})
}

func (m *Memory) TryDeductAll(_ context.Context, lines []Line) error {
	if err := validateLines(lines); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// first pass: every key must be known and cover the batch total for
	// that key (a batch may name the same key more than once)
	type key struct{ id, size string }
	need := map[key]int{}
	order := make([]key, 0, len(lines))
	for _, it := range lines {
		k := key{it.ProductID, it.Size}
		if _, seen := need[k]; !seen {
			order = append(order, k)
		}
		need[k] += it.Qty
	}

	var shortfalls []Shortfall
	for _, k := range order {
		sizes, ok := m.qty[k.id]
		if !ok {
			return fmt.Errorf("product %s size %s: %w", k.id, k.size, apperr.ErrNotFound)
		}
		available, ok := sizes[k.size]
		if !ok {
			return fmt.Errorf("product %s size %s: %w", k.id, k.size, apperr.ErrNotFound)
		}
		if available < need[k] {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: k.id, Size: k.size,
				Requested: need[k], Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &InsufficientError{Shortfalls: shortfalls}
	}

	// second pass: commit, still under the same lock
	for _, k := range order {
		m.qty[k.id][k.size] -= need[k]
	}
	return nil
}

func (m *Memory) Increase(_ context.Context, productID, size string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("qty must be >= 1: %w", apperr.ErrInvalid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes, ok := m.qty[productID]
	if !ok {
		return fmt.Errorf("product %s size %s: %w", productID, size, apperr.ErrNotFound)
	}
	if _, ok := sizes[size]; !ok {
		return fmt.Errorf("product %s size %s: %w", productID, size, apperr.ErrNotFound)
	}
	sizes[size] += qty
	return nil
}
