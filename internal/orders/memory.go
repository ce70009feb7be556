package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/google/uuid"
)

// Memory keeps orders in insertion order behind a mutex, for tests and
// local runs. Walking the slice backwards gives newest-first.
type Memory struct {
	mu     sync.Mutex
	list   []Order
	byNum  map[string]bool
	genNum func() string // overridable in tests to force collisions
}

func NewMemory() *Memory {
	return &Memory{byNum: map[string]bool{}, genNum: NewOrderNum}
}

func (m *Memory) Create(_ context.Context, o Order) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	num := ""
	for attempt := 0; attempt < maxNumAttempts; attempt++ {
		n := m.genNum()
		if !m.byNum[n] {
			num = n
			break
		}
	}
	if num == "" {
		return Order{}, fmt.Errorf("order number collision after %d attempts: %w", maxNumAttempts, apperr.ErrConflict)
	}

	o.ID = uuid.NewString()
	o.OrderNum = num
	o.Status = StatusPreparing
	o.CreatedAt = time.Now().UTC()
	o.Lines = append([]Line(nil), o.Lines...)

	m.byNum[num] = true
	m.list = append(m.list, o)
	return o, nil
}

func (m *Memory) ListByUser(_ context.Context, userID string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for i := len(m.list) - 1; i >= 0; i-- {
		if m.list[i].UserID == userID {
			out = append(out, m.list[i])
		}
	}
	return out, nil
}

func (m *Memory) List(_ context.Context, f Filter) (PageResult, error) {
	if err := f.validate(); err != nil {
		return PageResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []Order{}
	for i := len(m.list) - 1; i >= 0; i-- {
		if f.OrderNum == "" || m.list[i].OrderNum == f.OrderNum {
			matched = append(matched, m.list[i])
		}
	}

	page := f.page()
	lo := (page - 1) * PageSize
	hi := lo + PageSize
	if lo > len(matched) {
		lo = len(matched)
	}
	if hi > len(matched) {
		hi = len(matched)
	}
	return PageResult{
		Orders:      matched[lo:hi],
		Page:        page,
		PageSize:    PageSize,
		TotalOrders: len(matched),
		TotalPages:  (len(matched) + PageSize - 1) / PageSize,
	}, nil
}

func (m *Memory) UpdateStatus(_ context.Context, orderID string, to Status) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.list {
		if m.list[i].ID == orderID {
			if err := checkTransition(m.list[i].Status, to); err != nil {
				return Order{}, err
			}
			m.list[i].Status = to
			return m.list[i], nil
		}
	}
	return Order{}, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
}
