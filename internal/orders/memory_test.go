package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(userID string) Order {
	return Order{
		UserID:     userID,
		TotalCents: 12400,
		ShipTo:     Address{Address1: "12 Main St", City: "Springfield", Zip: "12345"},
		Contact:    Contact{Name: "Pat", Phone: "555-0100"},
		Lines: []Line{
			{ProductID: "prod-a", Size: "M", Qty: 2, PriceCents: 2500},
			{ProductID: "prod-b", Size: "L", Qty: 1, PriceCents: 7400},
		},
	}
}

func TestCreateAssignsNumberAndInitialStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o, err := m.Create(ctx, draft("user-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Len(t, o.OrderNum, OrderNumLen)
	assert.Equal(t, StatusPreparing, o.Status)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Len(t, o.Lines, 2)
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.genNum = func() string { return "AAAAAAAAAA" }
	_, err := m.Create(ctx, draft("user-1"))
	require.NoError(t, err)

	// first candidate collides, the retry lands on a fresh number
	calls := 0
	m.genNum = func() string {
		calls++
		if calls == 1 {
			return "AAAAAAAAAA"
		}
		return "BBBBBBBBBB"
	}
	o, err := m.Create(ctx, draft("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "BBBBBBBBBB", o.OrderNum)
}

func TestCreateCollisionExhaustionIsConflict(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.genNum = func() string { return "AAAAAAAAAA" }
	_, err := m.Create(ctx, draft("user-1"))
	require.NoError(t, err)

	_, err = m.Create(ctx, draft("user-2"))
	assert.ErrorIs(t, err, apperr.ErrConflict, "a stuck generator must fail, never overwrite")
}

func TestListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var nums []string
	for i := 0; i < 3; i++ {
		o, err := m.Create(ctx, draft("user-1"))
		require.NoError(t, err)
		nums = append(nums, o.OrderNum)
	}
	_, err := m.Create(ctx, draft("someone-else"))
	require.NoError(t, err)

	got, err := m.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range got {
		assert.Equal(t, nums[len(nums)-1-i], got[i].OrderNum)
	}
}

func TestListByUserEmptyHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	got, err := m.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 7; i++ {
		_, err := m.Create(ctx, draft(fmt.Sprintf("user-%d", i)))
		require.NoError(t, err)
	}

	p1, err := m.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, p1.Orders, PageSize)
	assert.Equal(t, 1, p1.Page)
	assert.Equal(t, 7, p1.TotalOrders)
	assert.Equal(t, 2, p1.TotalPages)

	p2, err := m.List(ctx, Filter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, p2.Orders, 2)

	p3, err := m.List(ctx, Filter{Page: 3})
	require.NoError(t, err)
	assert.Empty(t, p3.Orders)
}

func TestListFilterByOrderNum(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o, err := m.Create(ctx, draft("user-1"))
	require.NoError(t, err)
	_, err = m.Create(ctx, draft("user-2"))
	require.NoError(t, err)

	res, err := m.List(ctx, Filter{OrderNum: o.OrderNum})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, o.ID, res.Orders[0].ID)

	// anything but an exact-length number is a usage error
	_, err = m.List(ctx, Filter{OrderNum: "short"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o, err := m.Create(ctx, draft("user-1"))
	require.NoError(t, err)

	got, err := m.UpdateStatus(ctx, o.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)

	got, err = m.UpdateStatus(ctx, o.ID, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)

	// delivered is terminal
	_, err = m.UpdateStatus(ctx, o.ID, StatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = m.UpdateStatus(ctx, o.ID, Status("lost"))
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = m.UpdateStatus(ctx, "missing", StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatusTransitionTable(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPreparing, StatusShipped, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusPreparing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusShipped, StatusPreparing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPreparing, false},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s->%s", tc.from, tc.to), func(t *testing.T) {
			assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to))
		})
	}
}

func TestNewOrderNum(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := NewOrderNum()
		require.Len(t, n, OrderNumLen)
		for _, r := range n {
			assert.Contains(t, orderNumAlphabet, string(r))
		}
		assert.False(t, seen[n], "duplicate order number in 1000 draws")
		seen[n] = true
	}
}
