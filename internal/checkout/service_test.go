package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkago "github.com/segmentio/kafka-go"
)

const userID = "user-1"

type capturedEvent struct {
	key   []byte
	value []byte
}

type fakeProducer struct {
	events []capturedEvent
}

func (f *fakeProducer) Publish(key, value []byte, _ ...kafkago.Header) {
	f.events = append(f.events, capturedEvent{key: key, value: value})
}

// failingRepo rejects every create, to exercise the compensation path.
type failingRepo struct {
	orders.Repo
}

func (f *failingRepo) Create(context.Context, orders.Order) (orders.Order, error) {
	return orders.Order{}, errors.New("ledger down")
}

type fixture struct {
	svc     *Service
	stock   *stock.Memory
	carts   *cart.Memory
	orders  *orders.Memory
	events  *fakeProducer
	catalog *catalog.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := catalog.NewMemory()
	cat.Put(catalog.Product{
		ID: "prod-a", SKU: "SKU-A", Name: "Linen Shirt",
		PriceCents: 2500, Status: catalog.StatusActive,
		Stock: map[string]int{"M": 5},
	})
	cat.Put(catalog.Product{
		ID: "prod-b", SKU: "SKU-B", Name: "Denim Jacket",
		PriceCents: 7400, Status: catalog.StatusActive,
		Stock: map[string]int{"L": 1},
	})

	ledger := stock.NewMemory()
	ledger.Seed("prod-a", "M", 5)
	ledger.Seed("prod-b", "L", 1)

	f := &fixture{
		stock:   ledger,
		carts:   cart.NewMemory(),
		orders:  orders.NewMemory(),
		events:  &fakeProducer{},
		catalog: cat,
	}
	f.svc = &Service{
		Stock:       f.stock,
		Orders:      f.orders,
		Carts:       f.carts,
		Catalog:     cat,
		Producer:    f.events,
		ServiceName: "storefront-test",
	}
	return f
}

func orderInput() Input {
	return Input{
		Lines: []orders.Line{
			{ProductID: "prod-a", Size: "M", Qty: 2, PriceCents: 2500},
			{ProductID: "prod-b", Size: "L", Qty: 1, PriceCents: 7400},
		},
		TotalCents: 12400,
		ShipTo:     orders.Address{Address1: "12 Main St", City: "Springfield", Zip: "12345"},
		Contact:    orders.Contact{Name: "Pat", Phone: "555-0100"},
	}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddLine(ctx, userID, "prod-a", "M", 2)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, userID, "prod-b", "L", 1)
	require.NoError(t, err)
}

func (f *fixture) qty(t *testing.T, productID, size string) int {
	t.Helper()
	q, ok := f.stock.Quantity(productID, size)
	require.True(t, ok)
	return q
}

func TestCreateOrderHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)

	o, err := f.svc.CreateOrder(ctx, userID, orderInput())
	require.NoError(t, err)

	// stock decremented for every line
	assert.Equal(t, 3, f.qty(t, "prod-a", "M"))
	assert.Equal(t, 0, f.qty(t, "prod-b", "L"))

	// order recorded with the frozen snapshot
	assert.Len(t, o.OrderNum, orders.OrderNumLen)
	assert.Equal(t, orders.StatusPreparing, o.Status)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 2500, o.Lines[0].PriceCents)

	// the whole cart is consumed
	n, err := f.carts.LineCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// event announced
	require.Len(t, f.events.events, 1)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(f.events.events[0].value, &env))
	assert.Equal(t, orders.EventOrderCreated, env.EventType)
	assert.Equal(t, o.ID, env.CorrelationID)
	assert.Equal(t, "storefront-test", env.Producer)
	var p orders.OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, o.OrderNum, p.OrderNum)
}

func TestRepeatOrderHitsShortfall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)

	_, err := f.svc.CreateOrder(ctx, userID, orderInput())
	require.NoError(t, err)

	// the identical order again: prod-b/L is gone now
	_, err = f.svc.CreateOrder(ctx, userID, orderInput())
	var ins *stock.InsufficientError
	require.ErrorAs(t, err, &ins)
	require.Len(t, ins.Shortfalls, 1)
	assert.Equal(t, "prod-b", ins.Shortfalls[0].ProductID)
	assert.Equal(t, "L", ins.Shortfalls[0].Size)
	assert.Equal(t, "Denim Jacket", ins.Shortfalls[0].Name)

	// prod-a untouched by the failed batch
	assert.Equal(t, 3, f.qty(t, "prod-a", "M"))

	// still exactly one order on file
	got, err := f.orders.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestShortfallLeavesEverythingUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)

	in := orderInput()
	in.Lines[1].Qty = 2 // prod-b/L has only 1

	_, err := f.svc.CreateOrder(ctx, userID, in)
	var ins *stock.InsufficientError
	require.ErrorAs(t, err, &ins)

	assert.Equal(t, 5, f.qty(t, "prod-a", "M"))
	assert.Equal(t, 1, f.qty(t, "prod-b", "L"))

	got, err := f.orders.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got, "no order on a failed batch")

	n, err := f.carts.LineCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "cart untouched on a failed batch")

	assert.Empty(t, f.events.events, "no event on a failed batch")
}

func TestShortfallListsEveryFailingLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := orderInput()
	in.Lines[0].Qty = 10
	in.Lines[1].Qty = 10

	_, err := f.svc.CreateOrder(ctx, userID, in)
	var ins *stock.InsufficientError
	require.ErrorAs(t, err, &ins)
	require.Len(t, ins.Shortfalls, 2, "caller sees everything that needs to change at once")
	assert.Equal(t, "Linen Shirt", ins.Shortfalls[0].Name)
	assert.Equal(t, "Denim Jacket", ins.Shortfalls[1].Name)
}

func TestValidationRejectsBeforeTouchingStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateOrder(ctx, "", orderInput())
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.svc.CreateOrder(ctx, userID, Input{})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	in := orderInput()
	in.Lines[0].Qty = 0
	_, err = f.svc.CreateOrder(ctx, userID, in)
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	in = orderInput()
	in.Lines[0].ProductID = "missing"
	_, err = f.svc.CreateOrder(ctx, userID, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	in = orderInput()
	in.Lines[0].Size = "XXL"
	_, err = f.svc.CreateOrder(ctx, userID, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, 5, f.qty(t, "prod-a", "M"))
	assert.Equal(t, 1, f.qty(t, "prod-b", "L"))
}

func TestOrderWriteFailureCompensatesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)
	f.svc.Orders = &failingRepo{}

	_, err := f.svc.CreateOrder(ctx, userID, orderInput())
	require.Error(t, err)

	// every deduction was given back
	assert.Equal(t, 5, f.qty(t, "prod-a", "M"))
	assert.Equal(t, 1, f.qty(t, "prod-b", "L"))

	// cart survives, nothing announced
	n, err := f.carts.LineCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, f.events.events)
}

func TestNilProducerSkipsPublication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t)
	f.svc.Producer = nil

	_, err := f.svc.CreateOrder(ctx, userID, orderInput())
	require.NoError(t, err)
}
