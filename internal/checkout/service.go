package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/stock"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is the slice of the Kafka producer the coordinator needs.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service orchestrates order creation: validate lines, deduct stock as one
// all-or-nothing batch, record the order, clear the cart, announce it.
type Service struct {
	Stock       stock.Ledger
	Orders      orders.Repo
	Carts       cart.Store
	Catalog     catalog.Reader
	Producer    Publisher // optional; nil skips event publication
	ServiceName string    // producer name stamped on events
}

// Input is the order request: line items with price captured at
// submission time, plus shipping and contact details.
type Input struct {
	Lines      []orders.Line
	TotalCents int
	ShipTo     orders.Address
	Contact    orders.Contact
	TraceID    string
}

// CreateOrder runs the fulfillment flow. On a shortfall it returns
// *stock.InsufficientError listing every failing line and leaves ledger,
// order history and cart untouched. If the order write fails after stock
// was deducted, every deduction is compensated before returning.
func (s *Service) CreateOrder(ctx context.Context, userID string, in Input) (orders.Order, error) {
	if userID == "" {
		return orders.Order{}, fmt.Errorf("missing user id: %w", apperr.ErrInvalid)
	}
	if len(in.Lines) == 0 {
		return orders.Order{}, fmt.Errorf("order has no lines: %w", apperr.ErrInvalid)
	}

	deduct := make([]stock.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.Qty <= 0 {
			return orders.Order{}, fmt.Errorf("qty must be >= 1 for product %s: %w", l.ProductID, apperr.ErrInvalid)
		}
		p, err := s.Catalog.Product(ctx, l.ProductID)
		if err != nil {
			return orders.Order{}, err
		}
		if !p.HasSize(l.Size) {
			return orders.Order{}, fmt.Errorf("product %s has no size %s: %w", l.ProductID, l.Size, apperr.ErrNotFound)
		}
		deduct = append(deduct, stock.Line{ProductID: l.ProductID, Size: l.Size, Qty: l.Qty})
	}

	// all-or-nothing: either every line's stock is taken here or none is
	if err := s.Stock.TryDeductAll(ctx, deduct); err != nil {
		var ins *stock.InsufficientError
		if errors.As(err, &ins) {
			s.fillNames(ctx, ins)
		}
		return orders.Order{}, err
	}

	o, err := s.Orders.Create(ctx, orders.Order{
		UserID:     userID,
		TotalCents: in.TotalCents,
		ShipTo:     in.ShipTo,
		Contact:    in.Contact,
		Lines:      in.Lines,
	})
	if err != nil {
		// stock is already gone; give it back before reporting failure
		s.compensate(ctx, deduct)
		return orders.Order{}, err
	}

	// the order is durable, the cart it came from is consumed whole
	if err := s.Carts.Clear(ctx, userID); err != nil {
		log.Printf("checkout: clear cart user=%s order=%s: %v", userID, o.ID, err)
	}

	s.publishCreated(o, in.TraceID)
	return o, nil
}

func (s *Service) compensate(ctx context.Context, lines []stock.Line) {
	for _, l := range lines {
		if err := s.Stock.Increase(ctx, l.ProductID, l.Size, l.Qty); err != nil {
			log.Printf("checkout: compensate product=%s size=%s qty=%d: %v", l.ProductID, l.Size, l.Qty, err)
		}
	}
}

// fillNames resolves product names for shortfall messages when the ledger
// implementation did not have them.
func (s *Service) fillNames(ctx context.Context, ins *stock.InsufficientError) {
	for i := range ins.Shortfalls {
		if ins.Shortfalls[i].Name != "" {
			continue
		}
		if p, err := s.Catalog.Product(ctx, ins.Shortfalls[i].ProductID); err == nil {
			ins.Shortfalls[i].Name = p.Name
		}
	}
}

func (s *Service) publishCreated(o orders.Order, traceID string) {
	if s.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:    o.ID,
			OrderNum:   o.OrderNum,
			UserID:     o.UserID,
			Lines:      o.Lines,
			TotalCents: o.TotalCents,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
