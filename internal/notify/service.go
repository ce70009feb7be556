package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Sender delivers one user-facing notification. The real channel (email,
// push) lives outside this service.
type Sender interface {
	Send(ctx context.Context, userID, message string) error
}

// LogSender is the default sink for local runs.
type LogSender struct{}

func (LogSender) Send(_ context.Context, userID, message string) error {
	log.Printf("notify: user=%s %s", userID, message)
	return nil
}

// Service consumes order lifecycle events and fans them out to the user,
// deduplicating by event id so redelivered messages notify once.
type Service struct {
	Redis       *redis.Client
	Sender      Sender
	ServiceName string
}

// HandleEvent is installed as the consumer handler.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Sender.Send(ctx, p.UserID,
			fmt.Sprintf("order %s received, we are preparing it", p.OrderNum))
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Sender.Send(ctx, p.UserID,
			fmt.Sprintf("order %s is now %s", p.OrderNum, p.Status))
	default:
		return nil // not ours
	}
}
