package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestProducerCloseFlushesAndExits(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 16)
	p.Start(context.Background())

	p.Close()
	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer loop did not exit after Close")
	}
}

func TestProducerCancelThenCloseIsSafe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 16)
	p.Start(ctx)

	cancel()
	p.WaitClosed()

	// shutdown paths may race in main; a second Close must be a no-op
	assert.NotPanics(t, func() { p.Close() })
}

func TestProducerDoubleCloseIsNoOp(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 16)
	p.Start(context.Background())

	assert.NotPanics(t, func() {
		p.Close()
		p.Close()
	})
	p.WaitClosed()
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}

	raw := MustMarshal(payload{OrderID: "o-1"})
	got, err := UnwrapPayload[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, "o-1", got.OrderID)

	_, err = UnwrapPayload[payload](json.RawMessage(`{broken`))
	assert.Error(t, err)
}
