package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Envelope wraps every event on the wire, versioned for consumers.
type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload per event ----

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	OrderNum   string `json:"order_num"`
	UserID     string `json:"user_id"`
	Lines      []Line `json:"lines"`
	TotalCents int    `json:"total_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID  string `json:"order_id"`
	OrderNum string `json:"order_num"`
	UserID   string `json:"user_id"`
	Status   Status `json:"status"`
}
