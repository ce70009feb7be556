package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type OrdersHandler struct {
	Checkout *checkout.Service
	Orders   orders.Repo
	Producer checkout.Publisher // status-change events, optional
	Redis    *redis.Client      // status cache, optional
	Service  string
}

type createOrderReq struct {
	Lines      []orders.Line  `json:"lines"`
	TotalCents int            `json:"total_cents"`
	ShipTo     orders.Address `json:"ship_to"`
	Contact    orders.Contact `json:"contact"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/", h.createOrder)
		r.Get("/", h.listMine)
	})
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(RequireUser, RequireAdmin)
		r.Get("/", h.listAll)
		r.Patch("/{orderID}/status", h.updateStatus)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failBody("invalid json", nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Checkout.CreateOrder(ctx, UserID(r), checkout.Input{
		Lines:      req.Lines,
		TotalCents: req.TotalCents,
		ShipTo:     req.ShipTo,
		Contact:    req.Contact,
		TraceID:    r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	h.invalidateBadge(ctx, o.UserID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "order_num": o.OrderNum})
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Orders.ListByUser(ctx, UserID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	// empty history is a valid, reportable result
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "orders": list, "total": len(list)})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	res, err := h.Orders.List(ctx, orders.Filter{
		OrderNum: r.URL.Query().Get("order_num"),
		Page:     page,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result": res})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failBody("invalid json", nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID := chi.URLParam(r, "orderID")
	updated, err := h.Orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, orderID, updated.Status)
	h.publishStatusChanged(updated, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "order": updated})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, s orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, s), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) invalidateBadge(ctx context.Context, userID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartBadge, userID)).Err()
}

// publishStatusChanged feeds the notification hook; delivery itself lives
// in the notifier service.
func (h *OrdersHandler) publishStatusChanged(o orders.Order, traceID string) {
	if h.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:  o.ID,
			OrderNum: o.OrderNum,
			UserID:   o.UserID,
			Status:   o.Status,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
