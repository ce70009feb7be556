package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type CartHandler struct {
	Cart  *cart.Service
	Redis *redis.Client // optional badge cache
}

type addLineReq struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

type cartResp struct {
	Status    string    `json:"status"`
	Cart      cart.Cart `json:"cart"`
	ItemCount int       `json:"item_count"`
	LineCount int       `json:"line_count"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/", h.addLine)
		r.Get("/", h.getCart)
		r.Get("/count", h.badge)
		r.Patch("/lines/{lineID}", h.setLineQty)
		r.Delete("/lines/{lineID}", h.removeLine)
	})
}

func (h *CartHandler) addLine(w http.ResponseWriter, r *http.Request) {
	var req addLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failBody("invalid json", nil))
		return
	}
	if req.Qty == 0 {
		req.Qty = 1 // default, same as the storefront UI sends
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := UserID(r)
	c, itemCount, err := h.Cart.AddLine(ctx, userID, req.ProductID, req.Size, req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateBadge(ctx, userID)
	writeJSON(w, http.StatusOK, cartResp{Status: "success", Cart: c, ItemCount: itemCount, LineCount: len(c.Lines)})
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Cart.View(ctx, UserID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "lines": lines})
}

// badge serves the distinct-line count, Redis first, store on miss.
func (h *CartHandler) badge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	userID := UserID(r)
	key := fmt.Sprintf(redisx.KeyCartBadge, userID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil {
			if n, err := strconv.Atoi(s); err == nil {
				writeJSON(w, http.StatusOK, map[string]any{"status": "success", "line_count": n})
				return
			}
		}
	}

	n, err := h.Cart.LineCount(ctx, userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, strconv.Itoa(n), redisx.TTLBadgeCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "line_count": n})
}

func (h *CartHandler) setLineQty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failBody("invalid json", nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := UserID(r)
	c, err := h.Cart.SetLineQty(ctx, userID, chi.URLParam(r, "lineID"), req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateBadge(ctx, userID)
	writeJSON(w, http.StatusOK, cartResp{Status: "success", Cart: c, ItemCount: c.ItemCount(), LineCount: len(c.Lines)})
}

func (h *CartHandler) removeLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := UserID(r)
	c, err := h.Cart.RemoveLine(ctx, userID, chi.URLParam(r, "lineID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateBadge(ctx, userID)
	writeJSON(w, http.StatusOK, cartResp{Status: "success", Cart: c, ItemCount: c.ItemCount(), LineCount: len(c.Lines)})
}

func (h *CartHandler) invalidateBadge(ctx context.Context, userID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartBadge, userID)).Err()
}
