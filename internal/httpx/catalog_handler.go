package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	Catalog catalog.Reader
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{productID}", h.get)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.Products(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "products": ps})
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Product(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "product": p})
}
