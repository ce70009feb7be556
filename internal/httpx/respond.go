package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/ariefcatur/go-storefront.git/internal/stock"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func failBody(msg string, details any) map[string]any {
	body := map[string]any{"status": "fail", "error": msg}
	if details != nil {
		body["details"] = details
	}
	return body
}

// writeErr maps the error taxonomy onto status codes without losing the
// kind: shortfalls keep their per-item details in the body.
func writeErr(w http.ResponseWriter, err error) {
	var ins *stock.InsufficientError
	switch {
	case errors.As(err, &ins):
		writeJSON(w, http.StatusConflict, failBody(ins.Error(), ins.Shortfalls))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, failBody(err.Error(), nil))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, failBody(err.Error(), nil))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, failBody(err.Error(), nil))
	default:
		writeJSON(w, http.StatusInternalServerError, failBody(err.Error(), nil))
	}
}
