package httpx

import (
	"context"
	"net/http"
)

// Auth runs upstream; this layer only consumes the identity it forwards.
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
	roleAdmin    = "admin"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxIsAdmin
)

// Identity lifts the forwarded identity headers into the request context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxUserID, r.Header.Get(HeaderUserID))
		ctx = context.WithValue(ctx, ctxIsAdmin, r.Header.Get(HeaderRole) == roleAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserID(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserID).(string)
	return id
}

func IsAdmin(r *http.Request) bool {
	ok, _ := r.Context().Value(ctxIsAdmin).(bool)
	return ok
}

// RequireUser rejects requests that arrived without an authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r) == "" {
			writeJSON(w, http.StatusUnauthorized, failBody("missing user identity", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the administrative surface.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			writeJSON(w, http.StatusForbidden, failBody("admin only", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
