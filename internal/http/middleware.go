package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = "req-" + uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// adminOnly rejects every request unless the current session is an admin.
func (h *SessionHandler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := h.session.Current()
		if id.IsGuest() {
			h.respondError(w, http.StatusUnauthorized, "unauthorized", "please log in")
			return
		}
		if err := admin.Authorize(id); err != nil {
			h.handleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
