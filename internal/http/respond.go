package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// handler carries what every handler group shares.
type handler struct {
	timeout time.Duration
	log     *slog.Logger
}

func (h handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts a service error into a status and error code.
func (h handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		formErr *validation.FormError
		authErr *auth.Error
		apiErr  *backend.APIError
	)

	switch {
	case errors.As(err, &formErr):
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "please correct the highlighted fields",
			Code:   "invalid_request",
			Fields: formErr.Fields,
		})
		return
	case errors.As(err, &authErr):
		status, code := http.StatusServiceUnavailable, "service_unavailable"
		if errors.Is(err, backend.ErrBadResponse) {
			status, code = http.StatusUnauthorized, "unauthorized"
		}
		h.respondError(w, status, code, authErr.Message)
		return
	}

	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, admin.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, admin.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, cart.ErrInvalidProduct):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, backend.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, backend.ErrBadResponse):
		status, code = http.StatusBadGateway, "bad_gateway"
	}

	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", getRequestID(r.Context())),
			slog.String("error", err.Error()))
		if status == http.StatusInternalServerError {
			h.respondError(w, status, code, "internal server error")
			return
		}
	}
	h.respondError(w, status, code, err.Error())
}

// fetchFailed renders a listing page whose data could not be loaded. The
// list stays empty and the client may retry.
func (h handler) fetchFailed(w http.ResponseWriter, r *http.Request, list string, err error) {
	h.log.WarnContext(r.Context(), "listing fetch failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	h.respondJSON(w, http.StatusBadGateway, map[string]any{
		list:        []struct{}{},
		"error":     "Failed to load " + list + ". Please try again.",
		"retryable": true,
	})
}
