package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Checkout interface {
	Preview() (domain.Snapshot, checkout.Summary)
	PlaceOrder(ctx context.Context, f checkout.Form) (checkout.Receipt, error)
	History(ctx context.Context) ([]domain.Order, error)
}

type CheckoutHandler struct {
	handler
	checkout Checkout
}

func NewCheckoutHandler(c Checkout, h handler) *CheckoutHandler {
	return &CheckoutHandler{handler: h, checkout: c}
}

type CheckoutPreviewDTO struct {
	Items   domain.Snapshot  `json:"items"`
	Summary checkout.Summary `json:"summary"`
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// GET /api/checkout
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	items, summary := h.checkout.Preview()
	if items == nil {
		items = domain.Snapshot{}
	}
	h.respondJSON(w, http.StatusOK, CheckoutPreviewDTO{Items: items, Summary: summary})
}

// POST /api/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.checkout.PlaceOrder(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, receipt)
}

// GET /api/orders
func (h *CheckoutHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	orders, err := h.checkout.History(ctx)
	if err != nil {
		h.fetchFailed(w, r, "orders", err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	h.respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders})
}
