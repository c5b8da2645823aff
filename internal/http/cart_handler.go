package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Cart interface {
	AddItem(ctx context.Context, p domain.Product, size, color string) error
	RemoveItem(ctx context.Context, productID, size, color string)
	SetQuantity(ctx context.Context, productID string, qty int, size, color string)
	Clear(ctx context.Context)
	Items() domain.Snapshot
	TotalCount() int
	TotalPrice() decimal.Decimal
	Notice() *cart.Notice
}

// ProductLookup resolves the product being added to the cart.
type ProductLookup interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}

type CartHandler struct {
	handler
	cart     Cart
	products ProductLookup
}

func NewCartHandler(c Cart, products ProductLookup, h handler) *CartHandler {
	return &CartHandler{handler: h, cart: c, products: products}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}

type CartResponse struct {
	Items      domain.Snapshot `json:"items"`
	TotalCount int             `json:"totalCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Notice     *cart.Notice    `json:"notice,omitempty"`
}

func (h *CartHandler) view() CartResponse {
	items := h.cart.Items()
	if items == nil {
		items = domain.Snapshot{}
	}
	return CartResponse{
		Items:      items,
		TotalCount: h.cart.TotalCount(),
		TotalPrice: h.cart.TotalPrice(),
		Notice:     h.cart.Notice(),
	}
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.view())
}

// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	p, err := h.products.Get(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.cart.AddItem(ctx, p, req.Size, req.Color); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, h.view())
}

// PUT /api/cart/items/{productID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.cart.SetQuantity(ctx, chi.URLParam(r, "productID"), req.Quantity, req.Size, req.Color)
	h.respondJSON(w, http.StatusOK, h.view())
}

// DELETE /api/cart/items/{productID}?size=&color=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	q := r.URL.Query()
	h.cart.RemoveItem(ctx, chi.URLParam(r, "productID"), q.Get("size"), q.Get("color"))
	h.respondJSON(w, http.StatusOK, h.view())
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	h.cart.Clear(ctx)
	h.respondJSON(w, http.StatusOK, h.view())
}
