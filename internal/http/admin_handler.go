package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	handler
	admin *admin.Service
}

func NewAdminHandler(svc *admin.Service, h handler) *AdminHandler {
	return &AdminHandler{handler: h, admin: svc}
}

type AdminProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type AdminOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type AdminUsersResponse struct {
	Users []domain.User `json:"users"`
}

type OrderStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

// decode reads the JSON body into v and reports a 400 when it is malformed.
func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	dash, err := h.admin.Dashboard(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dash)
}

// GET /api/admin/products?q=&category=
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	q := r.URL.Query()
	products, err := h.admin.Products(ctx, q.Get("q"), q.Get("category"))
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}
	h.respondJSON(w, http.StatusOK, AdminProductsResponse{Products: products})
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req admin.ProductInput
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.admin.CreateProduct(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, p)
}

// PUT /api/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req admin.ProductInput
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.admin.UpdateProduct(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, p)
}

// DELETE /api/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.admin.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/orders?q=&status=
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	q := r.URL.Query()
	orders, err := h.admin.Orders(ctx, q.Get("q"), q.Get("status"))
	if err != nil {
		h.fetchFailed(w, r, "orders", err)
		return
	}
	h.respondJSON(w, http.StatusOK, AdminOrdersResponse{Orders: orders})
}

// PUT /api/admin/orders/{id}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req OrderStatusRequestDTO
	if !h.decode(w, r, &req) {
		return
	}
	o, err := h.admin.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, o)
}

// DELETE /api/admin/orders/{id}
func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.admin.DeleteOrder(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/users?q=&role=
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	q := r.URL.Query()
	users, err := h.admin.Users(ctx, q.Get("q"), q.Get("role"))
	if err != nil {
		h.fetchFailed(w, r, "users", err)
		return
	}
	h.respondJSON(w, http.StatusOK, AdminUsersResponse{Users: users})
}

// POST /api/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req admin.UserInput
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.admin.CreateUser(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, u)
}

// PUT /api/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req admin.UserInput
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.admin.UpdateUser(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, u)
}

// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.admin.DeleteUser(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/settings
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	s, err := h.admin.Settings(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s)
}

// PUT /api/admin/settings
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req domain.StoreSettings
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.admin.SaveSettings(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s)
}
