// Package http is the JSON view layer of the storefront.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the router exposes.
type Deps struct {
	Session  Session
	Auth     Auth
	Catalog  Catalog
	Cart     Cart
	Checkout Checkout
	Admin    *admin.Service

	RequestTimeout time.Duration
	Log            *slog.Logger
}

const defaultRequestTimeout = 10 * time.Second

func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}
	base := handler{timeout: d.RequestTimeout, log: d.Log}
	sessionHandler := NewSessionHandler(d.Session, d.Auth, base)
	catalogHandler := NewCatalogHandler(d.Catalog, base)
	cartHandler := NewCartHandler(d.Cart, d.Catalog, base)
	checkoutHandler := NewCheckoutHandler(d.Checkout, base)
	adminHandler := NewAdminHandler(d.Admin, base)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		base.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", sessionHandler.Get)
		r.Post("/login", sessionHandler.Login)
		r.Post("/signup", sessionHandler.Signup)
		r.Post("/logout", sessionHandler.Logout)

		r.Get("/products", catalogHandler.List)
		r.Get("/products/{id}", catalogHandler.Get)
		r.Get("/categories/{category}", catalogHandler.Category)
		r.Get("/search", catalogHandler.Search)
		r.Get("/search/suggest", catalogHandler.Suggest)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)
		})

		r.Get("/checkout", checkoutHandler.Preview)
		r.Post("/checkout", checkoutHandler.PlaceOrder)
		r.Get("/orders", checkoutHandler.Orders)

		r.Route("/admin", func(r chi.Router) {
			r.Use(sessionHandler.adminOnly)

			r.Get("/dashboard", adminHandler.Dashboard)

			r.Get("/products", adminHandler.Products)
			r.Post("/products", adminHandler.CreateProduct)
			r.Put("/products/{id}", adminHandler.UpdateProduct)
			r.Delete("/products/{id}", adminHandler.DeleteProduct)

			r.Get("/orders", adminHandler.Orders)
			r.Put("/orders/{id}/status", adminHandler.UpdateOrderStatus)
			r.Delete("/orders/{id}", adminHandler.DeleteOrder)

			r.Get("/users", adminHandler.Users)
			r.Post("/users", adminHandler.CreateUser)
			r.Put("/users/{id}", adminHandler.UpdateUser)
			r.Delete("/users/{id}", adminHandler.DeleteUser)

			r.Get("/settings", adminHandler.Settings)
			r.Put("/settings", adminHandler.SaveSettings)
		})
	})

	return r
}
