// Package admin backs the admin console: access control, filtered
// listings, dashboard figures and the demo data set.
package admin

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrForbidden     = errors.New("admin role required")
	ErrNotFound      = errors.New("record not found")
	ErrInvalidStatus = errors.New("unknown order status")
)

// Authorize lets only logged-in admins through.
func Authorize(id domain.Identity) error {
	if !id.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

type Products interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type Orders interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type Users interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, id string, u domain.User) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Settings interface {
	GetSettings(ctx context.Context) (domain.StoreSettings, error)
	SaveSettings(ctx context.Context, s domain.StoreSettings) (domain.StoreSettings, error)
}
