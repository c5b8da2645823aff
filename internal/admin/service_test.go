package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *DemoStore) {
	t.Helper()
	d := setupDemo(t, storage.NewMemory())
	return NewService(d, d, d, d, logger.Discard()), d
}

func TestAuthorize(t *testing.T) {
	admin := domain.Identity{Token: "t", Profile: domain.Profile{Email: "a@example.com", Role: domain.RoleAdmin}}
	customer := domain.Identity{Token: "t", Profile: domain.Profile{Email: "c@example.com", Role: domain.RoleCustomer}}

	assert.NoError(t, Authorize(admin))
	assert.ErrorIs(t, Authorize(customer), ErrForbidden)
	assert.ErrorIs(t, Authorize(domain.Identity{}), ErrForbidden)
}

func TestStockStatusOf(t *testing.T) {
	assert.Equal(t, StockOut, StockStatusOf(0))
	assert.Equal(t, StockLow, StockStatusOf(1))
	assert.Equal(t, StockLow, StockStatusOf(20))
	assert.Equal(t, StockIn, StockStatusOf(21))
}

func TestService_Products(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		text     string
		category string
		want     []string
	}{
		{"everything", "", All, []string{"1", "2", "3", "4", "5"}},
		{"by name", "nike", "", []string{"1"}},
		{"by description", "gps", "all", []string{"5"}},
		{"by category", "", "Mens Wear", []string{"1", "4"}},
		{"text and category", "jacket", "Electronics", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Products(ctx, tt.text, tt.category)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestService_Orders(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	got, err := svc.Orders(ctx, "ord00", string(domain.OrderStatusProcessing))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "#ORD002", got[0].ID)
	assert.Equal(t, "#ORD004", got[1].ID)

	got, err = svc.Orders(ctx, "RAJPUT@", All)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "#ORD004", got[0].ID)
}

func TestService_Users(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	got, err := svc.Users(ctx, "567-8904", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Emma Wilson", got[0].Name)

	got, err = svc.Users(ctx, "", string(domain.RoleCustomer))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestService_CreateProductValidates(t *testing.T) {
	svc, d := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Category: "Accessories", Price: 0, Stock: -1})
	var formErr *validation.FormError
	require.ErrorAs(t, err, &formErr)
	assert.Contains(t, formErr.Fields, "name")
	assert.Contains(t, formErr.Fields, "price")
	assert.Contains(t, formErr.Fields, "stock")

	products, _ := d.ListProducts(ctx)
	assert.Len(t, products, 5)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: " Belt ", Category: "Accessories", Price: 19.5, Stock: 4, Image: "https://img/belt.png"})
	require.NoError(t, err)
	assert.Equal(t, "Belt", p.Name)
	assert.True(t, decimal.RequireFromString("19.5").Equal(p.Price))
	assert.Equal(t, "https://img/belt.png", p.Image())
}

func TestService_UpdateProductMissing(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.UpdateProduct(context.Background(), "nope", ProductInput{Name: "x", Category: "y", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateOrderStatusRejectsUnknown(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.UpdateOrderStatus(context.Background(), "#ORD001", "Teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_UserValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, UserInput{Name: "X", Email: "not-an-email", Role: "owner"})
	var formErr *validation.FormError
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, "must be a valid email address", formErr.Fields["email"])
	assert.Equal(t, "must be one of: customer admin moderator", formErr.Fields["role"])

	u, err := svc.CreateUser(ctx, UserInput{Name: "Nina", Email: "nina@example.com", Role: domain.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, domain.UserActive, u.Status)
}

func TestService_SaveSettings(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	current, err := svc.Settings(ctx)
	require.NoError(t, err)

	bad := current
	bad.StoreEmail = "nope"
	bad.Security.SessionTimeout = 0
	_, err = svc.SaveSettings(ctx, bad)
	var formErr *validation.FormError
	require.ErrorAs(t, err, &formErr)
	assert.Contains(t, formErr.Fields, "storeEmail")
	assert.Contains(t, formErr.Fields, "security.sessionTimeout")

	current.MaintenanceMode = true
	saved, err := svc.SaveSettings(ctx, current)
	require.NoError(t, err)
	assert.True(t, saved.MaintenanceMode)
}

func TestService_Dashboard(t *testing.T) {
	svc, _ := setupService(t)

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ProductStats{Total: 5, InStock: 4, LowStock: 2, OutOfStock: 1}, dash.Products)
	assert.Equal(t, 5, dash.Orders.Total)
	assert.Equal(t, 1, dash.Orders.Delivered)
	assert.Equal(t, 2, dash.Orders.Processing)
	// #ORD005 is cancelled
	assert.True(t, decimal.RequireFromString("812.23").Equal(dash.Orders.Revenue), dash.Orders.Revenue.String())
	assert.Equal(t, UserStats{Total: 5, Active: 4, Admins: 1, Customers: 3}, dash.Users)
	assert.Len(t, dash.RecentOrders, 5)
}

type failingOrders struct{ Orders }

func (failingOrders) ListOrders(context.Context) ([]domain.Order, error) {
	return nil, errors.New("backend down")
}

func TestService_DashboardSourceFailure(t *testing.T) {
	d := setupDemo(t, storage.NewMemory())
	svc := NewService(d, failingOrders{}, d, d, logger.Discard())

	_, err := svc.Dashboard(context.Background())
	assert.ErrorContains(t, err, "backend down")

	_, err = svc.Orders(context.Background(), "", All)
	assert.ErrorContains(t, err, "failed to list orders")
}
