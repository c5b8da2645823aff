package checkout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockOrders records the order it was asked to create
type MockOrders struct {
	Created  *domain.Order
	Response domain.Order
	Err      error
	List     []domain.Order
	// InFlight runs while the order is being created.
	InFlight func()
}

func (m *MockOrders) CreateOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	m.Created = &o
	if m.InFlight != nil {
		m.InFlight()
	}
	return m.Response, m.Err
}

func (m *MockOrders) ListOrders(_ context.Context) ([]domain.Order, error) {
	return m.List, m.Err
}

func setupCart(t *testing.T) *cart.Store {
	t.Helper()
	mem := storage.NewMemory()
	s := cart.NewStore(context.Background(), cart.NewPersistence(mem, logger.Discard()), nil, cart.Options{NoticeTTL: time.Hour}, logger.Discard())
	t.Cleanup(s.Close)
	return s
}

func validForm() Form {
	return Form{
		FullName:      "Bob Builder",
		Email:         "bob@example.com",
		PhoneNumber:   "9876543210",
		Address:       "1 Main St",
		City:          "Pune",
		State:         "MH",
		Pincode:       "411001",
		PaymentMethod: domain.PaymentUPI,
	}
}

func TestTotals(t *testing.T) {
	s := Totals(decimal.NewFromInt(1000))

	assert.True(t, decimal.NewFromInt(99).Equal(s.Shipping))
	assert.True(t, decimal.NewFromInt(180).Equal(s.Tax))
	assert.True(t, decimal.NewFromInt(1279).Equal(s.Total))
}

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Name: "Shoes", Price: decimal.NewFromInt(100), Images: []string{"s.jpg"}}, "9", ""))
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Name: "Shoes", Price: decimal.NewFromInt(100), Images: []string{"s.jpg"}}, "9", ""))
	orders := &MockOrders{Response: domain.Order{ID: "ord-1"}}
	svc := NewService(c, orders, logger.Discard())

	receipt, err := svc.PlaceOrder(ctx, validForm())
	require.NoError(t, err)

	assert.Equal(t, "ord-1", receipt.OrderID)
	assert.True(t, decimal.NewFromInt(200).Equal(receipt.Summary.Subtotal))
	assert.Empty(t, c.Items())

	require.NotNil(t, orders.Created)
	assert.Equal(t, domain.PaymentUPI, orders.Created.PaymentMethod)
	require.Len(t, orders.Created.Items, 1)
	line := orders.Created.Items[0]
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "s.jpg", line.Image)
	assert.True(t, decimal.NewFromInt(100).Equal(line.Price.Decimal))
	assert.True(t, decimal.NewFromInt(200).Equal(orders.Created.ItemsPrice.Decimal))
	assert.True(t, decimal.NewFromInt(36).Equal(orders.Created.TaxPrice.Decimal))
	assert.True(t, decimal.NewFromInt(99).Equal(orders.Created.ShippingPrice.Decimal))
	assert.True(t, decimal.NewFromInt(335).Equal(orders.Created.TotalPrice.Decimal))
	assert.Equal(t, "Pune", orders.Created.ShippingInfo.City)
}

func TestPlaceOrder_KeepsCentsExact(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.RequireFromString("0.10")}, "", ""))
	}
	orders := &MockOrders{Response: domain.Order{ID: "ord-1"}}
	svc := NewService(c, orders, logger.Discard())

	_, err := svc.PlaceOrder(ctx, validForm())
	require.NoError(t, err)

	body, err := json.Marshal(orders.Created)
	require.NoError(t, err)
	var wire struct {
		ItemsPrice json.RawMessage `json:"itemsPrice"`
		TaxPrice   json.RawMessage `json:"taxPrice"`
		TotalPrice json.RawMessage `json:"totalPrice"`
	}
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, "0.3", string(wire.ItemsPrice))
	assert.Equal(t, "0.054", string(wire.TaxPrice))
	assert.Equal(t, "99.354", string(wire.TotalPrice))
}

func TestPlaceOrder_FallbackOrderID(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.NewFromInt(10)}, "", ""))
	svc := NewService(c, &MockOrders{}, logger.Discard())
	svc.now = func() time.Time { return time.UnixMilli(1718123456789) }

	receipt, err := svc.PlaceOrder(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, "23456789", receipt.OrderID)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	orders := &MockOrders{}
	svc := NewService(setupCart(t), orders, logger.Discard())

	_, err := svc.PlaceOrder(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, orders.Created)
}

func TestPlaceOrder_InvalidForm(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.NewFromInt(10)}, "", ""))
	orders := &MockOrders{}
	svc := NewService(c, orders, logger.Discard())

	f := validForm()
	f.PaymentMethod = "bitcoin"
	f.City = "  "
	_, err := svc.PlaceOrder(ctx, f)

	var formErr *validation.FormError
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, map[string]string{
		"city":          "is required",
		"paymentMethod": "must be one of: credit upi cash",
	}, formErr.Fields)
	assert.Nil(t, orders.Created)
	assert.Len(t, c.Items(), 1)
}

func TestPlaceOrder_BackendFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.NewFromInt(10)}, "", ""))
	svc := NewService(c, &MockOrders{Err: backend.ErrUnavailable}, logger.Discard())

	_, err := svc.PlaceOrder(ctx, validForm())
	require.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Len(t, c.Items(), 1)
}

func TestPlaceOrder_KeepsLinesAddedWhileOrdering(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.NewFromInt(10)}, "", ""))
	orders := &MockOrders{
		Response: domain.Order{ID: "ord-1"},
		InFlight: func() {
			_ = c.AddItem(ctx, domain.Product{ID: "p2", Price: decimal.NewFromInt(5)}, "", "")
		},
	}
	svc := NewService(c, orders, logger.Discard())

	_, err := svc.PlaceOrder(ctx, validForm())
	require.NoError(t, err)

	require.Len(t, orders.Created.Items, 1)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestPlaceOrder_IdentitySwitchWhileOrdering(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	persist := cart.NewPersistence(mem, logger.Discard())
	c := cart.NewStore(ctx, persist, nil, cart.Options{NoticeTTL: time.Hour}, logger.Discard())
	t.Cleanup(c.Close)

	bob := domain.Identity{Token: "t-bob", Profile: domain.Profile{Email: "bob@example.com"}}
	alice := domain.Identity{Token: "t-alice", Profile: domain.Profile{Email: "alice@example.com"}}

	c.SwitchIdentity(ctx, alice)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "a1", Price: decimal.NewFromInt(3)}, "", ""))
	c.SwitchIdentity(ctx, bob)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.NewFromInt(10)}, "", ""))

	orders := &MockOrders{
		Response: domain.Order{ID: "ord-1"},
		InFlight: func() { c.SwitchIdentity(ctx, alice) },
	}
	svc := NewService(c, orders, logger.Discard())

	_, err := svc.PlaceOrder(ctx, validForm())
	require.NoError(t, err)

	assert.Equal(t, alice.CartKey(), c.Namespace())
	require.Len(t, c.Items(), 1)
	assert.Equal(t, "a1", c.Items()[0].ProductID)
	assert.Len(t, persist.Load(ctx, alice.CartKey()), 1)

	_, err = mem.Get(ctx, bob.CartKey())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	c := setupCart(t)
	require.NoError(t, c.AddItem(ctx, domain.Product{ID: "p1", Price: decimal.NewFromInt(50)}, "", ""))
	svc := NewService(c, &MockOrders{}, logger.Discard())

	items, summary := svc.Preview()
	assert.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(158).Equal(summary.Total))
}

func TestHistory(t *testing.T) {
	orders := &MockOrders{List: []domain.Order{{ID: "a"}, {ID: "b"}}}
	svc := NewService(setupCart(t), orders, logger.Discard())

	got, err := svc.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
