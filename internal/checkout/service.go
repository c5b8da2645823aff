// Package checkout turns the active cart into a backend order.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

var (
	ShippingCharge = decimal.NewFromInt(99)
	TaxRate        = decimal.RequireFromString("0.18")
)

// Summary is the price breakdown shown on the checkout page.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Totals adds flat shipping and tax on the subtotal. It is a checkout
// convention; the cart itself only knows the subtotal.
func Totals(subtotal decimal.Decimal) Summary {
	tax := subtotal.Mul(TaxRate)
	return Summary{
		Subtotal: subtotal,
		Shipping: ShippingCharge,
		Tax:      tax,
		Total:    subtotal.Add(ShippingCharge).Add(tax),
	}
}

type Form struct {
	FullName      string               `json:"fullName" validate:"required"`
	Email         string               `json:"email" validate:"required,email"`
	PhoneNumber   string               `json:"phoneNumber" validate:"required"`
	Address       string               `json:"address" validate:"required"`
	City          string               `json:"city" validate:"required"`
	State         string               `json:"state" validate:"required"`
	Pincode       string               `json:"pincode" validate:"required"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=credit upi cash"`
}

type Receipt struct {
	OrderID string  `json:"orderId"`
	Summary Summary `json:"summary"`
}

type Cart interface {
	Items() domain.Snapshot
	Active() (string, domain.Snapshot)
	RemoveOrdered(ctx context.Context, key string, ordered domain.Snapshot)
}

type Orders interface {
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type Service struct {
	cart      Cart
	orders    Orders
	validator *validation.Validator
	log       *slog.Logger
	now       func() time.Time
}

func NewService(cart Cart, orders Orders, log *slog.Logger) *Service {
	return &Service{
		cart:      cart,
		orders:    orders,
		validator: validation.New(),
		log:       log,
		now:       time.Now,
	}
}

// Preview prices the active cart.
func (s *Service) Preview() (domain.Snapshot, Summary) {
	items := s.cart.Items()
	return items, Totals(items.Total())
}

// PlaceOrder posts the active cart as an order. Once the backend accepted
// it, the ordered lines are taken out of the cart they came from.
func (s *Service) PlaceOrder(ctx context.Context, f Form) (Receipt, error) {
	key, items := s.cart.Active()
	if len(items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	f = trim(f)
	if err := s.validator.Check(f); err != nil {
		return Receipt{}, err
	}

	summary := Totals(items.Total())
	order := buildOrder(f, items, summary)

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.log.WarnContext(ctx, "order rejected", slog.String("error", err.Error()))
		return Receipt{}, fmt.Errorf("failed to create order: %w", err)
	}

	orderID := created.ID
	if orderID == "" {
		orderID = fallbackOrderID(s.now())
	}
	s.cart.RemoveOrdered(ctx, key, items)

	s.log.InfoContext(ctx, "order placed",
		slog.String("order_id", orderID),
		slog.Int("items", items.Count()),
		slog.String("total", summary.Total.StringFixed(2)))
	return Receipt{OrderID: orderID, Summary: summary}, nil
}

// History lists the orders the backend returns for the current token.
func (s *Service) History(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func buildOrder(f Form, items domain.Snapshot, summary Summary) domain.Order {
	lines := make([]domain.OrderItem, len(items))
	for i, l := range items {
		lines[i] = domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Title,
			Price:     domain.NewAmount(l.UnitPrice),
			Quantity:  l.Quantity,
			Image:     l.Image,
		}
	}
	return domain.Order{
		ShippingInfo: domain.ShippingInfo{
			FullName:    f.FullName,
			Email:       f.Email,
			PhoneNumber: f.PhoneNumber,
			Address:     f.Address,
			City:        f.City,
			State:       f.State,
			Pincode:     f.Pincode,
		},
		Items:         lines,
		PaymentMethod: f.PaymentMethod,
		ItemsPrice:    domain.NewAmount(summary.Subtotal),
		TaxPrice:      domain.NewAmount(summary.Tax),
		ShippingPrice: domain.NewAmount(summary.Shipping),
		TotalPrice:    domain.NewAmount(summary.Total),
	}
}

// fallbackOrderID is used when the backend accepted the order without
// returning an id: the last 8 digits of the unix time in milliseconds.
func fallbackOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return ms
}

func trim(f Form) Form {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.Pincode = strings.TrimSpace(f.Pincode)
	return f
}
