package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCash   PaymentMethod = "cash"
)

type ShippingInfo struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
}

// Amount is a decimal that goes over the wire as a bare JSON number.
// Quoted numbers are accepted when decoding.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// RequireAmount parses s and panics on malformed input. Meant for fixed
// values.
func RequireAmount(s string) Amount {
	return Amount{Decimal: decimal.RequireFromString(s)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

type OrderItem struct {
	ProductID string `json:"product"`
	Name      string `json:"name"`
	Price     Amount `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// Order mirrors the backend order document.
type Order struct {
	ID            string        `json:"id,omitempty"`
	ShippingInfo  ShippingInfo  `json:"shippingInfo"`
	Items         []OrderItem   `json:"orderItems"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	ItemsPrice    Amount        `json:"itemsPrice"`
	TaxPrice      Amount        `json:"taxPrice"`
	ShippingPrice Amount        `json:"shippingPrice"`
	TotalPrice    Amount        `json:"totalPrice"`
	Status        OrderStatus   `json:"status,omitempty"`
	CreatedAt     time.Time     `json:"createdAt,omitzero"`
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	aux := struct {
		*alias
		MongoID json.RawMessage `json:"_id"`
		OrderID json.RawMessage `json:"orderId"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = firstNonEmpty(rawID(aux.OrderID), rawID(aux.MongoID))
	}
	return nil
}
