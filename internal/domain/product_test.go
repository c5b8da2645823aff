package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalBackendShape(t *testing.T) {
	body := `{
		"_id": "65a1f",
		"name": "Running Shoes",
		"category": "Mens Wear",
		"brand": "Nike",
		"price": 4999,
		"discountPrice": 2999,
		"MRP": 4999,
		"images": ["a.jpg", "b.jpg"],
		"rating": 4.6,
		"remainingQuantity": 7,
		"sizes": ["8", "9"]
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "65a1f", p.ID)
	assert.Equal(t, "Running Shoes", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(2999)))
	assert.True(t, p.MRP.Equal(decimal.NewFromInt(4999)))
	assert.Equal(t, "a.jpg", p.Image())
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, []string{"8", "9"}, p.Sizes)
	assert.Equal(t, 40, p.DiscountPercent())
}

func TestProduct_UnmarshalDemoShape(t *testing.T) {
	body := `{"id": 201, "img": "men1.jpg", "title": "Formal Shirt", "price": 1599, "oldPrice": 2499, "rating": 4.7}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "201", p.ID)
	assert.Equal(t, "Formal Shirt", p.Name)
	assert.Equal(t, []string{"men1.jpg"}, p.Images)
	assert.True(t, p.MRP.Equal(decimal.NewFromInt(2499)))
	assert.Equal(t, 36, p.DiscountPercent())
	assert.False(t, p.InStock())
}

func TestProduct_RoundTrip(t *testing.T) {
	in := Product{
		ID:       "p1",
		Name:     "Watch",
		Category: "Accessories",
		Price:    decimal.RequireFromString("249.50"),
		MRP:      decimal.RequireFromString("300"),
		Images:   []string{"w.jpg"},
		Stock:    3,
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Product
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.True(t, in.Price.Equal(out.Price))
	assert.True(t, in.MRP.Equal(out.MRP))
	assert.Equal(t, in.Stock, out.Stock)
}

func TestProduct_NoDiscountWithoutMRP(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(100)}
	assert.Equal(t, 0, p.DiscountPercent())
	assert.Equal(t, "", p.Image())
}

func TestIdentity_CartKey(t *testing.T) {
	assert.Equal(t, GuestCartKey, Guest.CartKey())

	byEmail := Identity{Token: "t", Profile: Profile{ID: "42", Email: "bob@example.com"}}
	assert.Equal(t, "cart_bob@example.com", byEmail.CartKey())

	byID := Identity{Token: "t", Profile: Profile{ID: "42"}}
	assert.Equal(t, "cart_42", byID.CartKey())

	admin := Identity{Token: "t", Profile: Profile{Email: "a@b.c", Role: RoleAdmin}}
	assert.True(t, admin.IsAdmin())
	assert.False(t, byID.IsAdmin())
}

func TestOrder_UnmarshalIDAliases(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"abc","totalPrice":217.18,"status":"Pending"}`), &o))
	assert.Equal(t, "abc", o.ID)
	assert.Equal(t, OrderStatusPending, o.Status)

	var created Order
	require.NoError(t, json.Unmarshal([]byte(`{"orderId":"ORD-9","_id":"abc"}`), &created))
	assert.Equal(t, "ORD-9", created.ID)
}

func TestOrder_AmountsStayExact(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"totalPrice":217.18,"itemsPrice":"184.05","orderItems":[{"price":0.1,"quantity":3}]}`), &o))
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("217.18")))
	assert.True(t, o.ItemsPrice.Equal(decimal.RequireFromString("184.05")))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "0.3", o.Items[0].Price.Mul(decimal.NewFromInt(3)).String())

	out, err := json.Marshal(Order{TotalPrice: RequireAmount("217.18")})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"totalPrice":217.18`)
	assert.Contains(t, string(out), `"taxPrice":0`)
}
