package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the read model returned by the catalog backend. It is never
// mutated locally.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MRP         decimal.Decimal `json:"mrp"`
	Images      []string        `json:"images,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
}

// productJSON lists every field spelling the backends and the demo data use.
type productJSON struct {
	ID                json.RawMessage  `json:"id"`
	MongoID           json.RawMessage  `json:"_id"`
	Name              string           `json:"name"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Brand             string           `json:"brand"`
	Category          string           `json:"category"`
	Price             *decimal.Decimal `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discountPrice"`
	MRP               *decimal.Decimal `json:"MRP"`
	OldPrice          *decimal.Decimal `json:"oldPrice"`
	Images            []string         `json:"images"`
	Img               string           `json:"img"`
	Image             string           `json:"image"`
	Rating            float64          `json:"rating"`
	Stock             *int             `json:"stock"`
	RemainingQuantity *int             `json:"remainingQuantity"`
	Sizes             []string         `json:"sizes"`
	Colors            []string         `json:"colors"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Product{
		ID:          firstNonEmpty(rawID(raw.MongoID), rawID(raw.ID)),
		Name:        firstNonEmpty(raw.Name, raw.Title),
		Description: raw.Description,
		Brand:       raw.Brand,
		Category:    raw.Category,
		Rating:      raw.Rating,
		Sizes:       raw.Sizes,
		Colors:      raw.Colors,
	}

	switch {
	case raw.DiscountPrice != nil:
		out.Price = *raw.DiscountPrice
	case raw.Price != nil:
		out.Price = *raw.Price
	}
	switch {
	case raw.MRP != nil:
		out.MRP = *raw.MRP
	case raw.OldPrice != nil:
		out.MRP = *raw.OldPrice
	}

	switch {
	case len(raw.Images) > 0:
		out.Images = raw.Images
	case raw.Img != "":
		out.Images = []string{raw.Img}
	case raw.Image != "":
		out.Images = []string{raw.Image}
	}

	switch {
	case raw.Stock != nil:
		out.Stock = *raw.Stock
	case raw.RemainingQuantity != nil:
		out.Stock = *raw.RemainingQuantity
	}

	*p = out
	return nil
}

// Image returns the primary image, or "" when the product has none.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// DiscountPercent is the rounded saving against the MRP, 0 when there is none.
func (p Product) DiscountPercent() int {
	if !p.MRP.IsPositive() || !p.MRP.GreaterThan(p.Price) {
		return 0
	}
	pct := p.MRP.Sub(p.Price).Div(p.MRP).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
