package domain

import "github.com/shopspring/decimal"

// LineKey identifies a cart line. The same product in another size or
// color is a different line.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

type LineItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the ordered list of lines stored under one namespace key.
type Snapshot []LineItem

func (s Snapshot) Count() int {
	total := 0
	for _, l := range s {
		total += l.Quantity
	}
	return total
}

func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}
