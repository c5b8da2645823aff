package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

type op struct {
	Kind    int
	Product int
	Size    int
	Qty     int
}

func (o op) String() string {
	return fmt.Sprintf("{kind:%d product:%d size:%d qty:%d}", o.Kind, o.Product, o.Size, o.Qty)
}

var sizes = []string{"", "M", "L"}

func genOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 3),
		gen.IntRange(0, 4),
		gen.IntRange(0, len(sizes)-1),
		gen.IntRange(-2, 6),
	).Map(func(v []interface{}) op {
		return op{Kind: v[0].(int), Product: v[1].(int), Size: v[2].(int), Qty: v[3].(int)}
	})
}

func apply(ctx context.Context, s *Store, o op) {
	id := fmt.Sprintf("p%d", o.Product)
	size := sizes[o.Size]
	switch o.Kind {
	case 0, 1:
		_ = s.AddItem(ctx, domain.Product{ID: id, Name: id, Price: decimal.NewFromInt(int64(o.Product*10 + 5))}, size, "")
	case 2:
		s.RemoveItem(ctx, id, size, "")
	case 3:
		s.SetQuantity(ctx, id, o.Qty, size, "")
	}
}

func TestStore_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	newStore := func(mem storage.Store) *Store {
		return NewStore(context.Background(), NewPersistence(mem, logger.Discard()), nil, Options{NoticeTTL: time.Hour}, logger.Discard())
	}

	properties.Property("count equals sum of quantities and no line drops below one", prop.ForAll(
		func(ops []op) bool {
			ctx := context.Background()
			s := newStore(storage.NewMemory())
			defer s.Close()
			for _, o := range ops {
				apply(ctx, s, o)
				sum := 0
				seen := map[domain.LineKey]bool{}
				for _, l := range s.Items() {
					if l.Quantity < 1 || seen[l.Key()] {
						return false
					}
					seen[l.Key()] = true
					sum += l.Quantity
				}
				if sum != s.TotalCount() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	properties.Property("total price equals sum of unit price times quantity", prop.ForAll(
		func(ops []op) bool {
			ctx := context.Background()
			s := newStore(storage.NewMemory())
			defer s.Close()
			for _, o := range ops {
				apply(ctx, s, o)
			}
			want := decimal.Zero
			for _, l := range s.Items() {
				want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
			return want.Equal(s.TotalPrice())
		},
		gen.SliceOf(genOp()),
	))

	properties.Property("reloading the namespace yields the same lines", prop.ForAll(
		func(ops []op) bool {
			ctx := context.Background()
			mem := storage.NewMemory()
			s := newStore(mem)
			defer s.Close()
			for _, o := range ops {
				apply(ctx, s, o)
			}
			reloaded := newStore(mem)
			defer reloaded.Close()

			want, got := s.Items(), reloaded.Items()
			if len(want) != len(got) {
				return false
			}
			for i := range want {
				if want[i].Key() != got[i].Key() || want[i].Quantity != got[i].Quantity || !want[i].UnitPrice.Equal(got[i].UnitPrice) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	properties.TestingRun(t)
}
