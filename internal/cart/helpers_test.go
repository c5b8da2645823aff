package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var errWriteFailed = errors.New("disk full")

// failingStore rejects writes while failWrites is set.
type failingStore struct {
	*storage.Memory
	failWrites bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errWriteFailed
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.failWrites {
		return errWriteFailed
	}
	return f.Memory.Delete(ctx, key)
}

func setupStore(t *testing.T, mem storage.Store, bus events.Bus) *Store {
	t.Helper()
	s := NewStore(context.Background(), NewPersistence(mem, logger.Discard()), bus, Options{NoticeTTL: time.Hour}, logger.Discard())
	t.Cleanup(s.Close)
	return s
}

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  decimal.NewFromInt(price),
		Images: []string{"/img/" + id + ".png"},
	}
}

func bob() domain.Identity {
	return domain.Identity{Token: "t-bob", Profile: domain.Profile{ID: "u1", Email: "bob@example.com", Role: domain.RoleCustomer}}
}

func alice() domain.Identity {
	return domain.Identity{Token: "t-alice", Profile: domain.Profile{ID: "u2", Email: "alice@example.com", Role: domain.RoleCustomer}}
}
