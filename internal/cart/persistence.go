package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// Persistence reads and writes cart snapshots as JSON under their
// namespace key.
type Persistence struct {
	store storage.Store
	log   *slog.Logger
}

func NewPersistence(store storage.Store, log *slog.Logger) *Persistence {
	return &Persistence{store: store, log: log}
}

// Load returns the snapshot stored under key. A missing key, a read error
// or an unparseable value all yield an empty snapshot; an unparseable
// value is also deleted.
func (p *Persistence) Load(ctx context.Context, key string) domain.Snapshot {
	raw, err := p.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Snapshot{}
	}
	if err != nil {
		p.log.ErrorContext(ctx, "failed to read cart", slog.String("key", key), slog.String("error", err.Error()))
		return domain.Snapshot{}
	}

	var lines domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		p.log.WarnContext(ctx, "discarding corrupt cart", slog.String("key", key), slog.String("error", err.Error()))
		if errDelete := p.store.Delete(ctx, key); errDelete != nil {
			p.log.ErrorContext(ctx, "failed to delete corrupt cart", slog.String("key", key), slog.String("error", errDelete.Error()))
		}
		return domain.Snapshot{}
	}

	out := make(domain.Snapshot, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			p.log.WarnContext(ctx, "dropping invalid cart line", slog.String("key", key), slog.String("product_id", l.ProductID))
			continue
		}
		out = append(out, l)
	}
	return out
}

func (p *Persistence) Save(ctx context.Context, key string, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot.Clone())
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := p.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", key, err)
	}
	return nil
}

func (p *Persistence) Remove(ctx context.Context, key string) error {
	if err := p.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove cart %s: %w", key, err)
	}
	return nil
}
