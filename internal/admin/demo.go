package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/google/uuid"
)

// Storage keys the demo console mirrors its records under.
const (
	KeyProducts = "adminProducts"
	KeyOrders   = "adminOrders"
	KeyUsers    = "adminUsers"
	KeySettings = "adminSettings"
)

// DemoStore is the in-memory admin repository used when no admin backend
// is configured. Every record set is mirrored as JSON in a storage.Store
// so edits survive a restart.
type DemoStore struct {
	mu       sync.RWMutex
	store    storage.Store
	products []domain.Product
	orders   []domain.Order
	users    []domain.User
	settings domain.StoreSettings
	now      func() time.Time
	log      *slog.Logger
}

// NewDemoStore loads every record set from store, seeding the ones that are
// missing or unreadable.
func NewDemoStore(ctx context.Context, store storage.Store, log *slog.Logger) (*DemoStore, error) {
	d := &DemoStore{store: store, now: time.Now, log: log}

	var err error
	if d.products, err = loadOrSeed(ctx, d, KeyProducts, seedProducts); err != nil {
		return nil, err
	}
	if d.orders, err = loadOrSeed(ctx, d, KeyOrders, seedOrders); err != nil {
		return nil, err
	}
	if d.users, err = loadOrSeed(ctx, d, KeyUsers, seedUsers); err != nil {
		return nil, err
	}
	if d.settings, err = loadOrSeed(ctx, d, KeySettings, seedSettings); err != nil {
		return nil, err
	}
	return d, nil
}

func loadOrSeed[T any](ctx context.Context, d *DemoStore, key string, seed func() T) (T, error) {
	raw, err := d.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if jerr := json.Unmarshal([]byte(raw), &v); jerr == nil {
			return v, nil
		}
		d.log.WarnContext(ctx, "reseeding corrupt admin data", "key", key)
	case !errors.Is(err, storage.ErrNotFound):
		var zero T
		return zero, fmt.Errorf("failed to load %s: %w", key, err)
	}

	v := seed()
	if err := d.persist(ctx, key, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (d *DemoStore) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := d.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Products

func (d *DemoStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.products), nil
}

func (d *DemoStore) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p.ID = uuid.New().String()
	next := append(slices.Clone(d.products), p)
	if err := d.persist(ctx, KeyProducts, next); err != nil {
		return domain.Product{}, err
	}
	d.products = next
	return p, nil
}

func (d *DemoStore) UpdateProduct(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.products, func(x domain.Product) bool { return x.ID == id })
	if i < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p.ID = id
	next := slices.Clone(d.products)
	next[i] = p
	if err := d.persist(ctx, KeyProducts, next); err != nil {
		return domain.Product{}, err
	}
	d.products = next
	return p, nil
}

func (d *DemoStore) DeleteProduct(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(d.products), func(x domain.Product) bool { return x.ID == id })
	if len(next) == len(d.products) {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err := d.persist(ctx, KeyProducts, next); err != nil {
		return err
	}
	d.products = next
	return nil
}

// Orders

func (d *DemoStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.orders), nil
}

func (d *DemoStore) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.orders, func(o domain.Order) bool { return o.ID == id })
	if i < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	next := slices.Clone(d.orders)
	next[i].Status = status
	if err := d.persist(ctx, KeyOrders, next); err != nil {
		return domain.Order{}, err
	}
	d.orders = next
	return next[i], nil
}

func (d *DemoStore) DeleteOrder(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(d.orders), func(o domain.Order) bool { return o.ID == id })
	if len(next) == len(d.orders) {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err := d.persist(ctx, KeyOrders, next); err != nil {
		return err
	}
	d.orders = next
	return nil
}

// Users

func (d *DemoStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.users), nil
}

// CreateUser assigns a fresh id and stamps the join month. New accounts
// start active with no order history.
func (d *DemoStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u.ID = uuid.New().String()
	u.Joined = d.now().Format("Jan 2006")
	u.Orders = 0
	u.TotalSpent = domain.Amount{}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	next := append(slices.Clone(d.users), u)
	if err := d.persist(ctx, KeyUsers, next); err != nil {
		return domain.User{}, err
	}
	d.users = next
	return u, nil
}

// UpdateUser replaces the editable fields and keeps the account history.
func (d *DemoStore) UpdateUser(ctx context.Context, id string, u domain.User) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.users, func(x domain.User) bool { return x.ID == id })
	if i < 0 {
		return domain.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	next := slices.Clone(d.users)
	cur := next[i]
	cur.Name = u.Name
	cur.Email = u.Email
	cur.Phone = u.Phone
	cur.Role = u.Role
	if u.Status != "" {
		cur.Status = u.Status
	}
	next[i] = cur
	if err := d.persist(ctx, KeyUsers, next); err != nil {
		return domain.User{}, err
	}
	d.users = next
	return cur, nil
}

func (d *DemoStore) DeleteUser(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(d.users), func(x domain.User) bool { return x.ID == id })
	if len(next) == len(d.users) {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err := d.persist(ctx, KeyUsers, next); err != nil {
		return err
	}
	d.users = next
	return nil
}

// Settings

func (d *DemoStore) GetSettings(ctx context.Context) (domain.StoreSettings, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings, nil
}

func (d *DemoStore) SaveSettings(ctx context.Context, s domain.StoreSettings) (domain.StoreSettings, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.persist(ctx, KeySettings, s); err != nil {
		return domain.StoreSettings{}, err
	}
	d.settings = s
	return s, nil
}
