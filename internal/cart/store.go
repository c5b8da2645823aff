// Package cart holds the active cart snapshot of the current identity.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("product has no id")

const (
	NoticeMessage    = "Item added to cart!"
	DefaultNoticeTTL = 3 * time.Second
)

// Notice is the transient confirmation shown after an item is added.
type Notice struct {
	Message   string `json:"message"`
	ProductID string `json:"productId"`
	Count     int    `json:"count"`
}

type Options struct {
	// Origin identifies this instance on the bus. Generated when empty.
	Origin string
	// NoticeTTL is how long a Notice stays visible.
	NoticeTTL time.Duration
}

// Store is the in-memory cart for the active namespace. Every change is
// written through to Persistence; a failed write is logged and memory
// keeps the new state.
type Store struct {
	mu          sync.Mutex
	persist     *Persistence
	bus         events.Bus
	origin      string
	noticeTTL   time.Duration
	log         *slog.Logger
	key         string
	lines       domain.Snapshot
	notice      *Notice
	noticeGen   uint64
	noticeTimer *time.Timer
	unsubscribe func()
}

// NewStore starts on the guest namespace. bus may be nil.
func NewStore(ctx context.Context, persist *Persistence, bus events.Bus, opts Options, log *slog.Logger) *Store {
	if opts.Origin == "" {
		opts.Origin = uuid.NewString()
	}
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}
	s := &Store{
		persist:   persist,
		bus:       bus,
		origin:    opts.Origin,
		noticeTTL: opts.NoticeTTL,
		log:       log,
		key:       domain.GuestCartKey,
	}
	s.lines = persist.Load(ctx, s.key)
	if bus != nil {
		s.unsubscribe = bus.Subscribe(s.handleEvent)
	}
	return s
}

func (s *Store) AddItem(ctx context.Context, p domain.Product, size, color string) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	key := domain.LineKey{ProductID: p.ID, Size: size, Color: color}
	s.update(ctx, func() bool {
		if i := s.indexOf(key); i >= 0 {
			s.lines[i].Quantity++
		} else {
			s.lines = append(s.lines, domain.LineItem{
				ProductID: p.ID,
				Title:     p.Name,
				UnitPrice: p.Price,
				Quantity:  1,
				Image:     p.Image(),
				Size:      size,
				Color:     color,
			})
		}
		s.showNoticeLocked(p.ID)
		return true
	})
	return nil
}

// RemoveItem deletes the matching line. Absent lines are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID, size, color string) {
	key := domain.LineKey{ProductID: productID, Size: size, Color: color}
	s.update(ctx, func() bool {
		i := s.indexOf(key)
		if i < 0 {
			return false
		}
		s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
		return true
	})
}

// SetQuantity replaces the quantity of an existing line. A quantity below
// one removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int, size, color string) {
	if qty < 1 {
		s.RemoveItem(ctx, productID, size, color)
		return
	}
	key := domain.LineKey{ProductID: productID, Size: size, Color: color}
	s.update(ctx, func() bool {
		i := s.indexOf(key)
		if i < 0 || s.lines[i].Quantity == qty {
			return false
		}
		s.lines[i].Quantity = qty
		return true
	})
}

// Clear empties the active cart and deletes its stored copy.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = domain.Snapshot{}
	key := s.key
	if err := s.persist.Remove(ctx, key); err != nil {
		s.log.ErrorContext(ctx, "failed to remove cart", slog.String("key", key), slog.String("error", err.Error()))
	}
	s.mu.Unlock()

	s.publish(ctx, key)
}

// RemoveOrdered takes the ordered quantities out of the cart stored under
// key. Lines added after the order was taken stay. When key is no longer
// the active namespace only its stored copy is changed.
func (s *Store) RemoveOrdered(ctx context.Context, key string, ordered domain.Snapshot) {
	s.mu.Lock()
	active := key == s.key
	lines := s.lines
	if !active {
		lines = s.persist.Load(ctx, key)
	}
	remaining := subtract(lines, ordered)
	if active {
		s.lines = remaining
	}

	var err error
	if len(remaining) == 0 {
		err = s.persist.Remove(ctx, key)
	} else {
		err = s.persist.Save(ctx, key, remaining)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to persist cart", slog.String("key", key), slog.String("error", err.Error()))
	}
	s.mu.Unlock()

	s.publish(ctx, key)
}

// SwitchIdentity drops the in-memory snapshot and loads the namespace of
// id. Carts are never merged across identities.
func (s *Store) SwitchIdentity(ctx context.Context, id domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = id.CartKey()
	s.lines = s.persist.Load(ctx, s.key)
	s.clearNoticeLocked()
	s.log.DebugContext(ctx, "cart namespace switched", slog.String("key", s.key), slog.Int("lines", len(s.lines)))
}

func (s *Store) Items() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Clone()
}

func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Count()
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Total()
}

// Active returns the namespace together with a copy of its lines.
func (s *Store) Active() (string, domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.lines.Clone()
}

// Namespace is the storage key of the active cart.
func (s *Store) Namespace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Notice returns the pending add-to-cart notice, or nil.
func (s *Store) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}

func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	s.clearNoticeLocked()
	s.mu.Unlock()
}

// update runs fn under the lock and, when fn reports a change, writes the
// snapshot through and announces it.
func (s *Store) update(ctx context.Context, fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	key := s.key
	if err := s.persist.Save(ctx, key, s.lines); err != nil {
		s.log.ErrorContext(ctx, "failed to persist cart", slog.String("key", key), slog.String("error", err.Error()))
	}
	s.mu.Unlock()

	s.publish(ctx, key)
}

func (s *Store) publish(ctx context.Context, key string) {
	if s.bus == nil {
		return
	}
	e := events.Event{Type: events.TypeCart, Key: key, Origin: s.origin}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "failed to publish cart event", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// handleEvent reloads the snapshot when another instance wrote the
// active namespace.
func (s *Store) handleEvent(ctx context.Context, e events.Event) {
	if e.Type != events.TypeCart || e.Origin == s.origin {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Key != s.key {
		return
	}
	s.lines = s.persist.Load(ctx, s.key)
}

// subtract returns lines with the quantities of ordered taken off. Lines
// that reach zero are dropped.
func subtract(lines, ordered domain.Snapshot) domain.Snapshot {
	taken := make(map[domain.LineKey]int, len(ordered))
	for _, l := range ordered {
		taken[l.Key()] += l.Quantity
	}
	out := make(domain.Snapshot, 0, len(lines))
	for _, l := range lines {
		l.Quantity -= taken[l.Key()]
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) indexOf(key domain.LineKey) int {
	for i, l := range s.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) showNoticeLocked(productID string) {
	s.clearNoticeLocked()
	s.notice = &Notice{Message: NoticeMessage, ProductID: productID, Count: s.lines.Count()}
	gen := s.noticeGen
	s.noticeTimer = time.AfterFunc(s.noticeTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.noticeGen == gen {
			s.notice = nil
		}
	})
}

func (s *Store) clearNoticeLocked() {
	s.noticeGen++
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	s.notice = nil
}
