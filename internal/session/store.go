// Package session owns the authenticated identity and its persisted copy.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Storage keys of the persisted identity.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var ErrInvalidIdentity = errors.New("identity needs a token and an email or id")

// Observer is told about every identity change made by the store, in the
// order the changes happen.
type Observer func(ctx context.Context, id domain.Identity)

type Store struct {
	// writeMu serializes Login, Logout and Restore together with the
	// observer calls they make. Observers must not call back into the
	// store.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current domain.Identity

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int

	store       storage.Store
	bus         events.Bus
	origin      string
	log         *slog.Logger
	now         func() time.Time
	unsubscribe func()
}

// NewStore starts as guest; call Restore to load a persisted identity.
// bus may be nil and origin is generated when empty.
func NewStore(store storage.Store, bus events.Bus, origin string, log *slog.Logger) *Store {
	if origin == "" {
		origin = uuid.NewString()
	}
	return &Store{
		observers: make(map[int]Observer),
		store:     store,
		bus:       bus,
		origin:    origin,
		log:       log,
		now:       time.Now,
	}
}

// Current returns the identity held in memory, or domain.Guest.
func (s *Store) Current() domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Login persists token and profile together. On a failed write the
// previous values are put back and the in-memory identity is unchanged.
func (s *Store) Login(ctx context.Context, token string, profile domain.Profile) error {
	token = strings.TrimSpace(token)
	if token == "" || (strings.TrimSpace(profile.Email) == "" && strings.TrimSpace(profile.ID) == "") {
		return ErrInvalidIdentity
	}
	if profile.Role == "" {
		profile.Role = domain.RoleCustomer
	}
	user, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	s.writeMu.Lock()
	previous := s.snapshotKeys(ctx)
	if err := s.store.SetMany(ctx, map[string]string{KeyToken: token, KeyUser: string(user)}); err != nil {
		s.rollback(ctx, previous)
		s.writeMu.Unlock()
		return fmt.Errorf("failed to persist identity: %w", err)
	}
	id := domain.Identity{Token: token, Profile: profile}
	s.set(id)
	s.notify(ctx, id)
	s.writeMu.Unlock()

	s.log.InfoContext(ctx, "logged in", slog.String("cart_key", id.CartKey()), slog.String("role", string(profile.Role)))
	s.publish(ctx, KeyUser)
	return nil
}

// Logout removes the outgoing identity's cart, token and profile and
// switches to guest. The in-memory identity becomes guest even when the
// storage delete fails; that error is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	outgoing := s.Current()
	keys := []string{KeyToken, KeyUser}
	if !outgoing.IsGuest() && outgoing.CartKey() != domain.GuestCartKey {
		keys = append(keys, outgoing.CartKey())
	}
	errDelete := s.store.DeleteMany(ctx, keys...)
	s.set(domain.Guest)
	s.notify(ctx, domain.Guest)
	s.writeMu.Unlock()

	if errDelete != nil {
		s.log.ErrorContext(ctx, "failed to clear identity", slog.String("error", errDelete.Error()))
	}
	s.log.InfoContext(ctx, "logged out", slog.String("cart_key", outgoing.CartKey()))
	s.publish(ctx, KeyUser)

	if errDelete != nil {
		return fmt.Errorf("failed to clear identity: %w", errDelete)
	}
	return nil
}

// Restore loads the persisted identity. A missing half, an unreadable
// profile or an expired JWT all leave the store as guest, and the broken
// pair is removed. Observers are notified when the identity changes.
func (s *Store) Restore(ctx context.Context) (domain.Identity, error) {
	s.writeMu.Lock()
	id, err := s.load(ctx)
	if err != nil {
		s.writeMu.Unlock()
		return s.Current(), err
	}
	if id != s.Current() {
		s.set(id)
		s.notify(ctx, id)
	}
	s.writeMu.Unlock()
	return id, nil
}

// OnChange registers fn and returns a func that removes it.
func (s *Store) OnChange(fn Observer) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// Listen follows identity changes published by other instances. The last
// write wins.
func (s *Store) Listen() {
	if s.bus == nil || s.unsubscribe != nil {
		return
	}
	s.unsubscribe = s.bus.Subscribe(func(ctx context.Context, e events.Event) {
		if e.Type != events.TypeIdentity || e.Origin == s.origin {
			return
		}
		if _, err := s.Restore(ctx); err != nil {
			s.log.ErrorContext(ctx, "failed to follow remote identity change", slog.String("error", err.Error()))
		}
	})
}

func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Store) load(ctx context.Context) (domain.Identity, error) {
	token, errToken := s.store.Get(ctx, KeyToken)
	if errToken != nil && !errors.Is(errToken, storage.ErrNotFound) {
		return domain.Guest, fmt.Errorf("failed to read token: %w", errToken)
	}
	user, errUser := s.store.Get(ctx, KeyUser)
	if errUser != nil && !errors.Is(errUser, storage.ErrNotFound) {
		return domain.Guest, fmt.Errorf("failed to read user: %w", errUser)
	}

	switch {
	case errToken != nil && errUser != nil:
		return domain.Guest, nil
	case errToken != nil || errUser != nil:
		s.discard(ctx, "incomplete identity")
		return domain.Guest, nil
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(user), &profile); err != nil {
		s.discard(ctx, "corrupt user")
		return domain.Guest, nil
	}
	id := domain.Identity{Token: strings.TrimSpace(token), Profile: profile}
	if id.IsGuest() || (profile.Email == "" && profile.ID == "") {
		s.discard(ctx, "incomplete identity")
		return domain.Guest, nil
	}
	if tokenExpired(id.Token, s.now()) {
		s.discard(ctx, "expired token")
		return domain.Guest, nil
	}
	return id, nil
}

func (s *Store) discard(ctx context.Context, reason string) {
	s.log.WarnContext(ctx, "discarding persisted identity", slog.String("reason", reason))
	if err := s.store.DeleteMany(ctx, KeyToken, KeyUser); err != nil {
		s.log.ErrorContext(ctx, "failed to delete persisted identity", slog.String("error", err.Error()))
	}
}

// snapshotKeys reads the current token and user so a failed login can
// put them back. Unreadable values are treated as absent.
func (s *Store) snapshotKeys(ctx context.Context) map[string]*string {
	prev := make(map[string]*string, 2)
	for _, k := range []string{KeyToken, KeyUser} {
		v, err := s.store.Get(ctx, k)
		if err != nil {
			prev[k] = nil
			continue
		}
		prev[k] = &v
	}
	return prev
}

func (s *Store) rollback(ctx context.Context, prev map[string]*string) {
	restore := make(map[string]string)
	var remove []string
	for k, v := range prev {
		if v == nil {
			remove = append(remove, k)
			continue
		}
		restore[k] = *v
	}
	if len(restore) > 0 {
		if err := s.store.SetMany(ctx, restore); err != nil {
			s.log.ErrorContext(ctx, "failed to restore previous identity", slog.String("error", err.Error()))
		}
	}
	if len(remove) > 0 {
		if err := s.store.DeleteMany(ctx, remove...); err != nil {
			s.log.ErrorContext(ctx, "failed to remove partial identity", slog.String("error", err.Error()))
		}
	}
}

func (s *Store) set(id domain.Identity) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

func (s *Store) notify(ctx context.Context, id domain.Identity) {
	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(ctx, id)
	}
}

func (s *Store) publish(ctx context.Context, key string) {
	if s.bus == nil {
		return
	}
	e := events.Event{Type: events.TypeIdentity, Key: key, Origin: s.origin}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "failed to publish identity event", slog.String("error", err.Error()))
	}
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Signatures are not checked; the backend does that. Tokens that are not
// JWTs never expire here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
