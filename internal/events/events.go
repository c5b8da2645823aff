// Package events carries change notifications between storefront
// instances that share one storage backend.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

type Type string

const (
	// TypeIdentity is published after login and logout.
	TypeIdentity Type = "identity"
	// TypeCart is published after a cart snapshot is written or removed.
	TypeCart Type = "cart"
)

// Event names the storage key that changed. Origin identifies the
// publishing instance so subscribers can skip their own writes.
type Event struct {
	Type   Type   `json:"type"`
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

type Handler func(ctx context.Context, e Event)

// Bus delivers every published event to every subscriber, including the
// publisher's own. Delivery is best effort with no ordering guarantee
// across instances.
type Bus interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(fn Handler) (unsubscribe func())
	Close() error
}

// hub is the in-process fan-out shared by all bus drivers.
type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]Handler
}

func newHub() *hub {
	return &hub{subs: make(map[int]Handler)}
}

func (h *hub) subscribe(fn Handler) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) dispatch(ctx context.Context, e Event) {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs))
	for _, fn := range h.subs {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, e)
	}
}

func encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}

// decode drops malformed payloads with a log line; a bad message from
// another instance must not stop the receive loop.
func decode(log *slog.Logger, data []byte) (Event, bool) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		log.Warn("dropping malformed event", slog.String("error", err.Error()))
		return Event{}, false
	}
	if e.Type == "" || e.Origin == "" {
		log.Warn("dropping incomplete event", slog.String("payload", string(data)))
		return Event{}, false
	}
	return e, true
}
