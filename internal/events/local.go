package events

import "context"

// Local delivers events synchronously inside one process. Several
// storefront instances sharing a Local bus behave like browser tabs
// sharing storage.
type Local struct {
	hub *hub
}

func NewLocal() *Local {
	return &Local{hub: newHub()}
}

func (l *Local) Publish(ctx context.Context, e Event) error {
	l.hub.dispatch(ctx, e)
	return nil
}

func (l *Local) Subscribe(fn Handler) func() {
	return l.hub.subscribe(fn)
}

func (l *Local) Close() error {
	return nil
}
