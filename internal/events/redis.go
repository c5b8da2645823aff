package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "storefront:events"

// Redis fans events out over a Redis pub/sub channel.
type Redis struct {
	client  *redis.Client
	pubsub  *redis.PubSub
	channel string
	hub     *hub
	log     *slog.Logger
}

// NewRedis subscribes to channel and waits for the subscription to be
// confirmed, so events published after it returns are not missed.
func NewRedis(ctx context.Context, client *redis.Client, channel string, log *slog.Logger) (*Redis, error) {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	ps := client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return &Redis{
		client:  client,
		pubsub:  ps,
		channel: channel,
		hub:     newHub(),
		log:     log,
	}, nil
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (r *Redis) Subscribe(fn Handler) func() {
	return r.hub.subscribe(fn)
}

// Run dispatches received events until ctx is done or the subscription
// is closed.
func (r *Redis) Run(ctx context.Context) {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if e, ok := decode(r.log, []byte(msg.Payload)); ok {
				r.hub.dispatch(ctx, e)
			}
		}
	}
}

func (r *Redis) Close() error {
	return r.pubsub.Close()
}
