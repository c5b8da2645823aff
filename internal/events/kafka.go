package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultKafkaTopic = "storefront-events"

	readRetryMin = 500 * time.Millisecond
	readRetryMax = 30 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Kafka publishes events to a topic. Every instance reads with its own
// consumer group so each one sees every event.
type Kafka struct {
	writer   *kafka.Writer
	reader   messageReader
	hub      *hub
	log      *slog.Logger
	retryMin time.Duration
	retryMax time.Duration
}

func NewKafka(brokers []string, topic string, log *slog.Logger) *Kafka {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "storefront-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
		MaxBytes:    10e6, // 10MB
	})
	return &Kafka{
		writer:   writer,
		reader:   reader,
		hub:      newHub(),
		log:      log,
		retryMin: readRetryMin,
		retryMax: readRetryMax,
	}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(e.Key), Value: data}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish failed: %w", err)
	}
	return nil
}

func (k *Kafka) Subscribe(fn Handler) func() {
	return k.hub.subscribe(fn)
}

// Run reads messages until ctx is done. Read errors are retried after a
// pause that doubles up to retryMax and resets on the next good read.
func (k *Kafka) Run(ctx context.Context) {
	delay := k.retryMin
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return
			}
			k.log.Error("error reading event", slog.String("error", err.Error()), slog.Duration("retry_in", delay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, k.retryMax)
			continue
		}
		delay = k.retryMin
		if e, ok := decode(k.log, m.Value); ok {
			k.hub.dispatch(ctx, e)
		}
	}
}

func (k *Kafka) Close() error {
	return errors.Join(k.writer.Close(), k.reader.Close())
}
