// Package bus is the in-process event bus used when no Kafka brokers are
// configured.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Bus publishes events to in-process subscribers. Events published while a
// topic has no subscriber are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(slog.Default()),
		),
	}
}

func (b *Bus) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("key", key)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns the raw message channel for topic. It is closed when ctx ends.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Consume delivers every message of topic to handler until ctx is done.
// Handler errors are logged and the message is acked anyway.
func (b *Bus) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	messages, err := b.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Failed to subscribe", "topic", topic, "group", groupID, "err", err)
		return
	}

	for msg := range messages {
		if err := handler(ctx, msg.Payload); err != nil {
			slog.Error("Error handling message", "topic", topic, "group", groupID, "err", err)
		}
		msg.Ack()
	}
	slog.Info("Consumer shutting down", "topic", topic, "group", groupID)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
