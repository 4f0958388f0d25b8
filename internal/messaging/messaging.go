package messaging

import "context"

// Topics the storefront publishes to.
const (
	TopicCartItems    = "cart.items"
	TopicOrdersPlaced = "orders.placed"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber defines an interface for subscribing to a message topic.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) PublishEvent(context.Context, string, string, any) error { return nil }
