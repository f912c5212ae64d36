package ports

import (
	"github.com/auralplayer/aural/internal/domain"
)

// EventBus is the publish/subscribe backbone of the player. Producers
// never know their consumers: the engine publishes lifecycle events,
// the player publishes state snapshots, and bridges subscribe to what
// they mirror outward.
//
// Subscribe returns a SubscriptionID used as the single disposal
// handle; every subscriber releases its subscriptions on shutdown.
//
// Implementations must be safe for concurrent use. Handlers should
// return quickly; a synchronous bus delivers in publish order and a
// slow handler delays everyone behind it.
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	Publish(event domain.Event)

	// Subscribe registers a handler for one event type and returns
	// the subscription handle. The same handler may be registered
	// multiple times and will then be called once per registration.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe releases a subscription. Unknown or already
	// released ids are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler for every event regardless of
	// type. Useful for debug logging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Close shuts the bus down and drops all subscriptions.
	Close() error
}
