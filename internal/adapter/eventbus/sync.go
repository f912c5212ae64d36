// Package eventbus contains the synchronous event bus used throughout
// the player.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// SyncBus delivers events to handlers synchronously, in subscription
// order, on the publishing goroutine. It is safe for concurrent use.
// Slow handlers delay every subscriber behind them; handlers that need
// to block should hand off to their own goroutine.
type SyncBus struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[domain.EventType][]subscription
	wildcard    []subscription
	nextID      uint64
	closed      bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSync creates a synchronous event bus. The logger may be nil.
func NewSync(logger *slog.Logger) *SyncBus {
	return &SyncBus{
		logger:      logger,
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// Publish delivers the event first to its type subscribers, then to
// wildcard subscribers. Publishing on a closed bus is a no-op. A
// panicking handler is recovered and logged; remaining handlers still
// run.
func (bus *SyncBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	// Copy under the read lock so handlers may subscribe or
	// unsubscribe while we deliver.
	targets := make([]subscription, 0, len(bus.subscribers[event.Type()])+len(bus.wildcard))
	targets = append(targets, bus.subscribers[event.Type()]...)
	targets = append(targets, bus.wildcard...)
	bus.mu.RUnlock()

	for _, sub := range targets {
		bus.deliver(sub.handler, event)
	}
}

func (bus *SyncBus) deliver(handler domain.EventHandler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && bus.logger != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())))
		}
	}()
	handler(event)
}

// Subscribe registers a handler for one event type. The same handler
// may be registered more than once and is then called once per
// registration.
func (bus *SyncBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("subscribe on closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.nextID))
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler for every event regardless of type.
func (bus *SyncBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("subscribe on closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("sub-all-%d", bus.nextID))
	bus.wildcard = append(bus.wildcard, subscription{id: id, handler: handler})
	return id
}

// Unsubscribe releases a subscription. Unknown ids are a no-op.
func (bus *SyncBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for eventType, subs := range bus.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				bus.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
	for i, sub := range bus.wildcard {
		if sub.id == id {
			bus.wildcard = append(bus.wildcard[:i], bus.wildcard[i+1:]...)
			return
		}
	}
}

// Close drops all subscriptions. A second Close returns an error.
func (bus *SyncBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return fmt.Errorf("event bus already closed")
	}
	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.wildcard = nil
	return nil
}

var _ ports.EventBus = (*SyncBus)(nil)
