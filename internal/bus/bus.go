// Package bus implements the synchronous in-process publish/subscribe channel
// that keeps independently rendered surfaces (navigation badge, cart panel,
// checkout form) in sync without a shared state tree.
//
// Payload conventions per channel:
//
//	cart-changed              nil
//	navigation-requested      string (destination key)
//	checkout-completed        *orders.Order
//	content-updated           string (content kind, e.g. "banner")
//	checkout-panel-requested  nil
package bus

import (
	"context"
	"sync"

	"github.com/brightgoods/storefront-backend/pkg/enums"
	"go.uber.org/multierr"
)

// Event is delivered to every subscriber of its channel.
type Event struct {
	Channel enums.Channel
	Payload any
}

// Handler consumes an event. A returned error does not stop delivery to the
// remaining subscribers; Publish aggregates all handler errors.
type Handler func(ctx context.Context, event Event) error

type subscription struct {
	id      int
	handler Handler
}

// Bus dispatches events synchronously on the publishing goroutine, in
// registration order, at most once per currently registered subscriber.
// There is no queuing, no retry and no cross-process delivery.
type Bus struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[enums.Channel][]subscription
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subscribers: map[enums.Channel][]subscription{}}
}

// Subscribe registers a handler and returns the capability to remove it.
// Unsubscribing during a dispatch pass does not affect that pass; the
// subscriber list is snapshotted before iterating.
func (b *Bus) Subscribe(channel enums.Channel, handler Handler) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[channel] = append(b.subscribers[channel], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[channel]
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[channel] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish synchronously invokes every registered subscriber for the channel.
func (b *Bus) Publish(ctx context.Context, channel enums.Channel, payload any) error {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.subscribers[channel]))
	copy(snapshot, b.subscribers[channel])
	b.mu.Unlock()

	event := Event{Channel: channel, Payload: payload}
	var errs error
	for _, sub := range snapshot {
		errs = multierr.Append(errs, sub.handler(ctx, event))
	}
	return errs
}

// SubscriberCount reports how many handlers are registered on the channel.
func (b *Bus) SubscriberCount(channel enums.Channel) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[channel])
}
