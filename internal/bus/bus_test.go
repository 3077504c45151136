package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/brightgoods/storefront-backend/pkg/enums"
	"go.uber.org/multierr"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	t.Parallel()

	b := New()
	var order []string
	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		order = append(order, "first")
		return nil
	})
	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})

	if err := b.Publish(context.Background(), enums.ChannelCartChanged, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", order)
	}
}

func TestPublishScopesToChannel(t *testing.T) {
	t.Parallel()

	b := New()
	delivered := 0
	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		delivered++
		return nil
	})

	if err := b.Publish(context.Background(), enums.ChannelNavigationRequested, "home"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 0 {
		t.Fatal("expected no delivery on a different channel")
	}
}

func TestPublishCarriesPayload(t *testing.T) {
	t.Parallel()

	b := New()
	var got any
	b.Subscribe(enums.ChannelContentUpdated, func(_ context.Context, event Event) error {
		got = event.Payload
		return nil
	})

	if err := b.Publish(context.Background(), enums.ChannelContentUpdated, "banner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "banner" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestPublishAggregatesHandlerErrors(t *testing.T) {
	t.Parallel()

	b := New()
	first := errors.New("first failed")
	second := errors.New("second failed")
	reached := false

	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error { return first })
	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error { return second })
	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := b.Publish(context.Background(), enums.ChannelCartChanged, nil)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !reached {
		t.Fatal("a failing handler must not stop delivery to the rest")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", len(errs))
	}
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("aggregated error missing causes: %v", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := New()
	delivered := 0
	unsubscribe := b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		delivered++
		return nil
	})

	_ = b.Publish(context.Background(), enums.ChannelCartChanged, nil)
	unsubscribe()
	_ = b.Publish(context.Background(), enums.ChannelCartChanged, nil)

	if delivered != 1 {
		t.Fatalf("expected exactly one delivery, got %d", delivered)
	}
	if b.SubscriberCount(enums.ChannelCartChanged) != 0 {
		t.Fatal("expected no remaining subscribers")
	}

	// Calling the same unsubscribe again is harmless.
	unsubscribe()
}

func TestUnsubscribeDuringDispatchAffectsNextPassOnly(t *testing.T) {
	t.Parallel()

	b := New()
	delivered := 0
	var unsubscribe func()
	b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		unsubscribe()
		return nil
	})
	unsubscribe = b.Subscribe(enums.ChannelCartChanged, func(context.Context, Event) error {
		delivered++
		return nil
	})

	_ = b.Publish(context.Background(), enums.ChannelCartChanged, nil)
	if delivered != 1 {
		t.Fatalf("snapshot dispatch should still deliver, got %d", delivered)
	}

	_ = b.Publish(context.Background(), enums.ChannelCartChanged, nil)
	if delivered != 1 {
		t.Fatalf("unsubscribed handler ran again, got %d", delivered)
	}
}

func TestSubscribeNilHandlerIsNoOp(t *testing.T) {
	t.Parallel()

	b := New()
	unsubscribe := b.Subscribe(enums.ChannelCartChanged, nil)
	unsubscribe()
	if b.SubscriberCount(enums.ChannelCartChanged) != 0 {
		t.Fatal("nil handler must not register")
	}
}
