package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/event"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	got := make(chan event.Event, 1)
	bus.Subscribe("order.settled", func(ctx context.Context, e event.Event) error {
		got <- e
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{name: "order.settled"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case e := <-got:
		if e.EventName() != "order.settled" {
			t.Fatalf("unexpected event %q", e.EventName())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPanickingHandlerDoesNotStopDispatch(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	got := make(chan struct{}, 2)
	bus.Subscribe("order.cancelled", func(ctx context.Context, e event.Event) error {
		panic("handler blew up")
	})
	bus.Subscribe("order.cancelled", func(ctx context.Context, e event.Event) error {
		got <- struct{}{}
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{name: "order.cancelled"}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("sibling handler was not invoked")
	}

	// the bus keeps dispatching after a panic
	if err := bus.Publish(context.Background(), testEvent{name: "order.cancelled"}); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("bus stopped dispatching after a panic")
	}
}

func TestHandlerErrorIsSwallowed(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	done := make(chan struct{}, 1)
	bus.Subscribe("order.created", func(ctx context.Context, e event.Event) error {
		done <- struct{}{}
		return errors.New("downstream unavailable")
	})

	if err := bus.Publish(context.Background(), testEvent{name: "order.created"}); err != nil {
		t.Fatalf("publish must not surface handler errors: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPublishNilIsNoop(t *testing.T) {
	bus := NewBus(zap.NewNop())
	if err := bus.Publish(context.Background(), nil); err != nil {
		t.Fatalf("nil publish: %v", err)
	}
}
