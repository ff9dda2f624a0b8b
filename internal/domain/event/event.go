package event

import "context"

// Event is a domain event identified by a dotted name such as "order.settled".
type Event interface {
	EventName() string
}

// Handler processes one delivered event.
type Handler func(ctx context.Context, e Event) error

// Publisher hands an event to the bus. Delivery is best effort; publishers
// must not treat a publish failure as a business failure.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
