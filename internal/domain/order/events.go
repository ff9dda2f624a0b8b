package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted when a new order aggregate is opened.
type OrderCreatedEvent struct {
	OrderID    string
	ClientID   string
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		ClientID:   o.ClientID,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderSettledEvent is emitted after a successful payment: reservations are
// consumed and the order has moved to processing. Downstream contexts
// (shipping, loyalty reporting) key off this event.
type OrderSettledEvent struct {
	OrderID     string
	ClientID    string
	WarehouseID string
	Amount      decimal.Decimal
	OccurredAt  time.Time
}

func (OrderSettledEvent) EventName() string { return "order.settled" }

func NewOrderSettledEvent(o *Order, warehouseID string) OrderSettledEvent {
	return OrderSettledEvent{
		OrderID:     o.ID,
		ClientID:    o.ClientID,
		WarehouseID: warehouseID,
		Amount:      o.Total,
		OccurredAt:  time.Now().UTC(),
	}
}

// OrderCancelledEvent is emitted when an order ends without settling,
// whether by explicit cancel or by a failed payment.
type OrderCancelledEvent struct {
	OrderID    string
	ClientID   string
	Reason     string
	OccurredAt time.Time
}

func (OrderCancelledEvent) EventName() string { return "order.cancelled" }

func NewOrderCancelledEvent(o *Order, reason string) OrderCancelledEvent {
	return OrderCancelledEvent{
		OrderID:    o.ID,
		ClientID:   o.ClientID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
