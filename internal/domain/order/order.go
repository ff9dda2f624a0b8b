package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrInvalidQuantity   = errors.New("order: quantity must be greater than zero")
	ErrInvalidUnitPrice  = errors.New("order: unit price must be zero or greater")
	ErrItemNotFound      = errors.New("order: item not in order")
	ErrEmptyOrder        = errors.New("order: order has no items")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

// Item is one order line. UnitPrice is snapshotted when the line is first
// added and never changes afterwards, even if the catalog price moves.
type Item struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the checkout aggregate. Status moves only through the workflow;
// AwaitingPayment freezes the item list while stock reservations are held so
// the reserved quantities can never drift from the lines they cover.
type Order struct {
	ID              string
	ClientID        string
	Items           []Item
	Total           decimal.Decimal
	Status          Status
	AwaitingPayment bool
	ShipmentID      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func New(id, clientID string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:        id,
		ClientID:  clientID,
		Total:     decimal.Zero,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem appends a line or, when the product is already present, increases
// that line's quantity keeping the original price snapshot.
func (o *Order) AddItem(productID string, qty int, unitPrice decimal.Decimal) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrInvalidUnitPrice
	}
	if !o.mutable() {
		return ErrInvalidTransition
	}

	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			o.Items[idx].Quantity += qty
			o.recalcTotal()
			o.touch()
			return nil
		}
	}

	o.Items = append(o.Items, Item{ProductID: productID, Quantity: qty, UnitPrice: unitPrice})
	o.recalcTotal()
	o.touch()
	return nil
}

// RemoveItem drops the whole line for productID.
func (o *Order) RemoveItem(productID string) error {
	if !o.mutable() {
		return ErrInvalidTransition
	}
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalcTotal()
			o.touch()
			return nil
		}
	}
	return ErrItemNotFound
}

func (o *Order) Empty() bool { return len(o.Items) == 0 }

// BeginPayment freezes the item list once every line has been reserved.
func (o *Order) BeginPayment() error {
	if o.Status != StatusCreated || o.AwaitingPayment {
		return ErrInvalidTransition
	}
	if o.Empty() {
		return ErrEmptyOrder
	}
	o.AwaitingPayment = true
	o.touch()
	return nil
}

// MarkProcessing records a settled payment.
func (o *Order) MarkProcessing() error {
	if err := o.transitionTo(StatusProcessing); err != nil {
		return err
	}
	o.AwaitingPayment = false
	return nil
}

// Cancel ends the order from any non-terminal status.
func (o *Order) Cancel() error {
	if err := o.transitionTo(StatusCancelled); err != nil {
		return err
	}
	o.AwaitingPayment = false
	return nil
}

// AdvanceShipment moves delivery forward exactly one step:
// processing → in_delivery → delivered. Skips and reversals are rejected.
func (o *Order) AdvanceShipment(next Status) error {
	switch {
	case o.Status == StatusProcessing && next == StatusInDelivery:
	case o.Status == StatusInDelivery && next == StatusDelivered:
	default:
		return ErrInvalidTransition
	}
	return o.transitionTo(next)
}

// AttachShipment records the shipment created for this order.
func (o *Order) AttachShipment(shipmentID string) {
	o.ShipmentID = shipmentID
	o.touch()
}

func (o *Order) mutable() bool {
	return o.Status == StatusCreated && !o.AwaitingPayment
}

func (o *Order) transitionTo(next Status) error {
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	o.touch()
	return nil
}

func (o *Order) recalcTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	o.Total = total
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
